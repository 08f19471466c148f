// Package extraction is the HTTP adapter for the document field extractor.
package extraction

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"saathi/internal/providers"
	"saathi/pkg/platform/circuit"
)

const (
	ProviderID     = "extraction"
	DefaultTimeout = 30 * time.Second
)

type processRequest struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type processResponse struct {
	Fields map[string]any `json:"fields"`
	Error  string         `json:"error,omitempty"`
}

// Client calls POST {base}/process.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.http = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		if d > 0 {
			client.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(client *Client) {
		client.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		breaker: circuit.New(ProviderID),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProcessDocument returns the fields found in the document. A document the
// extractor could not read comes back as a rejected provider error.
func (c *Client) ProcessDocument(ctx context.Context, artifactPath, docType string) (map[string]any, error) {
	task := providers.Task{ProviderID: ProviderID, Operation: "process", Timeout: c.timeout, Breaker: c.breaker}
	res := providers.Call(ctx, task, func(ctx context.Context) (map[string]any, error) {
		var out processResponse
		err := providers.PostJSON(ctx, c.http, ProviderID, c.baseURL+"/process", processRequest{
			Path: artifactPath,
			Type: docType,
		}, &out)
		if err != nil {
			return nil, err
		}
		if out.Error != "" {
			return nil, providers.NewProviderError(providers.ErrorRejected, ProviderID, out.Error, nil)
		}
		if out.Fields == nil {
			out.Fields = map[string]any{}
		}
		return out.Fields, nil
	})
	if res.Err != nil {
		c.logger.WarnContext(ctx, "extraction call failed",
			"type", docType,
			"category", providers.GetCategory(res.Err),
			"duration", res.Duration,
			"error", res.Err,
		)
	}
	return res.Value, res.Err
}
