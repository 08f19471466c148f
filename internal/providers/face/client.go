// Package face is the HTTP adapter for the face descriptor service.
package face

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"saathi/internal/journey/models"
	"saathi/internal/providers"
	"saathi/pkg/platform/circuit"
)

const (
	ProviderID     = "face"
	DefaultTimeout = 10 * time.Second
)

type extractRequest struct {
	Path string `json:"path"`
}

type extractResponse struct {
	Descriptor []float64 `json:"descriptor"`
}

type verifyRequest struct {
	Reference []float64 `json:"reference"`
	Path      string    `json:"path"`
}

type verifyResponse struct {
	Match bool `json:"match"`
}

// Client calls POST {base}/extract and POST {base}/verify.
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

// ExtractFace returns the descriptor of the face in the capture, or nil
// when none was found.
func (c *Client) ExtractFace(ctx context.Context, artifactPath string) (models.FaceDescriptor, error) {
	res := providers.Call(ctx, c.task("extract"), func(ctx context.Context) (models.FaceDescriptor, error) {
		var out extractResponse
		if err := providers.PostJSON(ctx, c.http, ProviderID, c.baseURL+"/extract", extractRequest{Path: artifactPath}, &out); err != nil {
			return nil, err
		}
		if len(out.Descriptor) == 0 {
			return nil, nil
		}
		return models.FaceDescriptor(out.Descriptor), nil
	})
	c.observe(ctx, "extract", res.Err, res.Duration)
	return res.Value, res.Err
}

// Verify reports whether the capture shows the same face as reference.
func (c *Client) Verify(ctx context.Context, reference models.FaceDescriptor, artifactPath string) (bool, error) {
	res := providers.Call(ctx, c.task("verify"), func(ctx context.Context) (bool, error) {
		var out verifyResponse
		err := providers.PostJSON(ctx, c.http, ProviderID, c.baseURL+"/verify", verifyRequest{
			Reference: reference,
			Path:      artifactPath,
		}, &out)
		if err != nil {
			return false, err
		}
		return out.Match, nil
	})
	c.observe(ctx, "verify", res.Err, res.Duration)
	return res.Value, res.Err
}

func (c *Client) task(op string) providers.Task {
	return providers.Task{ProviderID: ProviderID, Operation: op, Timeout: c.timeout, Breaker: c.breaker}
}

func (c *Client) observe(ctx context.Context, op string, err error, took time.Duration) {
	if err == nil {
		c.logger.DebugContext(ctx, "face call completed", "operation", op, "duration", took)
		return
	}
	c.logger.WarnContext(ctx, "face call failed",
		"operation", op,
		"category", providers.GetCategory(err),
		"breaker_open", c.breaker != nil && c.breaker.IsOpen(),
		"duration", took,
		"error", err,
	)
}
