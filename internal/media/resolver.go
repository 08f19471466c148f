// Package media resolves stage media keys to playable video URLs.
//
// The catalogue is an operator-managed directory that may be incomplete, so
// resolution degrades instead of failing: a missing or truncated asset is
// replaced by any other valid asset, and when none exists the empty string is
// returned for the client to handle.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// MinValidSize is the quality floor against truncated or placeholder files.
	MinValidSize = 10_000

	Extension = ".mp4"

	DefaultBaseURL = "/static/videos"

	readmeName = "README.txt"
)

// ExpectedAssets lists the media keys the journey asks for.
var ExpectedAssets = []string{
	"introduction",
	"personal_details",
	"loan_purpose",
	"loan_amount",
	"employment",
	"documents",
	"result_approved",
	"result_rejected",
	"result_more_info",
}

// Metrics receives resolver observations.
type Metrics interface {
	IncrementMediaFallback(requested, substitute string)
	IncrementMediaUnavailable(requested string)
}

// Resolver maps media keys to URLs under BaseURL.
type Resolver struct {
	dir     string
	baseURL string
	logger  *slog.Logger
	metrics Metrics
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithBaseURL(baseURL string) Option {
	return func(r *Resolver) {
		r.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithMetrics(m Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func New(dir string, opts ...Option) *Resolver {
	r := &Resolver{
		dir:     dir,
		baseURL: DefaultBaseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the catalogue directory.
func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve returns the URL for key, a fallback asset URL, or "".
// It never fails.
func (r *Resolver) Resolve(ctx context.Context, key string) string {
	primary := key + Extension
	if r.valid(primary) {
		return r.url(primary)
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		r.logger.ErrorContext(ctx, "media catalogue unreadable",
			"dir", r.dir,
			"requested", primary,
			"error", err,
		)
		r.unavailable(key)
		return ""
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, Extension) {
			continue
		}
		if r.valid(name) {
			r.logger.WarnContext(ctx, "using fallback media",
				"requested", primary,
				"substitute", name,
			)
			if r.metrics != nil {
				r.metrics.IncrementMediaFallback(key, strings.TrimSuffix(name, Extension))
			}
			return r.url(name)
		}
	}

	r.logger.ErrorContext(ctx, "no valid media found for fallback", "requested", primary)
	r.unavailable(key)
	return ""
}

// Ensure creates the catalogue directory and a README listing the expected
// files. It is idempotent and leaves an existing README alone. Missing or
// undersized assets are reported in the log.
func (r *Resolver) Ensure(ctx context.Context) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create media dir: %w", err)
	}

	readme := filepath.Join(r.dir, readmeName)
	if _, err := os.Stat(readme); errors.Is(err, fs.ErrNotExist) {
		if err := os.WriteFile(readme, []byte(catalogueNotice()), 0o644); err != nil {
			return fmt.Errorf("write media readme: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("stat media readme: %w", err)
	}

	var missing, invalid []string
	for _, key := range ExpectedAssets {
		name := key + Extension
		info, err := os.Stat(filepath.Join(r.dir, name))
		switch {
		case err != nil:
			missing = append(missing, name)
		case info.Size() < MinValidSize:
			invalid = append(invalid, name)
		}
	}
	if len(missing) > 0 || len(invalid) > 0 {
		r.logger.InfoContext(ctx, "media catalogue incomplete",
			"missing", missing,
			"invalid", invalid,
			"dir", r.dir,
		)
	}
	return nil
}

func (r *Resolver) valid(name string) bool {
	info, err := os.Stat(filepath.Join(r.dir, name))
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() >= MinValidSize
}

func (r *Resolver) url(name string) string {
	return r.baseURL + "/" + name
}

func (r *Resolver) unavailable(key string) {
	if r.metrics != nil {
		r.metrics.IncrementMediaUnavailable(key)
	}
}

func catalogueNotice() string {
	var b strings.Builder
	b.WriteString("This directory contains video files for the Loan Saathi.\n")
	b.WriteString("Please place your custom videos in this directory with the following names:\n")
	for _, key := range ExpectedAssets {
		fmt.Fprintf(&b, "- %s%s\n", key, Extension)
	}
	return b.String()
}
