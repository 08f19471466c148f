package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxErrorBody = 4 << 10

// PostJSON sends in as a JSON body and decodes a 2xx response into out.
// Failures are categorized: transport errors and 5xx are outages, 4xx are
// rejections, and undecodable bodies are bad data.
func PostJSON(ctx context.Context, client *http.Client, providerID, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return NewProviderError(ErrorInternal, providerID, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return NewProviderError(ErrorInternal, providerID, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewProviderError(ErrorTimeout, providerID, "request timed out", err)
		}
		return NewProviderError(ErrorOutage, providerID, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := fmt.Sprintf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
		if resp.StatusCode >= 500 {
			return NewProviderError(ErrorOutage, providerID, msg, nil)
		}
		return NewProviderError(ErrorRejected, providerID, msg, nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(ErrorBadData, providerID, "failed to decode response", err)
	}
	return nil
}
