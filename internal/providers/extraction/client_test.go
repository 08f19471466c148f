package extraction

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saathi/internal/providers"
	"saathi/pkg/platform/circuit"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestClient_ProcessDocument(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/process", r.URL.Path)
		var req processRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/uploads/income_proof_1.pdf", req.Path)
		assert.Equal(t, "income_proof", req.Type)
		_, _ = w.Write([]byte(`{"fields":{"income":25000,"employment_type":"salaried"}}`))
	})

	fields, err := client.ProcessDocument(context.Background(), "/uploads/income_proof_1.pdf", "income_proof")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"income": float64(25000), "employment_type": "salaried"}, fields)
}

func TestClient_ProcessDocumentErrorBody(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"image too blurry"}`))
	})

	_, err := client.ProcessDocument(context.Background(), "a.jpg", "id_proof")
	require.Error(t, err)
	assert.Equal(t, providers.ErrorRejected, providers.GetCategory(err))
	assert.Equal(t, "image too blurry", providers.Message(err))
}

func TestClient_EmptyFields(t *testing.T) {
	client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	fields, err := client.ProcessDocument(context.Background(), "a.jpg", "id_proof")
	require.NoError(t, err)
	assert.Empty(t, fields)
	assert.NotNil(t, fields)
}

func TestClient_RejectionsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	t.Cleanup(srv.Close)

	breaker := circuit.New(ProviderID, circuit.WithFailureThreshold(1))
	client := New(srv.URL, WithBreaker(breaker), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	for range 3 {
		_, err := client.ProcessDocument(context.Background(), "a.jpg", "id_proof")
		assert.Equal(t, providers.ErrorRejected, providers.GetCategory(err))
	}
	assert.False(t, breaker.IsOpen())
}
