package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"saathi/internal/platform/config"
)

func TestNew_AppliesConfiguredTimeouts(t *testing.T) {
	srv := New(":0", http.NotFoundHandler(), config.HTTPConfig{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 45 * time.Second,
	})

	assert.Equal(t, ":0", srv.Addr)
	assert.Equal(t, 10*time.Second, srv.ReadTimeout)
	assert.Equal(t, 45*time.Second, srv.WriteTimeout)
	assert.Equal(t, DefaultReadHeaderTimeout, srv.ReadHeaderTimeout)
	assert.Equal(t, DefaultIdleTimeout, srv.IdleTimeout)
}
