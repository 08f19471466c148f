package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEmptyContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, SessionID(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, LogAttrs(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestValuesRoundTrip(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := WithSessionID(context.Background(), "sess-1")
	ctx = WithClientMetadata(ctx, "10.0.0.7", "curl/8")
	ctx = WithRequestID(ctx, "req-42")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, "sess-1", SessionID(ctx))
	assert.Equal(t, "10.0.0.7", ClientIP(ctx))
	assert.Equal(t, "curl/8", UserAgent(ctx))
	assert.Equal(t, "req-42", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
	assert.Equal(t, []any{"request_id", "req-42", "session_id", "sess-1"}, LogAttrs(ctx))
}

func TestLogAttrsSkipsMissingSession(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, []any{"request_id", "req-1"}, LogAttrs(ctx))
}
