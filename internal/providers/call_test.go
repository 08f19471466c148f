package providers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saathi/pkg/platform/circuit"
	"saathi/pkg/platform/sentinel"
)

func TestCall(t *testing.T) {
	ctx := context.Background()

	t.Run("returns value on success", func(t *testing.T) {
		res := Call(ctx, Task{ProviderID: "face", Operation: "extract", Timeout: time.Second},
			func(context.Context) (int, error) { return 42, nil })
		require.True(t, res.OK())
		assert.Equal(t, 42, res.Value)
	})

	t.Run("times out slow collaborators", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)

		res := Call(ctx, Task{ProviderID: "face", Operation: "verify", Timeout: 20 * time.Millisecond},
			func(context.Context) (bool, error) {
				<-release
				return true, nil
			})
		require.Error(t, res.Err)
		assert.Equal(t, ErrorTimeout, GetCategory(res.Err))
		assert.False(t, res.Value)
	})

	t.Run("deadline errors from the collaborator read as timeouts", func(t *testing.T) {
		res := Call(ctx, Task{ProviderID: "extraction", Operation: "process"},
			func(context.Context) (string, error) { return "", context.DeadlineExceeded })
		assert.Equal(t, ErrorTimeout, GetCategory(res.Err))
	})

	t.Run("collaborator errors are returned unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		res := Call(ctx, Task{ProviderID: "extraction", Operation: "process"},
			func(context.Context) (string, error) { return "", boom })
		assert.ErrorIs(t, res.Err, boom)
	})
}

func TestCall_Breaker(t *testing.T) {
	ctx := context.Background()

	t.Run("open breaker fails fast", func(t *testing.T) {
		breaker := circuit.New("face", circuit.WithFailureThreshold(1), circuit.WithCoolDown(time.Hour))
		task := Task{ProviderID: "face", Operation: "extract", Breaker: breaker}
		outage := NewProviderError(ErrorOutage, "face", "down", nil)

		res := Call(ctx, task, func(context.Context) (int, error) { return 0, outage })
		require.Error(t, res.Err)
		assert.True(t, breaker.IsOpen())

		called := false
		res = Call(ctx, task, func(context.Context) (int, error) {
			called = true
			return 1, nil
		})
		assert.False(t, called)
		assert.ErrorIs(t, res.Err, sentinel.ErrUnavailable)
		assert.Equal(t, ErrorOutage, GetCategory(res.Err))
	})

	t.Run("rejections do not trip the breaker", func(t *testing.T) {
		breaker := circuit.New("extraction", circuit.WithFailureThreshold(1))
		task := Task{ProviderID: "extraction", Operation: "process", Breaker: breaker}
		rejected := NewProviderError(ErrorRejected, "extraction", "unreadable", nil)

		res := Call(ctx, task, func(context.Context) (int, error) { return 0, rejected })
		require.Error(t, res.Err)
		assert.False(t, breaker.IsOpen())
	})
}
