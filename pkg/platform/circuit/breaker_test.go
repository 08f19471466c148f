package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) (*time.Time, Option) {
	now := start
	return &now, withClock(func() time.Time { return now })
}

func TestNewBreakerIsClosed(t *testing.T) {
	b := New("face")
	assert.Equal(t, "face", b.Name())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
	assert.True(t, b.Allow())
}

func TestBreakerTransitions(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		calls    string // f = failure, s = success
		wantOpen bool
	}{
		{name: "below threshold stays closed", opts: []Option{WithFailureThreshold(3)}, calls: "ff", wantOpen: false},
		{name: "threshold opens", opts: []Option{WithFailureThreshold(3)}, calls: "fff", wantOpen: true},
		{name: "success clears failure streak", opts: []Option{WithFailureThreshold(3)}, calls: "ffsff", wantOpen: false},
		{name: "one probe success is not enough", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, calls: "fs", wantOpen: true},
		{name: "success threshold closes", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(2)}, calls: "fss", wantOpen: false},
		{name: "failure while open restarts recovery", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(3)}, calls: "fssfss", wantOpen: true},
		{name: "full recovery after interruption", opts: []Option{WithFailureThreshold(1), WithSuccessThreshold(3)}, calls: "fssfsss", wantOpen: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("extraction", tt.opts...)
			for _, c := range tt.calls {
				if c == 'f' {
					b.RecordFailure()
				} else {
					b.RecordSuccess()
				}
			}
			assert.Equal(t, tt.wantOpen, b.IsOpen())
		})
	}
}

func TestRecordReportsChanges(t *testing.T) {
	b := New("face", WithFailureThreshold(2), WithSuccessThreshold(1))

	fallback, change := b.RecordFailure()
	assert.False(t, fallback)
	assert.Equal(t, Change{}, change)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback)
	assert.True(t, change.Opened)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback, "open breaker keeps reporting fallback")
	assert.False(t, change.Opened, "already open")

	primary, change := b.RecordSuccess()
	assert.True(t, primary)
	assert.True(t, change.Closed)
}

func TestAllowAdmitsProbeAfterCoolDown(t *testing.T) {
	now, clock := fixedClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	b := New("face", WithFailureThreshold(1), WithCoolDown(10*time.Second), clock)

	b.RecordFailure()
	require.True(t, b.IsOpen())
	assert.False(t, b.Allow())

	*now = now.Add(9 * time.Second)
	assert.False(t, b.Allow())

	*now = now.Add(time.Second)
	assert.True(t, b.Allow())

	// a failed probe restarts the cool-down
	b.RecordFailure()
	assert.False(t, b.Allow())
}

func TestResetClosesOpenBreaker(t *testing.T) {
	b := New("extraction", WithFailureThreshold(1))
	b.RecordFailure()
	require.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}
