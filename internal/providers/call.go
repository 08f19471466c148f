// Package providers runs calls to external collaborators (face matching,
// document extraction) as bounded tasks with a single structured result.
//
// Calls are never retried here. Each component decides what a failure means
// for the applicant.
package providers

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"saathi/pkg/platform/circuit"
	"saathi/pkg/platform/sentinel"
)

const tracerName = "saathi/providers"

// Result is the outcome of one collaborator call.
type Result[T any] struct {
	Value    T
	Err      error
	Duration time.Duration
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Task describes a single collaborator operation.
type Task struct {
	ProviderID string
	Operation  string
	Timeout    time.Duration
	Breaker    *circuit.Breaker
}

// Call runs fn under the task timeout and breaker. The caller blocks until fn
// returns or the timeout fires, whichever is first; a late fn result is
// discarded.
func Call[T any](ctx context.Context, task Task, fn func(ctx context.Context) (T, error)) Result[T] {
	ctx, span := otel.Tracer(tracerName).Start(ctx, task.ProviderID+"."+task.Operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.id", task.ProviderID),
			attribute.String("provider.operation", task.Operation),
		),
	)
	defer span.End()

	start := time.Now()
	finish := func(res Result[T]) Result[T] {
		res.Duration = time.Since(start)
		if res.Err != nil {
			span.RecordError(res.Err)
			span.SetStatus(codes.Error, string(GetCategory(res.Err)))
		}
		return res
	}

	if task.Breaker != nil && !task.Breaker.Allow() {
		return finish(Result[T]{Err: NewProviderError(ErrorOutage, task.ProviderID, "circuit open", sentinel.ErrUnavailable)})
	}

	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	done := make(chan Result[T], 1)
	go func() {
		value, err := fn(ctx)
		done <- Result[T]{Value: value, Err: err}
	}()

	var res Result[T]
	select {
	case res = <-done:
	case <-ctx.Done():
		res = Result[T]{Err: ctxError(task, ctx.Err())}
	}

	if res.Err != nil {
		if errors.Is(res.Err, context.DeadlineExceeded) && GetCategory(res.Err) != ErrorTimeout {
			res.Err = ctxError(task, res.Err)
		}
		if task.Breaker != nil && countsAgainstBreaker(res.Err) {
			task.Breaker.RecordFailure()
		}
		return finish(res)
	}

	if task.Breaker != nil {
		task.Breaker.RecordSuccess()
	}
	return finish(res)
}

func ctxError(task Task, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewProviderError(ErrorTimeout, task.ProviderID, task.Operation+" timed out", err)
	}
	return NewProviderError(ErrorInternal, task.ProviderID, task.Operation+" cancelled", err)
}

// Refusals mean the collaborator is healthy.
func countsAgainstBreaker(err error) bool {
	switch GetCategory(err) {
	case ErrorRejected, ErrorBadData:
		return false
	default:
		return true
	}
}
