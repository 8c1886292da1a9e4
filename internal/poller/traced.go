package poller

import (
	"context"

	"EngineMirror/internal/domain/models"
	"EngineMirror/pkg/logger"
	"EngineMirror/pkg/trace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// tracedFetcher wraps a Fetcher with a span and a debug line per request.
type tracedFetcher struct {
	next Fetcher
	log  *logger.Logger
}

var _ Fetcher = (*tracedFetcher)(nil)

// WithTracing wraps f. When tracing is disabled it returns f unchanged.
func WithTracing(f Fetcher, log *logger.Logger) Fetcher {
	if !trace.Enabled() {
		return f
	}
	if log == nil {
		log = logger.Nop()
	}
	return &tracedFetcher{next: f, log: log}
}

func (t *tracedFetcher) Fetch(ctx context.Context, req Request) models.Outcome {
	ctx, span := trace.StartSpan(ctx, "poller.Fetch", oteltrace.WithAttributes(
		attribute.String("source", string(req.Spec.ID)),
		attribute.String("path", req.Spec.Path),
		attribute.Int64("generation", int64(req.Generation)),
	))
	defer span.End()

	out := t.next.Fetch(ctx, req)
	span.SetAttributes(attribute.Int64("latency_ms", out.Latency.Milliseconds()))

	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, string(out.Err.Kind))
		if out.Err.StatusCode != 0 {
			span.SetAttributes(attribute.Int("http.status_code", out.Err.StatusCode))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}

	traceID, _ := trace.TraceID(ctx)
	t.log.Debug("fetch finished",
		logger.String("source", string(req.Spec.ID)),
		logger.Uint64("generation", req.Generation),
		logger.String("trace_id", traceID),
		logger.Bool("ok", out.Err == nil),
	)
	return out
}
