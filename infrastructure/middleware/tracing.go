package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

var _ ports.Tally = (*TracingTally)(nil)

// TracingTally wraps a tally in an OpenTelemetry span carrying the
// method name, election size, and outcome.
type TracingTally struct {
	next   ports.Tally
	tracer trace.Tracer
}

// NewTracingTally wraps the given tally with span creation using the
// globally configured tracer provider.
func NewTracingTally(next ports.Tally) *TracingTally {
	return &TracingTally{
		next:   next,
		tracer: otel.Tracer("go-tally/middleware"),
	}
}

// WithTracing returns a middleware function that wraps tallies with
// tracing, for use with the suite runner.
func WithTracing() func(ports.Tally) ports.Tally {
	return func(next ports.Tally) ports.Tally {
		return NewTracingTally(next)
	}
}

// Name implements ports.Tally.
func (t *TracingTally) Name() string { return t.next.Name() }

// Validate implements ports.Tally.
func (t *TracingTally) Validate() error { return t.next.Validate() }

// Tally implements ports.Tally.
func (t *TracingTally) Tally(ctx context.Context, e *domain.Election) (domain.Result, error) {
	ctx, span := t.tracer.Start(ctx, "tally."+t.next.Name(),
		trace.WithAttributes(
			attribute.String("tally.method", t.next.Name()),
			attribute.Int("election.candidates", len(e.Candidates)),
			attribute.Int("election.ballot_weight", e.TotalQty()),
		))
	defer span.End()

	result, err := t.next.Tally(ctx, e)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.StringSlice("tally.winners", result.WinnerTokens()),
		attribute.Int("tally.notices", len(result.Notes())),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}
