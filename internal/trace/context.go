package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
)

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	t, _ := ctx.Value(tracerKey{}).(Tracer)
	return OrNop(t)
}

// WithTracer attaches t to ctx. A nil tracer is stored as Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, tracerKey{}, OrNop(t))
}

// WithSpan makes s the parent of spans begun from ctx.
func WithSpan(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, s)
}

// ParentFrom returns the ID of the span stored in ctx, 0 when there is none.
func ParentFrom(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s.ID()
}

// BeginFrom starts a span with the tracer and parent carried by ctx.
func BeginFrom(ctx context.Context, scope Scope, name string) *Span {
	return Begin(FromContext(ctx), scope, name, ParentFrom(ctx))
}
