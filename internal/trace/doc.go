// Package trace provides the tracing subsystem used by the binder.
//
// Resolution is pure and synchronous, so tracing is the only window into why
// a member was (or was not) chosen. Each Resolve request opens a span, each
// resolver phase a child span, and each evaluated candidate a grandchild span
// carrying its score or rejection reason. Cache hits and misses are emitted
// as point events.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	latebind resolve --trace=- --trace-level=debug Calculator Add int int
//
// # Architecture
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer, dumped on demand
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: heartbeats only
//   - LevelPhase: driver and resolve requests
//   - LevelDetail: resolver phases and cache events
//   - LevelDebug: everything including candidates
//
// # Context Propagation
//
// A batch driver stores its span in the context so that every request it
// runs nests under it:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	batch := trace.BeginFrom(ctx, trace.ScopeDriver, "check")
//	ctx = trace.WithSpan(ctx, batch)
//	defer batch.End("")
//
// A span dropped by the level reports its parent's ID, so children of a
// filtered phase attach to the enclosing request.
//
// # Heartbeat
//
// --trace-heartbeat emits a beat with the number of spans ended since the
// previous one; a run of "ended=0" beats points at a hung request.
package trace
