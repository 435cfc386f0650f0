package trace

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
	// ended counts closed spans; Heartbeat reports its progress.
	ended atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return seq.Add(1)
}

// goid parses the goroutine number from the "goroutine N [...]" header of
// runtime.Stack.
func goid() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	rest, ok := strings.CutPrefix(string(buf[:n]), "goroutine ")
	if !ok {
		return 0
	}
	num, _, ok := strings.Cut(rest, " ")
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// Span is one traced request or phase. A span filtered out by the level
// stays usable: its ID is its parent's, so children attach to the nearest
// emitted ancestor.
type Span struct {
	tracer  Tracer
	live    bool
	id      uint64
	parent  uint64
	gid     uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin starts a span and emits its begin event. parent is 0 for roots.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	s := &Span{tracer: OrNop(t), parent: parent, scope: scope, name: name}
	if !s.tracer.Enabled() || !s.tracer.Level().ShouldEmit(scope) {
		return s
	}
	s.live = true
	s.id = spanIDs.Add(1)
	s.gid = goid()
	s.started = time.Now()
	s.emit(KindSpanBegin, s.started, "", nil)
	return s
}

// Child starts a span under s.
func (s *Span) Child(scope Scope, name string) *Span {
	if s == nil {
		return Begin(Nop, scope, name, 0)
	}
	return Begin(s.tracer, scope, name, s.ID())
}

// End emits the end event carrying detail and the collected extras, and
// returns the span's duration. Filtered spans return 0.
func (s *Span) End(detail string) time.Duration {
	if s == nil || !s.live {
		return 0
	}
	now := time.Now()
	s.emit(KindSpanEnd, now, detail, s.extra)
	ended.Add(1)
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || !s.live {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, or the parent's ID when the span was filtered.
func (s *Span) ID() uint64 {
	switch {
	case s == nil:
		return 0
	case s.live:
		return s.id
	default:
		return s.parent
	}
}

func (s *Span) emit(kind Kind, at time.Time, detail string, extra map[string]string) {
	s.tracer.Emit(&Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		GID:      s.gid,
		Name:     s.name,
		Detail:   detail,
		Extra:    extra,
	})
}
