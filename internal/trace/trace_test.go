package trace

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestRingTracerKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeCandidate, name, "")
	}
	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("expected [b c], got [%s %s]", events[0].Name, events[1].Name)
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(tr, ScopeResolve, "resolve", 0)
	Point(tr, ScopeCandidate, "candidate", "dropped")
	span.WithExtra("member", "Add").End("ok")
	out := buf.String()
	if !strings.Contains(out, "→ resolve") || !strings.Contains(out, "← resolve (ok) {member=Add}") {
		t.Fatalf("missing resolve span in %q", out)
	}
	if strings.Contains(out, "candidate") {
		t.Fatalf("candidate events must be filtered at phase level: %q", out)
	}
}

func TestNopTracerIsDisabled(t *testing.T) {
	span := Begin(Nop, ScopeResolve, "resolve", 0)
	if span.End("") != 0 {
		t.Fatalf("nop span must report zero duration")
	}
	if OrNop(nil) != Nop {
		t.Fatalf("OrNop(nil) must return Nop")
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("detail")
	if err != nil || lvl != LevelDetail {
		t.Fatalf("expected detail, got %v (%v)", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestFilteredSpanPassesParentThrough(t *testing.T) {
	ring := NewRingTracer(16, LevelPhase)
	root := Begin(ring, ScopeResolve, "resolve", 0)
	phase := root.Child(ScopePhase, "phase:method")
	if phase.ID() != root.ID() {
		t.Fatalf("expected filtered phase to report parent %d, got %d", root.ID(), phase.ID())
	}
	if phase.End("") != 0 {
		t.Fatalf("filtered span must not report a duration")
	}
	root.End("ok")
	if n := len(ring.Snapshot()); n != 2 {
		t.Fatalf("expected begin and end of the root only, got %d events", n)
	}
}

func TestContextCarriesParent(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	batch := BeginFrom(ctx, ScopeDriver, "check")
	ctx = WithSpan(ctx, batch)
	probe := BeginFrom(ctx, ScopeDriver, "probe")
	probe.End("")
	batch.End("")
	events := ring.Snapshot()
	if events[1].Name != "probe" || events[1].ParentID != batch.ID() {
		t.Fatalf("expected probe under %d, got %+v", batch.ID(), events[1])
	}
	if ParentFrom(context.Background()) != 0 {
		t.Fatalf("expected no parent in an empty context")
	}
}

func TestHeartbeatStops(t *testing.T) {
	ring := NewRingTracer(64, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	events := ring.Snapshot()
	if len(events) == 0 || events[0].Kind != KindHeartbeat {
		t.Fatalf("expected heartbeat events, got %v", events)
	}
	if !strings.HasPrefix(events[0].Detail, "#1 ended=") {
		t.Fatalf("unexpected heartbeat detail %q", events[0].Detail)
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("expected no heartbeat on a disabled tracer")
	}
}
