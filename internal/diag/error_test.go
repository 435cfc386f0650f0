package diag

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesSentinel(t *testing.T) {
	err := Errorf(BindAmbiguousMatch, "ambiguous match for %s", "Add")
	if !errors.Is(err, ErrAmbiguousMatch) {
		t.Fatalf("expected errors.Is to match ErrAmbiguousMatch")
	}
	if errors.Is(err, ErrMissingMember) {
		t.Fatalf("unexpected match against ErrMissingMember")
	}
	wrapped := fmt.Errorf("resolve: %w", err)
	if CodeOf(wrapped) != BindAmbiguousMatch {
		t.Fatalf("expected code %s, got %s", BindAmbiguousMatch.ID(), CodeOf(wrapped).ID())
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CallHostFailure, cause, "invoke %s", "Add")
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if got := err.Error(); got != "CAL3004: invoke Add: boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	bag := NewBag(8)
	bag.Add(New(SevError, BindMissingMember, "b", "x"))
	bag.Add(New(SevWarning, BindAmbiguousMatch, "a", "y"))
	bag.Add(New(SevError, BindAmbiguousMatch, "a", "z"))
	bag.Sort()
	items := bag.Items()
	if items[0].Subject != "a" || items[0].Severity != SevError {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[2].Subject != "b" {
		t.Fatalf("unexpected last item %+v", items[2])
	}
}

func TestBagRespectsLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(New(SevInfo, ArgInfo, "a", "")) {
		t.Fatalf("first add should succeed")
	}
	if bag.Add(New(SevInfo, ArgInfo, "b", "")) {
		t.Fatalf("second add should be rejected")
	}
}

func TestParseCode(t *testing.T) {
	if c, ok := ParseCode(BindMissingMember.ID()); !ok || c != BindMissingMember {
		t.Fatalf("expected %s, got %s (%v)", BindMissingMember, c, ok)
	}
	if _, ok := ParseCode("E0000"); ok {
		t.Fatalf("expected unknown code to be rejected")
	}
}
