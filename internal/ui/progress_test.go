package ui

import (
	"strings"
	"testing"
)

func TestApplyEventCountsOnce(t *testing.T) {
	m := NewProgressModel("probes", []string{"a", "b"}, nil).(*progressModel)
	m.applyEvent(Event{Index: 1, Status: StatusFail, Detail: "BND2002"})
	m.applyEvent(Event{Index: 1, Status: StatusFail, Detail: "BND2002"})
	m.applyEvent(Event{Index: 7, Status: StatusPass})
	if m.finished != 1 || m.failed != 1 {
		t.Fatalf("expected 1 finished and 1 failed, got %d/%d", m.finished, m.failed)
	}
	if view := m.View(); !strings.Contains(view, "BND2002") || !strings.Contains(view, "1/2") {
		t.Fatalf("expected detail and counts in view, got %q", view)
	}
}

func TestTruncateUsesDisplayWidth(t *testing.T) {
	if got := truncate("Thermometer.Report(double)", 10); got != "Thermom..." {
		t.Fatalf("expected Thermom..., got %q", got)
	}
	if got := truncate("°F", 10); got != "°F" {
		t.Fatalf("expected short value unchanged, got %q", got)
	}
}
