package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"latebind/internal/diag"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.BindAmbiguousMatch, "Calc.H(int, int)", "2 candidates tie").
		WithNote("candidate: Calc.H(long, int)").
		WithNote("candidate: Calc.H(int, long)"))
	bag.Add(diag.New(diag.SevError, diag.BindMissingMember, "Calc.Add(int, int, int)", "no member accepts the arguments"))
	bag.Sort()
	return bag
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, sampleBag(), JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if out.Count != 2 {
		t.Fatalf("expected count=2, got %d", out.Count)
	}
	first := out.Diagnostics[1]
	if first.Code != diag.BindAmbiguousMatch.ID() || len(first.Notes) != 2 {
		t.Fatalf("expected ambiguous match with two notes, got %+v", first)
	}
}

func TestPrettyTruncates(t *testing.T) {
	var buf bytes.Buffer
	Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true, Max: 1})
	got := buf.String()
	if !strings.Contains(got, "Calc.Add(int, int, int): ERROR BND2002") {
		t.Fatalf("expected first diagnostic line, got %q", got)
	}
	if !strings.Contains(got, "... and 1 more") {
		t.Fatalf("expected truncation notice, got %q", got)
	}
}
