package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestDescribe(t *testing.T) {
	color.NoColor = true
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version, GitCommit, BuildDate = "1.2.3", "", ""
	if got := Describe(); got != "latebind 1.2.3" {
		t.Fatalf("expected plain version, got %q", got)
	}
	GitCommit, BuildDate = "abc123", "2026-01-15"
	if got := Describe(); got != "latebind 1.2.3 (commit abc123, built 2026-01-15)" {
		t.Fatalf("expected build details, got %q", got)
	}
}

func TestColoredKeepsMalformedVersion(t *testing.T) {
	color.NoColor = true
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "dev"
	if got := Colored(); got != "dev" {
		t.Fatalf("expected dev, got %q", got)
	}
	Version = "0.3.0-rc1"
	if got := Colored(); got != "0.3.0-rc1" {
		t.Fatalf("expected 0.3.0-rc1, got %q", got)
	}
}
