package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"latebind/internal/diag"
	"latebind/internal/overload"
	"latebind/internal/trace"
)

func write(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	write(t, root, `
[cache]
plans = 16

[resolve]
explicit = true

[trace]
level = "phase"
mode = "ring"

[plans]
snapshot = "out/plans.mp"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg, err := Discover(nested)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Cache.Plans != 16 || cfg.Cache.Operators != 100 {
		t.Fatalf("expected plans=16 and default operators, got %+v", cfg.Cache)
	}
	if cfg.Flags() != overload.ExplicitCoercion {
		t.Fatalf("expected explicit flag, got %s", cfg.Flags())
	}
	if want := filepath.Join(root, "out", "plans.mp"); cfg.Plans.Snapshot != want {
		t.Fatalf("expected %s, got %s", want, cfg.Plans.Snapshot)
	}
	tc, err := cfg.Tracer()
	if err != nil || tc.Level != trace.LevelPhase || tc.Mode != trace.ModeRing {
		t.Fatalf("expected phase/ring tracer config, got %+v (%v)", tc, err)
	}
}

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if cfg.Path != "" || cfg.Cache.Plans != 1024 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "[cache]\nsize = 3\n",
		"negative cache": "[cache]\noperators = -1\n",
		"bad level":      "[trace]\nlevel = \"loud\"\n",
		"bad syntax":     "[cache\n",
	}
	for name, body := range cases {
		path := write(t, t.TempDir(), body)
		if _, err := Load(path); !errors.Is(err, diag.ErrBadConfig) {
			t.Fatalf("%s: expected config error, got %v", name, err)
		}
	}
}
