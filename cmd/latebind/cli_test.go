package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	t.Cleanup(func() {
		teardownApp(rootCmd)
		app = nil
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestResolveCommand(t *testing.T) {
	out, err := runCLI(t, "resolve", "Calculator", "Add", "int", "int", "--invoke", "3,4")
	if err != nil {
		t.Fatalf("resolve: %v\n%s", err, out)
	}
	if !strings.Contains(out, "member: Calculator.Add(") {
		t.Fatalf("expected member line, got %q", out)
	}
	if !strings.Contains(out, "result: 7") {
		t.Fatalf("expected result 7, got %q", out)
	}
}

func TestConvertCommand(t *testing.T) {
	out, err := runCLI(t, "convert", "Fahrenheit", "Celsius")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "implicit  yes") || !strings.Contains(out, "op_Implicit") {
		t.Fatalf("expected implicit user conversion, got %q", out)
	}
}

func TestCheckCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probes.toml")
	body := `
[[probe]]
type = "Calculator"
member = "Add"
args = ["int", "int", "int"]
expect = "BND2002"

[[probe]]
type = "Calculator"
member = "Sum"
args = ["int", "int"]
invoke = [2, 5]
want = "7"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := runCLI(t, "check", path, "--ui", "off")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "2/2 probe(s) passed") {
		t.Fatalf("expected all probes to pass, got %q", out)
	}
}

func TestCheckSampleProbes(t *testing.T) {
	out, err := runCLI(t, "check", filepath.Join("..", "..", "probes", "sample.toml"), "--ui", "off", "--format", "json")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "11/11 probe(s) passed") {
		t.Fatalf("expected all sample probes to pass, got %q", out)
	}
}
