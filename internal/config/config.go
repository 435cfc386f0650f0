// Package config loads latebind.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"latebind/internal/diag"
	"latebind/internal/overload"
	"latebind/internal/trace"
)

// FileName is the name searched for by Find.
const FileName = "latebind.toml"

// Config is the decoded form of latebind.toml.
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path    string        `toml:"-"`
	Cache   CacheConfig   `toml:"cache"`
	Resolve ResolveConfig `toml:"resolve"`
	Trace   TraceConfig   `toml:"trace"`
	Plans   PlansConfig   `toml:"plans"`
}

type CacheConfig struct {
	Operators int `toml:"operators"`
	Plans     int `toml:"plans"`
}

type ResolveConfig struct {
	Explicit  bool `toml:"explicit"`
	NonPublic bool `toml:"non_public"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

type PlansConfig struct {
	// Snapshot is where `plans --save` writes; relative paths are taken
	// from the directory holding the config file.
	Snapshot string `toml:"snapshot"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Cache: CacheConfig{Operators: 100, Plans: 1024},
		Trace: TraceConfig{Level: "off", Mode: "stream", Output: "-"},
	}
}

// Find walks up from startDir looking for latebind.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest latebind.toml above startDir, or the
// defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults. Unknown keys and out-of-range
// values are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, diag.Wrap(diag.CfgBadValue, err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, diag.Errorf(diag.CfgBadValue, "%s: unknown key(s): %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if meta.IsDefined("plans", "snapshot") && cfg.Plans.Snapshot != "" && !filepath.IsAbs(cfg.Plans.Snapshot) {
		cfg.Plans.Snapshot = filepath.Join(filepath.Dir(path), cfg.Plans.Snapshot)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Cache.Operators < 0 {
		return diag.Errorf(diag.CfgBadValue, "[cache].operators must not be negative, got %d", c.Cache.Operators)
	}
	if c.Cache.Plans < 0 {
		return diag.Errorf(diag.CfgBadValue, "[cache].plans must not be negative, got %d", c.Cache.Plans)
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return diag.Wrap(diag.CfgBadValue, err, "[trace].level")
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return diag.Wrap(diag.CfgBadValue, err, "[trace].mode")
	}
	return nil
}

// Flags returns the resolution flags selected by [resolve].
func (c Config) Flags() overload.Flags {
	var f overload.Flags
	if c.Resolve.Explicit {
		f |= overload.ExplicitCoercion
	}
	if c.Resolve.NonPublic {
		f |= overload.Public | overload.NonPublic
	}
	return f
}

// Tracer converts [trace] to a tracer configuration.
func (c Config) Tracer() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, diag.Wrap(diag.CfgBadValue, err, "[trace].level")
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, diag.Wrap(diag.CfgBadValue, err, "[trace].mode")
	}
	return trace.Config{Level: level, Mode: mode, OutputPath: c.Trace.Output}, nil
}
