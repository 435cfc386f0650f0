// Package probe runs batches of binding requests described in TOML and
// checks their outcome.
package probe

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"

	"latebind/internal/diag"
	"latebind/internal/overload"
	"latebind/internal/types"
)

// Probe is one call site.
type Probe struct {
	Label  string   `toml:"label"`
	Type   string   `toml:"type"`
	Member string   `toml:"member"`
	Args   []string `toml:"args"`
	// Return is the expected result type; "void" discards the result and
	// an empty string leaves it unspecified.
	Return string   `toml:"return"`
	Flags  []string `toml:"flags"`
	// Invoke holds argument values; when present the thunk is called.
	Invoke []any `toml:"invoke"`
	// Expect is the ID of the error code the probe must fail with.
	Expect string `toml:"expect"`
	// Want is the expected result rendered with fmt.Sprint.
	Want *string `toml:"want"`
}

type file struct {
	Probes []Probe `toml:"probe"`
}

// Name returns the label, or a rendering of the call site.
func (p Probe) Name() string {
	if p.Label != "" {
		return p.Label
	}
	return fmt.Sprintf("%s.%s(%s)", p.Type, p.Member, strings.Join(p.Args, ", "))
}

// Load reads the [[probe]] tables of a TOML file.
func Load(path string) ([]Probe, error) {
	var f file
	meta, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, diag.Wrap(diag.CfgBadValue, err, "%s: failed to parse TOML", path)
	}
	if err := checkDecoded(meta); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f.Probes, nil
}

// Parse reads probes from r.
func Parse(r io.Reader) ([]Probe, error) {
	var f file
	meta, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, diag.Wrap(diag.CfgBadValue, err, "failed to parse TOML")
	}
	if err := checkDecoded(meta); err != nil {
		return nil, err
	}
	return f.Probes, nil
}

func checkDecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return diag.Errorf(diag.CfgBadValue, "unknown key(s): %s", strings.Join(keys, ", "))
}

// request translates p against in.
func (p Probe) request(in *types.Interner) (types.TypeID, overload.Shape, overload.Flags, error) {
	var shape overload.Shape
	if p.Type == "" {
		return types.NoTypeID, shape, 0, diag.Errorf(diag.ArgNull, "probe %q has no type", p.Name())
	}
	t, err := in.ParseName(p.Type)
	if err != nil {
		return types.NoTypeID, shape, 0, err
	}
	for _, a := range p.Args {
		id, err := in.ParseName(a)
		if err != nil {
			return types.NoTypeID, shape, 0, err
		}
		shape.Args = append(shape.Args, id)
	}
	if p.Return != "" {
		if shape.Return, err = in.ParseName(p.Return); err != nil {
			return types.NoTypeID, shape, 0, err
		}
	}
	var flags overload.Flags
	for _, name := range p.Flags {
		f, ok := overload.ParseFlag(name)
		if !ok {
			return types.NoTypeID, shape, 0, diag.Errorf(diag.CfgBadValue, "unknown flag %q", name)
		}
		flags |= f
	}
	return t, shape, flags, nil
}
