// Package plans exports the contents of the thunk plan cache as msgpack
// snapshots.
package plans

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/thunk"
	"latebind/internal/types"
)

// bump when Snapshot or Record change shape
const schemaVersion uint16 = 1

// Record describes one compiled plan. Types are stored by name so a
// snapshot can be read without the interner that produced it.
type Record struct {
	Key      string
	Member   string
	Kind     string
	Form     string
	Mode     string
	Args     []string
	Return   string
	Result   string
	Steps    []string
	Arity    int
	Expanded bool
	Defaults int
}

// Snapshot is the serialized state of a plan cache.
type Snapshot struct {
	Schema   uint16
	ID       string
	Created  time.Time
	Hits     uint64
	Misses   uint64
	Compiles uint64
	Records  []Record
}

// Take captures the plans currently cached by comp, ordered by key.
func Take(in *types.Interner, comp *thunk.Compiler) *Snapshot {
	st := comp.Stats()
	s := &Snapshot{
		Schema:   schemaVersion,
		ID:       uuid.NewString(),
		Created:  time.Now().UTC(),
		Hits:     st.Hits,
		Misses:   st.Misses,
		Compiles: st.Compiles,
	}
	for _, p := range comp.Plans() {
		s.Records = append(s.Records, record(in, p))
	}
	slices.SortFunc(s.Records, func(a, b Record) int { return strings.Compare(a.Key, b.Key) })
	return s
}

func record(in *types.Interner, p *thunk.Plan) Record {
	b := p.Binding()
	r := Record{
		Key:      p.Key(),
		Member:   host.Signature(in, b.Member),
		Kind:     b.Member.Kind.String(),
		Form:     b.Form.String(),
		Mode:     b.Mode.String(),
		Result:   in.Name(b.ResultType(in)),
		Steps:    p.Steps(),
		Arity:    p.Arity(),
		Expanded: b.Expanded,
		Defaults: b.Defaults,
	}
	for _, a := range b.Shape.Args {
		r.Args = append(r.Args, in.Name(a))
	}
	if b.Shape.Return != types.NoTypeID {
		r.Return = in.Name(b.Shape.Return)
	}
	return r
}

// Encode writes s to w.
func Encode(w io.Writer, s *Snapshot) error {
	if s == nil {
		return diag.Errorf(diag.ArgNull, "snapshot is nil")
	}
	if err := msgpack.NewEncoder(w).Encode(s); err != nil {
		return diag.Wrap(diag.IOSnapshot, err, "encode snapshot")
	}
	return nil
}

// Decode reads a snapshot from r. Snapshots written by another schema
// version are rejected.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, diag.Wrap(diag.IOSnapshot, err, "decode snapshot")
	}
	if s.Schema != schemaVersion {
		return nil, diag.Errorf(diag.IOSnapshot, "snapshot schema %d, want %d", s.Schema, schemaVersion)
	}
	return &s, nil
}

// DefaultPath is the snapshot location under the user cache directory.
func DefaultPath(app string) (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, app, "plans.mp"), nil
}

// Write stores s at path, replacing any previous file atomically.
func Write(path string, s *Snapshot) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return diag.Wrap(diag.IOSnapshot, err, "create %s", dir)
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return diag.Wrap(diag.IOSnapshot, err, "create temp file")
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()
	if err = Encode(f, s); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return diag.Wrap(diag.IOSnapshot, err, "close %s", f.Name())
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return diag.Wrap(diag.IOSnapshot, err, "rename to %s", path)
	}
	return nil
}

// Read loads the snapshot at path.
func Read(path string) (s *Snapshot, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, diag.Wrap(diag.IOSnapshot, err, "open %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return Decode(f)
}

// Summary renders a one-line description of s.
func (s *Snapshot) Summary() string {
	return fmt.Sprintf("snapshot %s: %d plan(s), %d hit(s), %d miss(es), %d compile(s)", s.ID, len(s.Records), s.Hits, s.Misses, s.Compiles)
}
