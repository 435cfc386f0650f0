package host

import (
	"slices"
	"strconv"
	"sync"

	"golang.org/x/text/unicode/norm"

	"latebind/internal/diag"
	"latebind/internal/types"
)

type table struct {
	byName map[string][]*Member
	order  []*Member
}

type viewKey struct {
	id        MemberID
	declaring types.TypeID
}

// Registry holds member tables per type definition. Lookups through generic
// instances return substituted views that are memoized so that member
// identity stays stable across calls. Registry is safe for concurrent use.
type Registry struct {
	in *types.Interner

	mu     sync.RWMutex
	tables map[types.TypeID]*table
	byID   []*Member
	views  map[viewKey]*Member
	closed map[string]*Member
	hooks  []func(*Member)
}

// NewRegistry creates an empty registry over in.
func NewRegistry(in *types.Interner) *Registry {
	return &Registry{
		in:     in,
		tables: make(map[types.TypeID]*table, 16),
		byID:   []*Member{nil}, // reserve 0
		views:  make(map[viewKey]*Member, 16),
		closed: make(map[string]*Member, 16),
	}
}

// Types returns the interner the registry describes.
func (r *Registry) Types() *types.Interner { return r.in }

func normalizeName(name string) string {
	return norm.NFC.String(name)
}

// Add registers m on m.Declaring and returns the stored member.
func (r *Registry) Add(m Member) (*Member, error) {
	if err := r.validate(&m); err != nil {
		return nil, err
	}
	m.Params = slices.Clone(m.Params)
	m.TypeParams = slices.Clone(m.TypeParams)
	m.TypeArgs = nil
	m.Generic = nil

	r.mu.Lock()
	tbl := r.tables[m.Declaring]
	if tbl == nil {
		tbl = &table{byName: make(map[string][]*Member, 8)}
		r.tables[m.Declaring] = tbl
	}
	id, err := memberID(len(r.byID))
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	stored := m
	stored.ID = id
	stored.Order = len(tbl.order)
	tbl.order = append(tbl.order, &stored)
	tbl.byName[stored.Name] = append(tbl.byName[stored.Name], &stored)
	r.byID = append(r.byID, &stored)
	hooks := r.hooks
	r.mu.Unlock()

	// hooks run unlocked so they may query the registry
	for _, h := range hooks {
		h(&stored)
	}
	return &stored, nil
}

// OnAdd registers h to run after every successful Add, including members
// imported by RegisterGo.
func (r *Registry) OnAdd(h func(*Member)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(slices.Clip(r.hooks), h)
}

// MustAdd is Add for static tables; it panics on error.
func (r *Registry) MustAdd(m Member) *Member {
	out, err := r.Add(m)
	if err != nil {
		panic(err)
	}
	return out
}

func memberID(n int) (MemberID, error) {
	if n < 0 || uint64(n) > uint64(^uint32(0)) {
		return 0, diag.Errorf(diag.ArgOutOfRange, "member table overflow at %d", n)
	}
	return MemberID(n), nil
}

func (r *Registry) validate(m *Member) error {
	if _, ok := r.in.Lookup(m.Declaring); !ok {
		return diag.Errorf(diag.ArgNull, "member %q has no declaring type", m.Name)
	}
	if _, _, inst := r.in.GenericArgs(m.Declaring); inst {
		return diag.Errorf(diag.ArgOutOfRange, "members are declared on %s's definition, not on an instance", r.in.Name(m.Declaring))
	}
	switch m.Kind {
	case MemberConstructor:
		m.Name = CtorName
		m.Result = m.Declaring
		if m.Invoke == nil {
			return diag.Errorf(diag.ArgNull, "constructor of %s has no invoke primitive", r.in.Name(m.Declaring))
		}
	case MemberMethod:
		if m.Invoke == nil {
			return diag.Errorf(diag.ArgNull, "method %q has no invoke primitive", m.Name)
		}
	case MemberProperty, MemberField:
		if m.Get == nil && m.Set == nil {
			return diag.Errorf(diag.ArgNull, "%s %q has neither getter nor setter", m.Kind, m.Name)
		}
		if m.Kind == MemberField && len(m.Params) > 0 {
			return diag.Errorf(diag.ArgOutOfRange, "field %q cannot take index parameters", m.Name)
		}
	default:
		return diag.Errorf(diag.ArgOutOfRange, "invalid member kind %d", m.Kind)
	}
	if m.Name == "" {
		return diag.Errorf(diag.ArgNull, "member name is empty")
	}
	m.Name = normalizeName(m.Name)
	if m.Result == types.NoTypeID {
		m.Result = r.in.Builtins().Void
	}
	for i, p := range m.Params {
		if p.Type == types.NoTypeID {
			return diag.Errorf(diag.ArgNull, "parameter %d of %q has no type", i, m.Name)
		}
		if p.Variadic && (i != len(m.Params)-1 || r.in.KindOf(p.Type) != types.KindArray) {
			return diag.Errorf(diag.ArgOutOfRange, "parameter %q of %q: only a trailing array parameter can be variadic", p.Name, m.Name)
		}
	}
	for _, tp := range m.TypeParams {
		if r.in.KindOf(tp) != types.KindGenericParam {
			return diag.Errorf(diag.ArgOutOfRange, "type parameter of %q is %s, not a generic parameter", m.Name, r.in.Name(tp))
		}
	}
	return nil
}

// Member returns the definition registered under id.
func (r *Registry) Member(id MemberID) (*Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || int(id) >= len(r.byID) {
		return nil, false
	}
	return r.byID[id], true
}

// Declared returns the members declared directly on t, in declaration
// order, viewed through t when t is a generic instance.
func (r *Registry) Declared(t types.TypeID) []*Member {
	def, mapping := r.definitionOf(t)
	r.mu.RLock()
	tbl := r.tables[def]
	var src []*Member
	if tbl != nil {
		src = slices.Clone(tbl.order)
	}
	r.mu.RUnlock()
	out := make([]*Member, len(src))
	for i, m := range src {
		out[i] = r.view(m, t, mapping)
	}
	return out
}

// Members returns the members named name visible on t, nearest declaring
// type first. Constructors are not inherited. A member hides inherited
// members of the same kind and parameter types. With no kinds every kind is
// returned.
func (r *Registry) Members(t types.TypeID, name string, kinds ...MemberKind) []*Member {
	name = normalizeName(name)
	want := func(k MemberKind) bool {
		return len(kinds) == 0 || slices.Contains(kinds, k)
	}
	chain := []types.TypeID{t}
	if name != CtorName {
		chain = append(chain, r.in.Supertypes(t)...)
	}
	var out []*Member
	hidden := make(map[string]struct{})
	for _, owner := range chain {
		def, mapping := r.definitionOf(owner)
		r.mu.RLock()
		var src []*Member
		if tbl := r.tables[def]; tbl != nil {
			src = slices.Clone(tbl.byName[name])
		}
		r.mu.RUnlock()
		for _, m := range src {
			if !want(m.Kind) {
				continue
			}
			v := r.view(m, owner, mapping)
			sig := r.sigKey(v)
			if _, dup := hidden[sig]; dup {
				continue
			}
			hidden[sig] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Operators returns the public static unary conversion operators declared
// on t (op_Implicit / op_Explicit).
func (r *Registry) Operators(t types.TypeID) []*Member {
	var out []*Member
	for _, name := range []string{OpImplicit, OpExplicit} {
		def, mapping := r.definitionOf(t)
		r.mu.RLock()
		var src []*Member
		if tbl := r.tables[def]; tbl != nil {
			src = slices.Clone(tbl.byName[name])
		}
		r.mu.RUnlock()
		for _, m := range src {
			if m.Kind != MemberMethod || !m.Static || m.Visibility != Public || len(m.Params) != 1 || m.Params[0].Variadic || m.IsGenericDefinition() {
				continue
			}
			out = append(out, r.view(m, t, mapping))
		}
	}
	slices.SortStableFunc(out, func(a, b *Member) int { return a.Order - b.Order })
	return out
}

// definitionOf maps a generic instance to its definition and the parameter
// substitution; other types map to themselves.
func (r *Registry) definitionOf(t types.TypeID) (types.TypeID, map[types.TypeID]types.TypeID) {
	def, args, ok := r.in.GenericArgs(t)
	if !ok {
		return t, nil
	}
	params := r.in.TypeParams(def)
	mapping := make(map[types.TypeID]types.TypeID, len(params))
	for i, p := range params {
		if i < len(args) {
			mapping[p] = args[i]
		}
	}
	return def, mapping
}

// view returns m as seen through owner. Definitions are returned as-is.
func (r *Registry) view(m *Member, owner types.TypeID, mapping map[types.TypeID]types.TypeID) *Member {
	if owner == m.Declaring || len(mapping) == 0 {
		return m
	}
	key := viewKey{id: m.ID, declaring: owner}
	r.mu.RLock()
	v, ok := r.views[key]
	r.mu.RUnlock()
	if ok {
		return v
	}
	v = r.substitute(m, mapping)
	v.Declaring = owner
	if v.Kind == MemberConstructor {
		v.Result = owner
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.views[key]; ok {
		return prev
	}
	r.views[key] = v
	return v
}

func (r *Registry) substitute(m *Member, mapping map[types.TypeID]types.TypeID) *Member {
	cp := *m
	cp.Params = make([]Param, len(m.Params))
	for i, p := range m.Params {
		p.Type = r.in.Substitute(p.Type, mapping)
		cp.Params[i] = p
	}
	cp.Result = r.in.Substitute(m.Result, mapping)
	return &cp
}

func (r *Registry) sigKey(m *Member) string {
	key := m.Kind.String() + ":" + strconv.Itoa(len(m.TypeParams))
	for _, p := range m.Params {
		key += "," + strconv.FormatUint(uint64(p.Type), 10)
	}
	return key
}
