package overload

import (
	"slices"

	"latebind/internal/conv"
	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/trace"
	"latebind/internal/types"
)

// Request is one resolution query.
type Request struct {
	// Type is the declaring type, or the static type of the bound target.
	Type  types.TypeID
	Name  string
	Shape Shape
	Flags Flags
}

// Resolver runs the phased member search. It is stateless apart from its
// collaborators and safe for concurrent use.
type Resolver struct {
	reg    *host.Registry
	in     *types.Interner
	oracle *conv.Oracle
	tracer trace.Tracer
}

// NewResolver wires a resolver over reg and oracle. tracer may be nil.
func NewResolver(reg *host.Registry, oracle *conv.Oracle, tracer trace.Tracer) *Resolver {
	return &Resolver{reg: reg, in: reg.Types(), oracle: oracle, tracer: trace.OrNop(tracer)}
}

// Registry returns the member registry the resolver searches.
func (r *Resolver) Registry() *host.Registry { return r.reg }

// Oracle returns the conversion oracle used for scoring.
func (r *Resolver) Oracle() *conv.Oracle { return r.oracle }

type phaseStats struct {
	seen   int
	hidden int
}

// Resolve finds the single best member for req. Constructor requests
// (empty name, ".ctor" or CreateInstance) only search constructors;
// everything else searches methods, then properties, then fields and stops
// at the first phase with a survivor.
func (r *Resolver) Resolve(req Request) (*Binding, error) {
	if err := r.validate(req); err != nil {
		return nil, err
	}
	flags := req.Flags.normalize()
	span := trace.Begin(r.tracer, trace.ScopeResolve, "resolve", 0)
	span.WithExtra("type", r.in.Name(req.Type)).WithExtra("name", req.Name)

	var phases []host.MemberKind
	switch {
	case req.Name == "" || req.Name == host.CtorName || flags&CreateInstance != 0:
		phases = []host.MemberKind{host.MemberConstructor}
	case flags&Accessors != 0:
		phases = []host.MemberKind{host.MemberProperty, host.MemberField}
	default:
		phases = []host.MemberKind{host.MemberMethod, host.MemberProperty, host.MemberField}
	}
	var total phaseStats
	for _, kind := range phases {
		b, st, err := r.runPhase(req, flags, kind, span.ID())
		total.seen += st.seen
		total.hidden += st.hidden
		if err != nil {
			span.End(diag.CodeOf(err).ID())
			return nil, err
		}
		if b != nil {
			span.WithExtra("member", host.Signature(r.in, b.Member))
			span.End("ok")
			return b, nil
		}
	}
	err := r.failure(req, total)
	span.End(diag.CodeOf(err).ID())
	return nil, err
}

func (r *Resolver) validate(req Request) error {
	if req.Type == types.NoTypeID {
		return diag.Errorf(diag.ArgNull, "resolve %q: no type given", req.Name)
	}
	for i, a := range req.Shape.Args {
		if a == types.NoTypeID {
			return diag.Errorf(diag.ArgNull, "resolve %q: argument %d has no type", req.Name, i)
		}
	}
	if r.in.ContainsOpenParams(req.Type) {
		return diag.Errorf(diag.BindUnboundGenericParameter, "cannot resolve %q on open type %s", req.Name, r.in.Name(req.Type))
	}
	return nil
}

func (r *Resolver) failure(req Request, st phaseStats) error {
	name := req.Name
	if name == "" {
		name = host.CtorName
	}
	if st.seen > 0 && st.hidden == st.seen {
		return diag.Errorf(diag.BindAccessDenied, "%s.%s is not accessible with %s", r.in.Name(req.Type), name, req.Flags.normalize())
	}
	return diag.Errorf(diag.BindMissingMember, "no member %s.%s accepts %s", r.in.Name(req.Type), name, req.Shape.Describe(r.in))
}

func (r *Resolver) runPhase(req Request, flags Flags, kind host.MemberKind, parent uint64) (*Binding, phaseStats, error) {
	var st phaseStats
	name := req.Name
	if kind == host.MemberConstructor {
		name = host.CtorName
	}
	members := r.reg.Members(req.Type, name, kind)
	if len(members) == 0 {
		return nil, st, nil
	}
	span := trace.Begin(r.tracer, trace.ScopePhase, "phase:"+kind.String(), parent)
	var cands []*candidate
	for _, m := range members {
		st.seen++
		if !visible(m, flags) {
			st.hidden++
			r.note(m, "not visible")
			continue
		}
		mode, ok := modeFor(m, req.Shape, flags)
		if !ok {
			r.note(m, "static/instance mismatch")
			continue
		}
		for _, form := range formsOf(m) {
			if c, ok := r.evaluate(m, form, mode, req.Shape, flags); ok {
				c.order = len(cands)
				cands = append(cands, c)
			}
		}
	}
	best, err := r.pick(req, cands)
	switch {
	case err != nil:
		span.End(diag.CodeOf(err).ID())
	case best == nil:
		span.End("none")
	default:
		span.End("ok")
	}
	return best, st, err
}

// Bind plans a call of the given member without searching, e.g. for the
// getter and setter of an accessor.
func (r *Resolver) Bind(m *host.Member, form Form, shape Shape, flags Flags) (*Binding, error) {
	if m == nil {
		return nil, diag.Errorf(diag.ArgNull, "member is nil")
	}
	flags = flags.normalize()
	mode, ok := modeFor(m, shape, flags)
	if ok {
		if c, ok := r.evaluate(m, form, mode, shape, flags); ok {
			return c.binding, nil
		}
	}
	return nil, diag.Errorf(diag.BindMissingMember, "%s (%s) does not accept %s", host.Signature(r.in, m), form, shape.Describe(r.in))
}

// FindAccessor returns the property or field named name on t usable
// without index arguments. Properties are searched before fields.
func (r *Resolver) FindAccessor(t types.TypeID, name string, flags Flags, bound bool) (*host.Member, error) {
	req := Request{Type: t, Name: name, Shape: Shape{BoundTarget: bound}, Flags: flags}
	if err := r.validate(req); err != nil {
		return nil, err
	}
	flags = flags.normalize()
	var st phaseStats
	for _, kind := range []host.MemberKind{host.MemberProperty, host.MemberField} {
		for _, m := range r.reg.Members(t, name, kind) {
			if len(m.Params) > 0 {
				continue
			}
			st.seen++
			if !visible(m, flags) {
				st.hidden++
				continue
			}
			if _, ok := modeFor(m, req.Shape, flags); ok {
				return m, nil
			}
		}
	}
	return nil, r.failure(req, st)
}

func visible(m *host.Member, flags Flags) bool {
	if m.Visibility == host.Public {
		return flags&Public != 0
	}
	return flags&NonPublic != 0
}

func modeFor(m *host.Member, shape Shape, flags Flags) (Mode, bool) {
	switch {
	case m.Kind == host.MemberConstructor:
		return ModeNone, !shape.BoundTarget
	case m.Static:
		return ModeNone, flags&Static != 0 && !shape.BoundTarget
	case flags&Instance == 0:
		return ModeNone, false
	case shape.BoundTarget:
		return ModeBoundTarget, true
	default:
		return ModeLeadingArgument, len(shape.Args) > 0
	}
}

func formsOf(m *host.Member) []Form {
	switch m.Kind {
	case host.MemberProperty, host.MemberField:
		var out []Form
		if m.CanRead() {
			out = append(out, FormGet)
		}
		if m.CanWrite() {
			out = append(out, FormSet)
		}
		return out
	default:
		return []Form{FormCall}
	}
}

// paramsFor returns the parameter list a form exposes: index parameters,
// plus the value for setters.
func (r *Resolver) paramsFor(m *host.Member, form Form) ([]host.Param, types.TypeID) {
	if form != FormSet {
		return m.Params, m.Result
	}
	params := slices.Clone(m.Params)
	params = append(params, host.Param{Name: "value", Type: m.Result})
	return params, r.in.Builtins().Void
}

func (r *Resolver) note(m *host.Member, why string) {
	if !r.tracer.Enabled() || !r.tracer.Level().ShouldEmit(trace.ScopeCandidate) {
		return
	}
	trace.Point(r.tracer, trace.ScopeCandidate, "candidate", host.Signature(r.in, m)+": "+why)
}
