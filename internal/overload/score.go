package overload

import (
	"latebind/internal/conv"
	"latebind/internal/diag"
	"latebind/internal/host"
	"latebind/internal/types"
)

type candidate struct {
	binding *Binding
	formals []types.TypeID
	tier    conv.Tier
	cost    int
	penalty int
	generic bool
	usesOp  bool
	order   int
}

// evaluate matches, infers and scores one member in one form.
func (r *Resolver) evaluate(m *host.Member, form Form, mode Mode, shape Shape, flags Flags) (*candidate, bool) {
	explicit := flags&ExplicitCoercion != 0
	args := shape.Args
	var inst *conv.Conversion
	if mode == ModeLeadingArgument {
		c, ok := r.oracle.Classify(m.Declaring, args[0], explicit)
		if !ok {
			r.note(m, "instance argument does not convert")
			return nil, false
		}
		inst = &c
		args = args[1:]
	}
	params, _ := r.paramsFor(m, form)
	res := Match(r.in, params, args)
	if !res.OK {
		r.note(m, "arity")
		return nil, false
	}
	choices := []bool{res.Expanded}
	if res.EitherForm {
		choices = []bool{false, true}
	}
	for _, expanded := range choices {
		target := m
		if m.IsGenericDefinition() {
			formals := ExpandFormals(r.in, params, len(args), expanded)
			bound, ok := Infer(r.in, m.TypeParams, formals, args)
			if !ok {
				r.note(m, "type inference")
				continue
			}
			closed, err := r.reg.Instantiate(m, Ordered(m.TypeParams, bound))
			if err != nil {
				// constraint violations only rule the candidate out
				r.note(m, err.Error())
				continue
			}
			target = closed
		}
		if c, ok := r.score(target, form, mode, inst, args, expanded, res.Defaults, shape, explicit); ok {
			c.generic = m.IsGenericDefinition()
			return c, true
		}
	}
	return nil, false
}

func (r *Resolver) score(m *host.Member, form Form, mode Mode, inst *conv.Conversion, args []types.TypeID, expanded bool, defaults int, shape Shape, explicit bool) (*candidate, bool) {
	params, result := r.paramsFor(m, form)
	formals := ExpandFormals(r.in, params, len(args), expanded)
	c := &candidate{formals: formals}
	add := func(cv conv.Conversion) {
		c.tier = max(c.tier, cv.Tier())
		c.cost += cv.Cost()
		c.usesOp = c.usesOp || cv.UsesOperator()
	}
	if inst != nil {
		add(*inst)
	}
	convs := make([]conv.Conversion, len(args))
	for i, a := range args {
		cv, ok := r.oracle.Classify(formals[i], a, explicit)
		if !ok {
			r.note(m, "argument "+r.in.Name(a)+" does not convert to "+r.in.Name(formals[i]))
			return nil, false
		}
		convs[i] = cv
		add(cv)
	}
	b := &Binding{
		Member:   m,
		Form:     form,
		Mode:     mode,
		Shape:    shape,
		Instance: inst,
		Args:     convs,
		Expanded: expanded,
		Defaults: defaults,
	}
	if expanded {
		b.Fixed = len(params) - 1
	}
	void := r.in.Builtins().Void
	switch want := shape.Return; {
	case want == types.NoTypeID:
	case want == void:
		b.Discard = true
	case result == void:
		r.note(m, "returns void")
		return nil, false
	default:
		cv, ok := r.oracle.Classify(want, result, explicit)
		if !ok {
			r.note(m, "result does not convert to "+r.in.Name(want))
			return nil, false
		}
		if cv.Kind != conv.Identity {
			b.Return = &cv
		}
		add(cv)
	}
	if expanded {
		c.penalty++
	}
	c.penalty += defaults
	c.binding = b
	return c, true
}

// pick applies the tie-break ladder: best tier, lowest conversion cost,
// dominance, fewest expanded/default slots, non-generic over generic, and
// finally declaration order when every remaining candidate goes through a
// user conversion operator.
func (r *Resolver) pick(req Request, cands []*candidate) (*Binding, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	best := keepMin(cands, func(c *candidate) int { return int(c.tier) })
	best = keepMin(best, func(c *candidate) int { return c.cost })
	if len(best) > 1 {
		best = r.undominated(best)
	}
	best = keepMin(best, func(c *candidate) int { return c.penalty })
	best = keepMin(best, func(c *candidate) int {
		if c.generic {
			return 1
		}
		return 0
	})
	if len(best) == 1 {
		return best[0].binding, nil
	}
	allOps := true
	for _, c := range best {
		allOps = allOps && c.usesOp
	}
	if allOps {
		first := best[0]
		for _, c := range best[1:] {
			if c.order < first.order {
				first = c
			}
		}
		return first.binding, nil
	}
	name := req.Name
	if name == "" {
		name = host.CtorName
	}
	err := diag.Errorf(diag.BindAmbiguousMatch, "call %s.%s%s matches %d members equally well", r.in.Name(req.Type), name, req.Shape.Describe(r.in), len(best))
	for _, c := range best {
		err = err.WithNote("candidate: %s", host.Signature(r.in, c.binding.Member))
	}
	return nil, err
}

func keepMin(cands []*candidate, key func(*candidate) int) []*candidate {
	if len(cands) <= 1 {
		return cands
	}
	low := key(cands[0])
	for _, c := range cands[1:] {
		low = min(low, key(c))
	}
	out := cands[:0:0]
	for _, c := range cands {
		if key(c) == low {
			out = append(out, c)
		}
	}
	return out
}

// undominated drops every candidate for which another candidate is more
// specific.
func (r *Resolver) undominated(cands []*candidate) []*candidate {
	out := make([]*candidate, 0, len(cands))
	for i, c := range cands {
		dominated := false
		for j, d := range cands {
			if i != j && r.dominates(d, c) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return cands
	}
	return out
}

// dominates reports whether a's formals are at least as specific as b's
// everywhere and strictly more specific somewhere.
func (r *Resolver) dominates(a, b *candidate) bool {
	if len(a.formals) != len(b.formals) {
		return false
	}
	strict := false
	for i := range a.formals {
		fa, fb := a.formals[i], b.formals[i]
		if fa == fb {
			continue
		}
		if !r.oracle.IsImplicitlyConvertible(fb, fa) {
			return false
		}
		if !r.oracle.IsImplicitlyConvertible(fa, fb) {
			strict = true
		}
	}
	return strict
}
