package conv

import (
	"latebind/internal/host"
	"latebind/internal/types"
)

// Oracle decides implicit and explicit convertibility between two types
// and classifies the conversion it would use. It holds no mutable state of
// its own; operator discovery goes through the shared OperatorCache.
type Oracle struct {
	in  *types.Interner
	ops *OperatorCache
}

// NewOracle returns an oracle over in. ops may be nil, in which case user
// conversion operators are never considered.
func NewOracle(in *types.Interner, ops *OperatorCache) *Oracle {
	return &Oracle{in: in, ops: ops}
}

// Types returns the interner the oracle works on.
func (o *Oracle) Types() *types.Interner { return o.in }

// Operators returns the operator cache, possibly nil.
func (o *Oracle) Operators() *OperatorCache { return o.ops }

// IsImplicitlyConvertible reports whether source converts to target
// without a cast.
func (o *Oracle) IsImplicitlyConvertible(target, source types.TypeID) bool {
	_, ok := o.classify(target, source, false, true)
	return ok
}

// IsExplicitlyConvertible reports whether source converts to target with a
// cast. Every implicit conversion is also explicit.
func (o *Oracle) IsExplicitlyConvertible(target, source types.TypeID) bool {
	_, ok := o.classify(target, source, true, true)
	return ok
}

// Classify returns the conversion used for source -> target. With explicit
// set, narrowing, downcasts and explicit operators are admitted after every
// implicit rule has failed.
func (o *Oracle) Classify(target, source types.TypeID, explicit bool) (Conversion, bool) {
	return o.classify(target, source, explicit, true)
}

func (o *Oracle) classify(target, source types.TypeID, explicit, allowUser bool) (Conversion, bool) {
	if target == types.NoTypeID || source == types.NoTypeID {
		return Conversion{}, false
	}
	conv := Conversion{Source: source, Target: target}
	if target == source {
		conv.Kind = Identity
		return conv, true
	}
	b := o.in.Builtins()
	if target == b.Void || source == b.Void {
		return Conversion{}, false
	}
	if target == b.Object || o.in.IsAssignable(target, source) {
		conv.Kind = Reference
		return conv, true
	}

	tk, sk := o.in.KindOf(target), o.in.KindOf(source)
	if tk == types.KindNullable || sk == types.KindNullable {
		if c, ok := o.nullable(target, source, explicit, allowUser); ok {
			return c, true
		}
	}
	if Widens(tk, sk) {
		conv.Kind = NumericWidening
		return conv, true
	}
	if allowUser {
		if c, ok := o.user(target, source, false); ok {
			return c, true
		}
	}
	if !explicit {
		return Conversion{}, false
	}

	switch {
	case source == b.Object, o.in.IsAssignable(source, target):
		conv.Kind = Downcast
		return conv, true
	case tk == types.KindInterface && (sk.IsNominal() || sk == types.KindGenericParam),
		sk == types.KindInterface && (tk.IsNominal() || tk == types.KindGenericParam):
		conv.Kind = Downcast
		return conv, true
	case tk.IsNumeric() && sk.IsNumeric():
		conv.Kind = NumericNarrowing
		return conv, true
	}
	if allowUser {
		if c, ok := o.user(target, source, true); ok {
			return c, true
		}
	}
	return Conversion{}, false
}

// nullable handles the optional-of-T rules by recursing on the unwrapped
// pair.
func (o *Oracle) nullable(target, source types.TypeID, explicit, allowUser bool) (Conversion, bool) {
	tElem, sElem := target, source
	kind := NullableLift
	switch {
	case o.in.KindOf(target) == types.KindNullable && o.in.KindOf(source) == types.KindNullable:
		tElem, sElem = o.in.Elem(target), o.in.Elem(source)
	case o.in.KindOf(target) == types.KindNullable:
		tElem, kind = o.in.Elem(target), NullableWrap
	default:
		sElem, kind = o.in.Elem(source), NullableUnwrap
	}
	elem, ok := o.classify(tElem, sElem, explicit, allowUser)
	if !ok {
		return Conversion{}, false
	}
	return Conversion{Kind: kind, Source: source, Target: target, Elem: &elem}, true
}

// user looks for a single conversion operator bridging source and target.
// Operators on the target are scanned before operators on the source; the
// cheapest candidate wins and ties keep the first one found. The
// conversions around the operator are standard ones: operators never
// chain.
func (o *Oracle) user(target, source types.TypeID, explicit bool) (Conversion, bool) {
	if o.ops == nil {
		return Conversion{}, false
	}
	var best Conversion
	found := false
	consider := func(c Conversion) {
		if !found || c.Cost() < best.Cost() {
			best, found = c, true
		}
	}
	fromMask, toMask := ImplicitFrom, ImplicitTo
	if explicit {
		fromMask |= ExplicitFrom
		toMask |= ExplicitTo
	}
	if o.userOwner(target) {
		for _, d := range o.ops.GetOperators(target).Descriptors() {
			if d.Flags&fromMask == 0 || d.From == nil {
				continue
			}
			pre, ok := o.classify(d.Other, source, explicit, false)
			if !ok {
				continue
			}
			consider(o.userConversion(target, source, d.From, &pre, nil))
		}
	}
	if o.userOwner(source) {
		for _, d := range o.ops.GetOperators(source).Descriptors() {
			if d.Flags&toMask == 0 || d.To == nil {
				continue
			}
			post, ok := o.classify(target, d.Other, explicit, false)
			if !ok {
				continue
			}
			consider(o.userConversion(target, source, d.To, nil, &post))
		}
	}
	return best, found
}

// userOwner reports whether t can declare operators at all.
func (o *Oracle) userOwner(t types.TypeID) bool {
	k := o.in.KindOf(t)
	return k.IsNominal() || k.IsPrimitive()
}

func (o *Oracle) userConversion(target, source types.TypeID, op *host.Member, pre, post *Conversion) Conversion {
	c := Conversion{Kind: UserImplicit, Source: source, Target: target, Operator: op}
	if pre != nil && pre.Kind != Identity {
		c.Pre = pre
	}
	if post != nil && post.Kind != Identity {
		c.Post = post
	}
	if op.Name == host.OpExplicit || c.Tier() == TierExplicit {
		c.Kind = UserExplicit
	}
	return c
}
