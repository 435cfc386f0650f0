package conv

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"latebind/internal/host"
	"latebind/internal/trace"
	"latebind/internal/types"
)

// DefaultOperatorCacheSize bounds the number of types whose operator sets
// are kept.
const DefaultOperatorCacheSize = 100

// Flags records which conversion operators exist between an owner type and
// one other type. A pair may hold several flags.
type Flags uint8

const (
	// ImplicitFrom: implicit Other -> Owner.
	ImplicitFrom Flags = 1 << iota
	// ImplicitTo: implicit Owner -> Other.
	ImplicitTo
	// ExplicitFrom: explicit Other -> Owner.
	ExplicitFrom
	// ExplicitTo: explicit Owner -> Other.
	ExplicitTo
)

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	out := ""
	for _, item := range []struct {
		flag Flags
		name string
	}{{ImplicitFrom, "implicit-from"}, {ImplicitTo, "implicit-to"}, {ExplicitFrom, "explicit-from"}, {ExplicitTo, "explicit-to"}} {
		if f&item.flag == 0 {
			continue
		}
		if out != "" {
			out += "|"
		}
		out += item.name
	}
	return out
}

// Descriptor merges every operator declared on Owner against Other.
// From converts Other to Owner, To converts Owner to Other; an implicit
// operator is preferred over an explicit one for the same direction.
type Descriptor struct {
	Owner types.TypeID
	Other types.TypeID
	Flags Flags
	From  *host.Member
	To    *host.Member
}

// OperatorSet is the published, read-only operator table of one type.
type OperatorSet struct {
	Owner   types.TypeID
	byOther map[types.TypeID]*Descriptor
	order   []*Descriptor
}

// Lookup returns the descriptor for other.
func (s *OperatorSet) Lookup(other types.TypeID) (*Descriptor, bool) {
	if s == nil {
		return nil, false
	}
	d, ok := s.byOther[other]
	return d, ok
}

// Descriptors returns descriptors in declaration order of their first
// operator.
func (s *OperatorSet) Descriptors() []*Descriptor {
	if s == nil {
		return nil
	}
	return s.order
}

// Len returns the number of distinct other-types.
func (s *OperatorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Map returns a copy of the table keyed by the other type.
func (s *OperatorSet) Map() map[types.TypeID]Descriptor {
	out := make(map[types.TypeID]Descriptor, s.Len())
	for _, d := range s.Descriptors() {
		out[d.Other] = *d
	}
	return out
}

// OperatorCache discovers conversion operators lazily and keeps them in a
// bounded LRU keyed by owning type. Concurrent first use may compute a set
// twice; the first published set wins.
type OperatorCache struct {
	reg    *host.Registry
	cache  *lru.Cache[types.TypeID, *OperatorSet]
	tracer trace.Tracer

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewOperatorCache returns a cache holding at most size types (the default
// when size <= 0).
func NewOperatorCache(reg *host.Registry, size int, tracer trace.Tracer) (*OperatorCache, error) {
	if size <= 0 {
		size = DefaultOperatorCacheSize
	}
	c, err := lru.New[types.TypeID, *OperatorSet](size)
	if err != nil {
		return nil, err
	}
	return &OperatorCache{reg: reg, cache: c, tracer: trace.OrNop(tracer)}, nil
}

// GetOperators returns the operator set of t.
func (c *OperatorCache) GetOperators(t types.TypeID) *OperatorSet {
	if set, ok := c.cache.Get(t); ok {
		c.hits.Add(1)
		return set
	}
	c.misses.Add(1)
	set := c.build(t)
	if prev, found, _ := c.cache.PeekOrAdd(t, set); found {
		return prev
	}
	trace.Point(c.tracer, trace.ScopeCandidate, "cache:operators", c.reg.Types().Name(t))
	return set
}

// Stats reports hits, misses and the number of cached types.
func (c *OperatorCache) Stats() (hits, misses uint64, size int) {
	return c.hits.Load(), c.misses.Load(), c.cache.Len()
}

// Purge drops every cached set.
func (c *OperatorCache) Purge() {
	c.cache.Purge()
}

func (c *OperatorCache) build(t types.TypeID) *OperatorSet {
	set := &OperatorSet{Owner: t, byOther: make(map[types.TypeID]*Descriptor)}
	for _, op := range c.reg.Operators(t) {
		param, result := op.Params[0].Type, op.Result
		implicit := op.Name == host.OpImplicit
		var other types.TypeID
		var flag Flags
		switch {
		case result == t && param != t:
			other, flag = param, ExplicitFrom
			if implicit {
				flag = ImplicitFrom
			}
		case param == t && result != t:
			other, flag = result, ExplicitTo
			if implicit {
				flag = ImplicitTo
			}
		default:
			continue
		}
		d := set.byOther[other]
		if d == nil {
			d = &Descriptor{Owner: t, Other: other}
			set.byOther[other] = d
			set.order = append(set.order, d)
		}
		d.Flags |= flag
		switch flag {
		case ImplicitFrom, ExplicitFrom:
			if d.From == nil || (implicit && d.From.Name != host.OpImplicit) {
				d.From = op
			}
		default:
			if d.To == nil || (implicit && d.To.Name != host.OpImplicit) {
				d.To = op
			}
		}
	}
	return set
}
