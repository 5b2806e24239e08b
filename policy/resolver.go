package policy

import "sync"

// Match is the outcome of resolving a method.
type Match struct {
	Group  string
	Policy Policy
}

// Resolver maps full method names to groups. Results are memoized since a
// server only ever sees the methods it registered.
type Resolver struct {
	groups []*GroupBuilder
	memo   sync.Map // full method -> resolved
}

type resolved struct {
	m  Match
	ok bool
}

// NewResolver creates a Resolver over groups.
func NewResolver(groups ...*GroupBuilder) *Resolver {
	return &Resolver{groups: groups}
}

// Resolve finds the group fullMethod belongs to. Exact rules beat prefix
// rules, which beat regex rules; among rules of one kind the longer match
// wins, then the group registered first. ok is false when nothing matches.
func (res *Resolver) Resolve(fullMethod string) (Match, bool) {
	if res == nil {
		return Match{}, false
	}
	if v, hit := res.memo.Load(fullMethod); hit {
		r := v.(resolved)
		return r.m, r.ok
	}

	var (
		best     resolved
		bestKind = matchKind(-1)
		bestLen  = -1
	)
	for _, g := range res.groups {
		for _, r := range g.rules {
			n := r.span(fullMethod)
			if n < 0 {
				continue
			}
			if bestKind < 0 || r.kind < bestKind || (r.kind == bestKind && n > bestLen) {
				bestKind, bestLen = r.kind, n
				best = resolved{m: Match{Group: g.name, Policy: g.policy}, ok: true}
			}
		}
	}
	res.memo.Store(fullMethod, best)
	return best.m, best.ok
}
