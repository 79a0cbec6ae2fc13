// Package ranking imposes the final output order on validated candidates.
package ranking

import (
	"cmp"
	"slices"

	"github.com/alorle/iptv-collector/internal/candidate"
)

// Rank returns a new slice ordered by priority, then natural clean-name order,
// then latency, all ascending. Exact ties keep their input order.
func Rank(cs []candidate.Candidate) []candidate.Candidate {
	type entry struct {
		c   candidate.Candidate
		key Key
	}

	entries := make([]entry, len(cs))
	for i, c := range cs {
		entries[i] = entry{c: c, key: NaturalKey(c.CleanName())}
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.c.Priority(), b.c.Priority()); c != 0 {
			return c
		}
		if c := Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.c.LatencyOrZero(), b.c.LatencyOrZero())
	})

	out := make([]candidate.Candidate, len(entries))
	for i, e := range entries {
		out[i] = e.c
	}
	return out
}
