package policy

import "github.com/alorle/iptv-collector/internal/candidate"

// Dedup removes candidates whose URL was already seen.
// The first occurrence wins; attributes of later duplicates are discarded, not merged.
func Dedup(cs []candidate.Candidate) []candidate.Candidate {
	seen := make(map[string]bool, len(cs))
	out := make([]candidate.Candidate, 0, len(cs))

	for _, c := range cs {
		if seen[c.URL()] {
			continue
		}
		seen[c.URL()] = true
		out = append(out, c)
	}

	return out
}
