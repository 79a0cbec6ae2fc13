// Package policy applies the keyword, blacklist and whitelist rules that decide
// which playlist entries enter validation, and collapses duplicate URLs.
package policy

import (
	"strings"

	"github.com/alorle/iptv-collector/internal/candidate"
)

// Policy holds the operator lists. Every list entry is matched as a plain substring.
type Policy struct {
	// Keywords in preference order; the index of the first match becomes the priority.
	Keywords  []string
	Blacklist []string
	Whitelist []string
	// AllowIPv6 is the process-wide capability resolved once at startup.
	AllowIPv6 bool
}

// Whitelisted reports whether the candidate URL contains any whitelist entry.
func (p Policy) Whitelisted(c candidate.Candidate) bool {
	for _, w := range p.Whitelist {
		if w != "" && strings.Contains(c.URL(), w) {
			return true
		}
	}
	return false
}

// Blacklisted reports whether a blacklist entry rejects the candidate.
// A whitelisted URL is exempt unless the matching blacklist entry also appears
// in the candidate's source playlist; source-scoped entries always apply.
func (p Policy) Blacklisted(c candidate.Candidate) bool {
	whitelisted := p.Whitelisted(c)
	for _, b := range p.Blacklist {
		if b == "" || !strings.Contains(c.URL(), b) {
			continue
		}
		if !whitelisted || strings.Contains(c.Source(), b) {
			return true
		}
	}
	return false
}

// Match returns the first keyword, in list order, contained in cleanName.
// Separators are ignored on both sides so "CCTV-1" matches "CCTV1".
func (p Policy) Match(cleanName string) (keyword string, priority int, ok bool) {
	compactName := compact(cleanName)
	for i, kw := range p.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(cleanName, kw) {
			return kw, i, true
		}
		// a keyword made only of separators has no compact form to look for
		if ck := compact(kw); ck != "" && strings.Contains(compactName, ck) {
			return kw, i, true
		}
	}
	return "", candidate.NoPriority, false
}

// WhitelistPriority is the bucket for whitelisted entries without a keyword;
// it sorts after every keyword match.
func (p Policy) WhitelistPriority() int {
	return len(p.Keywords)
}

// Filter drops blacklisted and unmatched entries and classifies the rest.
// Output order follows input order but carries no meaning.
func (p Policy) Filter(cs []candidate.Candidate) []candidate.Candidate {
	out := make([]candidate.Candidate, 0, len(cs))
	for _, c := range cs {
		if p.Blacklisted(c) {
			continue
		}

		cleanName := candidate.CleanName(c.Name())
		whitelisted := p.Whitelisted(c)

		if p.routable(c) {
			if kw, prio, ok := p.Match(cleanName); ok {
				out = append(out, c.Classify(cleanName, kw, prio))
				continue
			}
		}

		if whitelisted {
			out = append(out, c.Classify(cleanName, candidate.WhitelistKeyword, p.WhitelistPriority()))
		}
	}
	return out
}

// Apply runs Filter then Dedup.
func (p Policy) Apply(cs []candidate.Candidate) []candidate.Candidate {
	return Dedup(p.Filter(cs))
}

// routable reports whether the candidate can take a keyword bucket on this host:
// literal IPv6 URLs need IPv6 connectivity.
func (p Policy) routable(c candidate.Candidate) bool {
	if p.AllowIPv6 {
		return true
	}
	return !strings.Contains(c.Host(), ":")
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ', '.':
			return -1
		}
		return r
	}, s)
}
