package candidate

import (
	"errors"
	"maps"
	"net/url"
	"strings"
)

// Domain errors
var (
	ErrEmptyURL   = errors.New("candidate url cannot be empty")
	ErrInvalidURL = errors.New("candidate url must be an absolute locator")
)

// NoPriority marks a candidate that has not been classified by the filter stage.
const NoPriority = -1

// WhitelistKeyword labels whitelisted candidates that matched no keyword.
const WhitelistKeyword = "白名单"

// Candidate is one playlist entry flowing through the validation pipeline.
// Stages never mutate a Candidate in place: every With* method returns a copy
// with its own attribute map, so concurrent probes each own private data.
type Candidate struct {
	name       string
	cleanName  string
	url        string
	attributes map[string]string
	source     string
	keyword    string
	priority   int
	latencyMs  int64
	hasLatency bool
	resolution string
}

// New creates a Candidate from a parsed playlist entry.
// Returns ErrEmptyURL if rawURL is blank and ErrInvalidURL if it has no scheme or host.
func New(name, rawURL, source string, attrs map[string]string) (Candidate, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return Candidate{}, ErrEmptyURL
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Candidate{}, ErrInvalidURL
	}

	attributes := make(map[string]string, len(attrs))
	maps.Copy(attributes, attrs)

	return Candidate{
		name:       strings.TrimSpace(name),
		url:        rawURL,
		attributes: attributes,
		source:     strings.TrimSpace(source),
		priority:   NoPriority,
	}, nil
}

func (c Candidate) Name() string      { return c.name }
func (c Candidate) CleanName() string { return c.cleanName }
func (c Candidate) URL() string       { return c.url }
func (c Candidate) Source() string    { return c.source }
func (c Candidate) Keyword() string   { return c.keyword }
func (c Candidate) Priority() int     { return c.priority }

// Attributes returns a copy of the playlist attributes (tvg-id, tvg-logo, ...).
func (c Candidate) Attributes() map[string]string {
	return maps.Clone(c.attributes)
}

// Attribute returns a single attribute value and whether it is present.
func (c Candidate) Attribute(key string) (string, bool) {
	v, ok := c.attributes[key]
	return v, ok
}

// Latency returns the measured latency in milliseconds, if a prober stage set one.
func (c Candidate) Latency() (int64, bool) {
	return c.latencyMs, c.hasLatency
}

// LatencyOrZero is the sort-friendly form of Latency.
func (c Candidate) LatencyOrZero() int64 {
	return c.latencyMs
}

// Resolution returns the "<width>x<height>" reported by the deep prober, if any.
func (c Candidate) Resolution() (string, bool) {
	return c.resolution, c.resolution != ""
}

// Host returns the hostname of the candidate URL (without port or brackets).
func (c Candidate) Host() string {
	u, err := url.Parse(c.url)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// Classify records the filter stage decision.
func (c Candidate) Classify(cleanName, keyword string, priority int) Candidate {
	out := c.clone()
	out.cleanName = cleanName
	out.keyword = keyword
	out.priority = priority
	return out
}

// WithLatency stamps a latency without a resolution (skip-validation mode).
func (c Candidate) WithLatency(ms int64) Candidate {
	out := c.clone()
	out.latencyMs = ms
	out.hasLatency = true
	return out
}

// WithProbe stamps the deep prober outcome.
func (c Candidate) WithProbe(ms int64, resolution string) Candidate {
	out := c.WithLatency(ms)
	out.resolution = resolution
	return out
}

// WithAttribute adds or replaces one attribute. Attributes are never removed.
func (c Candidate) WithAttribute(key, value string) Candidate {
	out := c.clone()
	out.attributes[key] = value
	return out
}

func (c Candidate) clone() Candidate {
	out := c
	out.attributes = maps.Clone(c.attributes)
	if out.attributes == nil {
		out.attributes = make(map[string]string)
	}
	return out
}
