package candidate

import (
	"regexp"
	"strings"
)

var (
	// "CCTV-1_1080M2000(HD)" style bitrate/resolution tails
	bitrateSuffixRegex = regexp.MustCompile(`_.+M.+`)
	parenRegex         = regexp.MustCompile(`\(.*?\)`)
	fullWidthRegex     = regexp.MustCompile(`（.*?）`)
	bracketRegex       = regexp.MustCompile(`\[.*?\]`)
)

// CleanName strips editorial suffixes from a display name: the bitrate tail
// first, then bracketed annotations. The result is trimmed.
func CleanName(name string) string {
	name = bitrateSuffixRegex.ReplaceAllString(name, "")
	name = parenRegex.ReplaceAllString(name, "")
	name = fullWidthRegex.ReplaceAllString(name, "")
	name = bracketRegex.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
