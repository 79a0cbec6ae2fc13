package m3u

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alorle/iptv-collector/internal/candidate"
)

// UnknownName is used for an #EXTINF line that carries no display name.
const UnknownName = "Unknown"

var attributePattern = regexp.MustCompile(`([a-zA-Z0-9-]+)="([^"]*)"`)

// Decode parses a subscription body. Content containing #EXTM3U is read as an
// extended M3U playlist, anything else as "name,url" text lines.
// Entries whose URL is not an absolute locator are skipped.
func Decode(content []byte, source string) []candidate.Candidate {
	if bytes.Contains(content, []byte("#EXTM3U")) {
		return DecodeM3U(content, source)
	}
	return DecodeTXT(content, source)
}

// DecodeM3U reads #EXTINF entries. The display name follows the last comma
// and the URL is the next line that is neither blank nor a comment.
func DecodeM3U(content []byte, source string) []candidate.Candidate {
	lines := splitLines(content)

	var out []candidate.Candidate
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if !strings.HasPrefix(line, "#EXTINF:") {
			continue
		}

		meta, name := line, UnknownName
		if idx := strings.LastIndex(line, ","); idx != -1 {
			meta, name = line[:idx], strings.TrimSpace(line[idx+1:])
		}

		attrs := make(map[string]string)
		for _, m := range attributePattern.FindAllStringSubmatch(meta, -1) {
			attrs[m[1]] = m[2]
		}

		for j := i + 1; j < len(lines); j++ {
			next := lines[j]
			if next == "" || strings.HasPrefix(next, "#") {
				continue
			}
			if c, err := candidate.New(name, next, source, attrs); err == nil {
				out = append(out, c)
			}
			i = j
			break
		}
	}
	return out
}

// DecodeTXT reads "name,url" lines; "#genre#" group headers are skipped.
func DecodeTXT(content []byte, source string) []candidate.Candidate {
	var out []candidate.Candidate
	for _, line := range splitLines(content) {
		if !strings.Contains(line, ",") || strings.Contains(line, "#genre#") {
			continue
		}
		name, rawURL, _ := strings.Cut(line, ",")
		if c, err := candidate.New(name, rawURL, source, nil); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// splitLines splits on \n or \r\n with no limit on line length.
func splitLines(content []byte) []string {
	var lines []string
	for line := range strings.Lines(string(content)) {
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}
