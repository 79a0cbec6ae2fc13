package probe

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/grafov/m3u8"
)

var manifestMarkers = [][]byte{[]byte("#EXTM3U"), []byte("#EXTINF"), []byte("#EXT-X-")}

// IsManifest reports whether the first bytes of a response look like a
// segmented-stream playlist rather than raw media.
func IsManifest(chunk []byte) bool {
	if mimetype.Detect(chunk).Is("application/vnd.apple.mpegurl") {
		return true
	}
	for _, marker := range manifestMarkers {
		if bytes.Contains(chunk, marker) {
			return true
		}
	}
	return false
}

// FirstSegment returns the first media locator of a manifest body, resolved
// against the manifest URL. A master playlist yields its first variant.
// Returns ErrNoSegment if the body has no locator line.
func FirstSegment(body []byte, manifestURL string) (string, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return "", fmt.Errorf("parsing manifest url: %w", err)
	}

	ref := decodeFirstURI(body)
	if ref == "" {
		ref = scanFirstURI(body)
	}
	if ref == "" {
		return "", ErrNoSegment
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing segment %q: %w", ref, err)
	}
	return base.ResolveReference(u).String(), nil
}

func decodeFirstURI(body []byte) string {
	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), false)
	if err != nil {
		return ""
	}

	switch listType {
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		for _, v := range master.Variants {
			// I-frame playlists carry only keyframes; they are never the stream itself
			if v == nil || v.Iframe {
				continue
			}
			if strings.TrimSpace(v.URI) != "" {
				return strings.TrimSpace(v.URI)
			}
		}
	case m3u8.MEDIA:
		media := playlist.(*m3u8.MediaPlaylist)
		for _, seg := range media.Segments {
			if seg == nil {
				break
			}
			if strings.TrimSpace(seg.URI) != "" {
				return strings.TrimSpace(seg.URI)
			}
		}
	}
	return ""
}

// scanFirstURI handles manifests the decoder rejects: the first line that is
// neither blank nor a comment.
func scanFirstURI(body []byte) string {
	for line := range strings.Lines(string(body)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}
