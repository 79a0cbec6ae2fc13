package m3u

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/alorle/iptv-collector/internal/candidate"
)

// Encoder writes ranked candidates as an extended M3U playlist.
type Encoder struct {
	epgURL   string
	logoBase string
}

// NewEncoder creates an encoder. epgURL is announced in the header when set;
// logoBase, when set, supplies "<logoBase>/<name>.png" for entries without a logo.
func NewEncoder(epgURL, logoBase string) *Encoder {
	return &Encoder{epgURL: epgURL, logoBase: logoBase}
}

func (e *Encoder) Encode(w io.Writer, cs []candidate.Candidate) error {
	if _, err := fmt.Fprintf(w, "#EXTM3U"); err != nil {
		return err
	}

	if e.epgURL != "" {
		if _, err := fmt.Fprintf(w, " x-tvg-url=\"%s\"", e.epgURL); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	for _, c := range cs {
		if err := e.encodeEntry(w, c); err != nil {
			return err
		}
	}

	return nil
}

func (e *Encoder) encodeEntry(w io.Writer, c candidate.Candidate) error {
	name := displayName(c)

	if _, err := fmt.Fprintf(w, "#EXTINF:-1"); err != nil {
		return err
	}

	attrs := e.tvgAttributes(c, name)
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if _, err := fmt.Fprintf(w, " %s=\"%s\"", k, attrs[k]); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", name, c.URL()); err != nil {
		return err
	}

	return nil
}

// tvgAttributes returns the attributes to emit: the source attributes minus
// group-title, with tvg-name and tvg-logo filled in when missing.
func (e *Encoder) tvgAttributes(c candidate.Candidate, name string) map[string]string {
	attrs := c.Attributes()
	delete(attrs, "group-title")

	if _, ok := attrs["tvg-name"]; !ok {
		attrs["tvg-name"] = name
	}
	if _, ok := attrs["tvg-logo"]; !ok && e.logoBase != "" {
		attrs["tvg-logo"] = e.logoBase + "/" + name + ".png"
	}
	return attrs
}

func displayName(c candidate.Candidate) string {
	if c.CleanName() != "" {
		return c.CleanName()
	}
	return c.Name()
}
