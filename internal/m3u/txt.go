package m3u

import (
	"fmt"
	"io"

	"github.com/alorle/iptv-collector/internal/candidate"
)

// EncodeTXT writes "name,url" lines grouped under a "keyword,#genre#" header
// each time the keyword changes. Input order is preserved.
func EncodeTXT(w io.Writer, cs []candidate.Candidate) error {
	current, started := "", false
	for _, c := range cs {
		if !started || c.Keyword() != current {
			if _, err := fmt.Fprintf(w, "%s,#genre#\n", c.Keyword()); err != nil {
				return err
			}
			current, started = c.Keyword(), true
		}

		if _, err := fmt.Fprintf(w, "%s,%s\n", displayName(c), c.URL()); err != nil {
			return err
		}
	}
	return nil
}
