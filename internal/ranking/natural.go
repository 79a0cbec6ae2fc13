package ranking

import (
	"strings"
	"unicode"
)

// Part is one run of a natural key: either a digit run or a non-digit run.
// Digit runs may use any Unicode decimal digits, e.g. full-width "１２".
type Part struct {
	Text    string
	Numeric bool
}

// Key is a name split on digit-run boundaries. It always starts with a text
// part (possibly empty) and alternates text and digit runs, so parts at the
// same index have the same kind.
type Key []Part

// NaturalKey splits s into alternating text and digit runs.
// "CCTV10HD" becomes ["CCTV", 10, "HD"]; "10" becomes ["", 10, ""].
func NaturalKey(s string) Key {
	key := Key{}
	var cur strings.Builder
	numeric := false

	flush := func() {
		key = append(key, Part{Text: cur.String(), Numeric: numeric})
		cur.Reset()
	}

	for _, r := range s {
		isDigit := unicode.IsDigit(r)
		if isDigit != numeric {
			flush()
			numeric = isDigit
		}
		cur.WriteRune(r)
	}
	flush()

	// a trailing digit run is followed by an empty text run so "CCTV1" and
	// "CCTV1HD" line up part by part
	if numeric {
		numeric = false
		flush()
	}

	return key
}

// Compare orders two keys element-wise. Digit runs compare by numeric value,
// text runs lexically. When one key is a prefix of the other the shorter sorts first.
func Compare(a, b Key) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := comparePart(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool {
	return Compare(NaturalKey(a), NaturalKey(b)) < 0
}

func comparePart(a, b Part) int {
	if a.Numeric && b.Numeric {
		return compareDigits(a.Text, b.Text)
	}
	if a.Numeric != b.Numeric {
		// cannot happen for keys built by NaturalKey; keep the order total anyway
		if a.Numeric {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Text, b.Text)
}

// compareDigits compares two decimal digit runs by value without overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(asciiDigits(a), "0")
	b = strings.TrimLeft(asciiDigits(b), "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// asciiDigits rewrites a run of Unicode decimal digits as '0'-'9'.
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		return '0' + digitValue(r)
	}, s)
}

// digitValue returns the value of a Unicode decimal digit. Decimal digits are
// encoded in contiguous sets of ten starting at zero, so the value is the
// offset from the start of the surrounding digit range, modulo ten.
func digitValue(r rune) rune {
	if r >= '0' && r <= '9' {
		return r - '0'
	}
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return (r - start) % 10
}
