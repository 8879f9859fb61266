package metadata

import (
	"strings"
	"time"
)

// NormalizeIssueNumber canonicalizes an issue number by stripping leading
// zero characters. Stripping is positional only: "0017" becomes "17" and
// "000" collapses to "0". It never infers a numeric value from context.
func NormalizeIssueNumber(raw string) string {
	if raw == "" {
		return ""
	}
	trimmed := strings.TrimLeft(raw, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}

// ParseCoverDate parses raw using a date pattern written with yyyy/MM/dd
// style tokens, the format scraping rules are configured with. A malformed
// value or pattern yields ok=false; it never panics or returns an error.
func ParseCoverDate(raw string, pattern string) (time.Time, bool) {
	if raw == "" || pattern == "" {
		return time.Time{}, false
	}

	parsed, err := time.Parse(dateLayout(pattern), raw)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// dateLayout translates a rule's date-format tokens into a Go reference
// layout. Unrecognized characters pass through as literals.
func dateLayout(pattern string) string {
	var layout strings.Builder

	for i := 0; i < len(pattern); {
		c := pattern[i]
		if !isLayoutLetter(c) {
			layout.WriteByte(c)
			i++
			continue
		}

		run := 1
		for i+run < len(pattern) && pattern[i+run] == c {
			run++
		}

		layout.WriteString(layoutToken(c, run))
		i += run
	}

	return layout.String()
}

func isLayoutLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func layoutToken(c byte, run int) string {
	switch c {
	case 'y':
		if run == 2 {
			return "06"
		}
		return "2006"
	case 'M':
		switch run {
		case 1:
			return "1"
		case 2:
			return "01"
		case 3:
			return "Jan"
		default:
			return "January"
		}
	case 'd':
		if run == 1 {
			return "2"
		}
		return "02"
	case 'H':
		return "15"
	case 'm':
		if run == 1 {
			return "4"
		}
		return "04"
	case 's':
		if run == 1 {
			return "5"
		}
		return "05"
	default:
		return strings.Repeat(string(c), run)
	}
}
