// Package sanitize strips markup and script-triggering patterns from
// untrusted string input. All form fields pass through here before
// validation or persistence.
package sanitize

import (
	"regexp"
	"strings"
)

// Options controls optional normalization applied after stripping.
type Options struct {
	// Trim removes leading and trailing whitespace.
	Trim bool
	// MaxLength truncates the result to at most this many bytes.
	// Zero means no limit.
	MaxLength int
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>?`)
	jsSchemePattern   = regexp.MustCompile(`(?i)javascript\s*:`)
	vbSchemePattern   = regexp.MustCompile(`(?i)vbscript\s*:`)
	eventAttrPattern  = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	expressionPattern = regexp.MustCompile(`(?i)expression\s*\(`)
	controlPattern    = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
)

// patterns are applied repeatedly until a fixpoint so that removal can
// never splice a new match together (e.g. "java<b>script:"). This is what
// makes Sanitize idempotent.
var patterns = []*regexp.Regexp{
	tagPattern,
	jsSchemePattern,
	vbSchemePattern,
	eventAttrPattern,
	expressionPattern,
	controlPattern,
}

// Sanitize strips markup tags, script-triggering patterns and control
// characters from s, then applies the requested trimming and truncation.
// It is idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string, opts Options) string {
	for {
		before := s
		for _, p := range patterns {
			s = p.ReplaceAllString(s, "")
		}
		if s == before {
			break
		}
	}

	if opts.Trim {
		s = strings.TrimSpace(s)
	}
	if opts.MaxLength > 0 && len(s) > opts.MaxLength {
		s = s[:opts.MaxLength]
		if opts.Trim {
			s = strings.TrimSpace(s)
		}
	}

	return s
}

// Field sanitizes a form field value with the defaults used across the
// submission pipeline: trimmed and capped at a defensive length.
func Field(s string) string {
	return Sanitize(s, Options{Trim: true, MaxLength: 256})
}
