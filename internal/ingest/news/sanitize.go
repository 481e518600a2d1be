package news

import (
	"regexp"
	"strings"
)

const (
	minTopicLen = 3
	maxTopicLen = 60
)

var disallowed = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// Sanitize strips everything except ASCII letters, digits and whitespace,
// folds whitespace runs into single spaces and keeps topics whose length is
// strictly between 3 and 60. The result may be empty.
func Sanitize(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, q := range raw {
		clean := disallowed.ReplaceAllString(q, "")
		clean = strings.Join(strings.Fields(clean), " ")
		if len(clean) > minTopicLen && len(clean) < maxTopicLen {
			out = append(out, clean)
		}
	}
	return out
}
