package analyst

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeFence = regexp.MustCompile("```(?:json)?")

// parseKeywords reads the model's keyword list. Code fences are stripped and
// anything that is not a JSON array of strings yields nil.
func parseKeywords(raw string) []string {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))

	var keywords []string
	if err := json.Unmarshal([]byte(cleaned), &keywords); err != nil {
		return nil
	}

	out := keywords[:0]
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
