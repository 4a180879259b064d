package pipeline

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

var (
	jsonFenceRe = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")
	bareFenceRe = regexp.MustCompile("```\\s*([\\s\\S]*?)\\s*```")
)

var errNoJSON = errors.New("no JSON object found in response")

// extractJSON unmarshals the first JSON object it can find in an LLM
// response into v. Models frequently wrap JSON in markdown fences or
// surround it with prose, so several extraction strategies are tried
// in order before giving up.
func extractJSON(text string, v any) error {
	candidates := []string{strings.TrimSpace(text)}

	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	if m := bareFenceRe.FindStringSubmatch(text); m != nil {
		candidates = append(candidates, m[1])
	}
	if span := braceSpan(text); span != "" {
		candidates = append(candidates, span)
	}

	for _, c := range candidates {
		if json.Unmarshal([]byte(c), v) == nil {
			return nil
		}
	}
	return errNoJSON
}

// braceSpan returns the widest {...} span in text, or "".
func braceSpan(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
