package llm

import (
	"encoding/json"
	"strings"
)

// StripCodeFences removes markdown code-fence wrappers (```json ... ``` or
// ``` ... ```) that some models wrap around structured output.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i != -1 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if i := strings.LastIndex(s, "```"); i != -1 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	return s
}

// ParseTopicList extracts a list of topic strings from free-form model
// output. It first attempts a strict JSON parse of the bracketed substring,
// then falls back to heuristic line or comma splitting. The result is
// deduplicated case-insensitively and capped at max.
func ParseTopicList(text string, max int) []string {
	text = StripCodeFences(text)

	var topics []string
	parsed := false
	if raw, ok := extractDelimited(text, '[', ']'); ok {
		var items []interface{}
		if err := json.Unmarshal([]byte(raw), &items); err == nil {
			// A successful parse is authoritative even when it yields no
			// strings: non-string elements are dropped, not re-split.
			parsed = true
			for _, item := range items {
				if s, ok := item.(string); ok {
					topics = append(topics, s)
				}
			}
		}
	}

	if !parsed {
		topics = splitHeuristically(text)
	}

	return dedupeAndCap(topics, max)
}

// ParseAnalysis extracts a ReadmeAnalysis from free-form model output.
// Missing keys are backfilled with type-appropriate defaults so callers can
// trust every field.
func ParseAnalysis(text string) (*ReadmeAnalysis, error) {
	text = StripCodeFences(text)

	raw, ok := extractDelimited(text, '{', '}')
	if !ok {
		return nil, ErrResponseProcessing
	}

	var fields struct {
		Summary     string        `json:"summary"`
		Topics      []interface{} `json:"topics"`
		Entities    []interface{} `json:"entities"`
		Sentiment   string        `json:"sentiment"`
		Readability string        `json:"readability"`
		Suggestions []interface{} `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, ErrResponseProcessing
	}

	analysis := &ReadmeAnalysis{
		Summary:     fields.Summary,
		Topics:      coerceStrings(fields.Topics),
		Entities:    coerceStrings(fields.Entities),
		Sentiment:   fields.Sentiment,
		Readability: fields.Readability,
		Suggestions: coerceStrings(fields.Suggestions),
	}
	if analysis.Sentiment == "" {
		analysis.Sentiment = "neutral"
	}
	if analysis.Readability == "" {
		analysis.Readability = "unknown"
	}
	return analysis, nil
}

// extractDelimited returns the substring spanning the first open delimiter to
// the last close delimiter, or false when no such span exists.
func extractDelimited(s string, open, closing byte) (string, bool) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, closing)
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

// splitHeuristically splits raw text on newlines (or commas when there is a
// single line), stripping quote, bracket, and list-marker characters.
func splitHeuristically(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		lines = strings.Split(text, ",")
	}

	var items []string
	for _, line := range lines {
		item := strings.TrimSpace(line)
		item = strings.Trim(item, "\"'[]`,")
		item = strings.TrimLeft(item, "-* ")
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func coerceStrings(items []interface{}) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			result = append(result, s)
		}
	}
	return result
}

func dedupeAndCap(items []string, max int) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, strings.TrimSpace(item))
		if max > 0 && len(result) >= max {
			break
		}
	}
	return result
}
