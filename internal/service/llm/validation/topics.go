// Package validation normalizes generated topics against GitHub's
// platform constraints.
package validation

import (
	"regexp"
	"strings"
)

// MaxTopicLength is GitHub's limit on topic length.
const MaxTopicLength = 35

var (
	spaceUnderscoreRe = regexp.MustCompile(`[\s_]+`)
	invalidCharsRe    = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRunsRe      = regexp.MustCompile(`-+`)
)

// ValidateTopic validates and normalizes a candidate topic string:
//   - lowercase letters, numbers, and hyphens only
//   - spaces and underscores converted to hyphens
//   - must start with a letter or number
//   - maximum length of 35 characters
//
// Returns a properly formatted topic, or an empty string when the candidate
// is unrecoverable. A candidate containing a comma is rejected outright: it
// is most likely several topics incorrectly joined, and splitting on behalf
// of the caller would be guessing.
func ValidateTopic(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return ""
	}

	if strings.Contains(topic, ",") {
		return ""
	}

	topic = spaceUnderscoreRe.ReplaceAllString(topic, "-")
	topic = invalidCharsRe.ReplaceAllString(topic, "")
	topic = hyphenRunsRe.ReplaceAllString(topic, "-")
	topic = strings.Trim(topic, "-")

	if topic == "" || !isAlnum(topic[0]) {
		return ""
	}

	if len(topic) > MaxTopicLength {
		// Truncation can expose a trailing hyphen; strip it so validating
		// the output again is a no-op.
		topic = strings.TrimRight(topic[:MaxTopicLength], "-")
	}

	return topic
}

// SanitizeTopics validates every candidate topic and assembles the final
// list: current topics are retained first, then new candidates in discovery
// order, deduplicated case-insensitively and capped at max. Invalid
// candidates are silently dropped.
func SanitizeTopics(current, candidates []string, max int) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0, max)

	add := func(raw string) {
		topic := ValidateTopic(raw)
		if topic == "" {
			return
		}
		if _, ok := seen[topic]; ok {
			return
		}
		if max > 0 && len(result) >= max {
			return
		}
		seen[topic] = struct{}{}
		result = append(result, topic)
	}

	for _, t := range current {
		add(t)
	}
	for _, t := range candidates {
		add(t)
	}

	return result
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
