package providers

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

const (
	localMinDescriptionLength = 50
	localMaxDescriptionLength = 250
	localMaxTopics            = 10
)

// nameStopwords filters repository-name tokens.
var nameStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {},
}

// wordStopwords filters README heading and body tokens.
var wordStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "this": {}, "that": {},
}

// commonTopics is a fixed vocabulary of widespread GitHub topics matched as
// substrings against the README and the current topics.
var commonTopics = []string{
	"github", "repository", "project", "code", "open-source",
	"development", "programming", "software", "tool", "utility",
	"library", "framework", "api", "app", "application",
	"automation", "cli", "command-line", "web", "data",
	"analysis", "machine-learning", "ai", "documentation",
}

var (
	alnumRunRe     = regexp.MustCompile(`[a-zA-Z0-9]+`)
	headingRe      = regexp.MustCompile(`#+\s+(.+)`)
	firstHeadingRe = regexp.MustCompile(`#\s+(.+)`)
	markdownMarkRe = regexp.MustCompile(`[#*_]`)
	blankLineRe    = regexp.MustCompile(`\n\s*\n`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+`)
	capitalWordRe  = regexp.MustCompile(`[A-Z][a-zA-Z]+`)
)

// LocalProvider is a fully offline, deterministic implementation of the
// Provider contract built on text heuristics. It never fails on malformed
// input: absent fields degrade to defaults instead of errors.
type LocalProvider struct{}

// NewLocalProvider creates a new local rule-based provider
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// GenerateDescription builds a description from the first substantive README
// line, falling back to a synthesized sentence from the repository name,
// languages, and topics.
func (p *LocalProvider) GenerateDescription(_ context.Context, repoName string, languages, topics []string, readme string) (string, error) {
	firstLine := firstContentLine(readme)
	firstLine = markdownMarkRe.ReplaceAllString(firstLine, "")

	var description string
	if len(firstLine) >= localMinDescriptionLength {
		description = firstLine
	} else {
		displayName := displayName(repoName)
		if len(languages) > 0 {
			description = fmt.Sprintf("A %s project for %s", languages[0], displayName)
			if len(languages) > 1 {
				extra := languages[1:]
				if len(extra) > 2 {
					extra = extra[:2]
				}
				description += " using " + strings.Join(extra, ", ")
			}
		} else {
			description = fmt.Sprintf("A project for %s", displayName)
		}
		if len(topics) > 0 {
			shown := topics
			if len(shown) > 3 {
				shown = shown[:3]
			}
			description += " focused on " + strings.Join(shown, ", ")
		}
	}

	return truncateWithEllipsis(description, localMaxDescriptionLength), nil
}

// GenerateTopics derives candidate topics from the repository name,
// languages, README headings, README word frequency, and a common-topics
// vocabulary. Current topics are always retained first when capping.
func (p *LocalProvider) GenerateTopics(_ context.Context, repoName string, languages, currentTopics []string, readme string) ([]string, error) {
	topics := newTopicAccumulator(currentTopics)

	for _, part := range alnumRunRe.FindAllString(strings.ToLower(repoName), -1) {
		if len(part) >= 2 && !isStopword(part, nameStopwords) {
			topics.add(part)
		}
	}

	for _, lang := range languages {
		topics.add(strings.ToLower(lang))
	}

	if readme != "" {
		for _, word := range headingWords(readme) {
			topics.add(word)
		}
		frequent := frequentWords(readme, 20)
		if len(frequent) > 5 {
			frequent = frequent[:5]
		}
		for _, word := range frequent {
			topics.add(word)
		}
	}

	readmeLower := strings.ToLower(readme)
	for _, topic := range commonTopics {
		if strings.Contains(readmeLower, topic) || anyContains(currentTopics, topic) {
			topics.add(topic)
		}
	}

	return topics.capped(localMaxTopics), nil
}

// AnalyzeReadme performs a rule-based analysis of README content
func (p *LocalProvider) AnalyzeReadme(_ context.Context, readme string) (*llm.ReadmeAnalysis, error) {
	if readme == "" {
		return llm.EmptyReadmeAnalysis(), nil
	}

	return &llm.ReadmeAnalysis{
		Summary:     extractSummary(readme),
		Topics:      extractReadmeTopics(readme, 10),
		Entities:    extractEntities(readme, 10),
		Sentiment:   estimateSentiment(readme),
		Readability: estimateReadability(readme),
		Suggestions: readmeSuggestions(readme),
	}, nil
}

// GenerateReadme returns an existing substantive README unchanged; otherwise
// it synthesizes a template README from the repository metadata.
func (p *LocalProvider) GenerateReadme(_ context.Context, repoName string, languages, topics []string, description, existingReadme string) (string, error) {
	if len(existingReadme) >= llm.MinReadmeLength {
		return existingReadme, nil
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", displayName(repoName)))
	sb.WriteString(description + "\n\n")

	if len(languages) > 0 {
		sb.WriteString("## Languages\n\n")
		for _, lang := range languages {
			sb.WriteString(fmt.Sprintf("![%s](https://img.shields.io/badge/-%s-%s?style=flat-square&logo=%s)\n",
				lang, lang, languageColor(lang), strings.ToLower(lang)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Installation\n\n")
	sb.WriteString("```bash\n")
	sb.WriteString(fmt.Sprintf("# Clone the repository\ngit clone https://github.com/username/%s.git\ncd %s\n", repoName, repoName))
	if hasLanguage(languages, "python") {
		sb.WriteString("\n# Install dependencies\npip install -r requirements.txt\n")
	}
	sb.WriteString("```\n\n")

	sb.WriteString("## Usage\n\n")
	sb.WriteString("```bash\n")
	sb.WriteString(usageCommand(repoName, languages) + "\n")
	sb.WriteString("```\n\n")

	sb.WriteString("## Features\n\n")
	shown := topics
	if len(shown) > 5 {
		shown = shown[:5]
	}
	for _, topic := range shown {
		sb.WriteString(fmt.Sprintf("- %s\n", displayName(topic)))
	}
	sb.WriteString("\n")

	sb.WriteString("## Contributing\n\n")
	sb.WriteString("Contributions are welcome! Please feel free to submit a Pull Request.\n\n")

	sb.WriteString("## License\n\n")
	sb.WriteString("This project is licensed under the MIT License - see the LICENSE file for details.\n")

	return sb.String(), nil
}

// ValidateAPIKey always succeeds: the local provider has no external
// dependency.
func (p *LocalProvider) ValidateAPIKey(_ context.Context) bool {
	return true
}

// ModelInfo returns the provider's static self-description
func (p *LocalProvider) ModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:     "local-rule-based",
		Version:  "1.0.0",
		Provider: "local",
		Capabilities: []string{
			"description_generation",
			"topic_generation",
			"readme_analysis",
			"readme_generation",
		},
	}
}

// Close implements the Provider interface
func (p *LocalProvider) Close() error {
	return nil
}

// --- heuristics ---

// firstContentLine returns the first non-empty README line that is neither a
// heading nor a horizontal rule.
func firstContentLine(readme string) string {
	for _, line := range strings.Split(strings.TrimSpace(readme), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "---") {
			return line
		}
	}
	return ""
}

// displayName converts a repository or topic name into a title-cased
// human-readable form.
func displayName(name string) string {
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	words := strings.Fields(name)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// headingWords extracts candidate topic words from markdown heading text.
func headingWords(readme string) []string {
	var words []string
	for _, match := range headingRe.FindAllStringSubmatch(readme, -1) {
		for _, word := range alnumRunRe.FindAllString(strings.ToLower(match[1]), -1) {
			if len(word) > 3 && !isStopword(word, wordStopwords) {
				words = append(words, word)
			}
		}
	}
	return words
}

// frequentWords returns the top-n most frequent stopword-filtered words in
// the text, most common first, ties broken by first occurrence order.
func frequentWords(text string, n int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, word := range alnumRunRe.FindAllString(strings.ToLower(text), -1) {
		if len(word) <= 3 || isStopword(word, wordStopwords) {
			continue
		}
		if _, ok := counts[word]; !ok {
			firstSeen[word] = i
		}
		counts[word]++
	}

	words := make([]string, 0, len(counts))
	for word := range counts {
		words = append(words, word)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return firstSeen[words[i]] < firstSeen[words[j]]
	})

	if len(words) > n {
		words = words[:n]
	}
	return words
}

// extractSummary returns the first substantive paragraph, or the first
// top-level heading text when no paragraph qualifies.
func extractSummary(readme string) string {
	for _, paragraph := range blankLineRe.Split(readme, -1) {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") && len(paragraph) > 30 {
			return markdownMarkRe.ReplaceAllString(trimmed, "")
		}
	}
	if match := firstHeadingRe.FindStringSubmatch(readme); match != nil {
		return match[1]
	}
	return ""
}

// extractReadmeTopics combines heading-derived words with frequent body
// words, preserving discovery order.
func extractReadmeTopics(readme string, max int) []string {
	var topics []string
	seen := make(map[string]struct{})

	appendTopic := func(word string) {
		if _, ok := seen[word]; ok {
			return
		}
		seen[word] = struct{}{}
		topics = append(topics, word)
	}

	for _, word := range headingWords(readme) {
		appendTopic(word)
	}
	for _, word := range frequentWords(readme, 10) {
		appendTopic(word)
	}

	if len(topics) > max {
		topics = topics[:max]
	}
	return topics
}

// extractEntities finds capitalized words that do not immediately follow a
// sentence-ending period, a naive stand-in for named-entity recognition.
func extractEntities(readme string, max int) []string {
	excluded := map[string]struct{}{
		"I": {}, "The": {}, "A": {}, "An": {}, "This": {}, "That": {},
	}

	var entities []string
	seen := make(map[string]struct{})

	for _, loc := range capitalWordRe.FindAllStringIndex(readme, -1) {
		if loc[0] >= 2 && readme[loc[0]-2] == '.' && readme[loc[0]-1] == ' ' {
			continue
		}
		word := readme[loc[0]:loc[1]]
		if _, ok := excluded[word]; ok {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		entities = append(entities, word)
		if len(entities) >= max {
			break
		}
	}

	return entities
}

// estimateSentiment counts small fixed positive/negative word lists. The
// dominant polarity must exceed twice the other to leave neutral.
func estimateSentiment(readme string) string {
	positiveWords := []string{"good", "great", "excellent", "amazing", "awesome", "best", "better", "improved"}
	negativeWords := []string{"bad", "poor", "terrible", "worst", "difficult", "hard", "complex", "issue", "problem"}

	lower := strings.ToLower(readme)
	var positive, negative int
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	switch {
	case positive > negative*2:
		return "positive"
	case negative > positive*2:
		return "negative"
	default:
		return "neutral"
	}
}

// estimateReadability classifies the README by mean words per sentence.
func estimateReadability(readme string) string {
	sentences := sentenceEndRe.Split(readme, -1)
	if len(sentences) == 0 {
		return "good"
	}

	var totalWords int
	for _, sentence := range sentences {
		totalWords += len(strings.Fields(sentence))
	}
	avg := float64(totalWords) / float64(len(sentences))

	switch {
	case avg > 25:
		return "complex"
	case avg < 10:
		return "simple"
	default:
		return "good"
	}
}

// readmeSuggestions checks for short content and missing standard sections.
func readmeSuggestions(readme string) []string {
	suggestions := []string{}

	if len(readme) < 500 {
		suggestions = append(suggestions, "Add more content to your README file.")
	}

	lower := strings.ToLower(readme)
	sections := []struct {
		name       string
		suggestion string
	}{
		{"installation", "Add an Installation section to your README."},
		{"usage", "Add a Usage section to your README."},
		{"contributing", "Add a Contributing section to your README."},
		{"license", "Add a License section to your README."},
	}
	for _, s := range sections {
		if !strings.Contains(lower, s.name) {
			suggestions = append(suggestions, s.suggestion)
		}
	}

	return suggestions
}

// usageCommand picks a language-specific run command, first match wins.
func usageCommand(repoName string, languages []string) string {
	switch {
	case hasLanguage(languages, "python"):
		return "python main.py"
	case hasLanguage(languages, "javascript"), hasLanguage(languages, "typescript"):
		return "npm start"
	case hasLanguage(languages, "java"):
		return fmt.Sprintf("java -jar %s.jar", repoName)
	case hasLanguage(languages, "go"):
		return "go run main.go"
	case hasLanguage(languages, "rust"):
		return "cargo run"
	default:
		return "# Add usage instructions here"
	}
}

// languageColor returns the badge color for a programming language
func languageColor(language string) string {
	colors := map[string]string{
		"Python":     "3776AB",
		"JavaScript": "F7DF1E",
		"TypeScript": "3178C6",
		"Java":       "007396",
		"C++":        "00599C",
		"C#":         "239120",
		"PHP":        "777BB4",
		"Ruby":       "CC342D",
		"Go":         "00ADD8",
		"Rust":       "DEA584",
		"Swift":      "FA7343",
		"Kotlin":     "0095D5",
		"Dart":       "0175C2",
		"HTML":       "E34F26",
		"CSS":        "1572B6",
		"Shell":      "4EAA25",
	}
	if color, ok := colors[language]; ok {
		return color
	}
	return "555555"
}

func hasLanguage(languages []string, name string) bool {
	for _, lang := range languages {
		if strings.EqualFold(lang, name) {
			return true
		}
	}
	return false
}

func isStopword(word string, stopwords map[string]struct{}) bool {
	_, ok := stopwords[word]
	return ok
}

func anyContains(topics []string, substr string) bool {
	for _, t := range topics {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

// topicAccumulator keeps insertion order while deduplicating, so capping can
// retain current topics first and append new ones in discovery order.
type topicAccumulator struct {
	current []string
	order   []string
	seen    map[string]struct{}
}

func newTopicAccumulator(current []string) *topicAccumulator {
	acc := &topicAccumulator{seen: make(map[string]struct{})}
	for _, t := range current {
		key := strings.ToLower(t)
		if _, ok := acc.seen[key]; ok {
			continue
		}
		acc.seen[key] = struct{}{}
		acc.current = append(acc.current, t)
	}
	return acc
}

func (a *topicAccumulator) add(topic string) {
	key := strings.ToLower(topic)
	if _, ok := a.seen[key]; ok {
		return
	}
	a.seen[key] = struct{}{}
	a.order = append(a.order, topic)
}

// capped returns current topics first, then new topics in discovery order,
// up to max entries.
func (a *topicAccumulator) capped(max int) []string {
	result := make([]string, 0, max)
	result = append(result, a.current...)
	for _, t := range a.order {
		if len(result) >= max {
			break
		}
		result = append(result, t)
	}
	if len(result) > max {
		result = result[:max]
	}
	return result
}
