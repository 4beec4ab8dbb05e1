// Package analyzer scores repository metadata. The rule tier works from text
// heuristics alone; the ai tier additionally asks a content-generation
// provider to read the README. Scores are diagnostic only; they never gate
// generation.
package analyzer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dkalykov/repo-seo/internal/models"
	"github.com/dkalykov/repo-seo/internal/service/llm"
)

// Strategy names the analysis tier an Analyzer runs with.
type Strategy string

const (
	// StrategyRule relies on text heuristics only.
	StrategyRule Strategy = "rule"

	// StrategyAI enriches the rule analysis with provider README analysis.
	StrategyAI Strategy = "ai"
)

const (
	minReadmeChars       = 500
	minDescriptionChars  = 20
	maxDescriptionChars  = 250
	minTopicCount        = 5
	maxSuggestedTopics   = 5
	maxExtractedTopics   = 10
	readmeIssuePenalty   = 10
	sectionIssuePenalty  = 25
	minTopicWordLength   = 4
)

// commonSections are the headings a well-formed README is expected to carry.
var commonSections = []string{"installation", "usage", "features", "contributing", "license"}

var topicStopwords = map[string]bool{
	"this": true, "that": true, "with": true, "from": true, "then": true, "than": true,
}

var (
	headingRe   = regexp.MustCompile(`(?m)^#+\s+(.+)$`)
	wordRe      = regexp.MustCompile(`[a-zA-Z0-9]+`)
	blankLineRe = regexp.MustCompile(`\n\s*\n`)
)

// Analyzer produces a RepositoryAnalysis from a repository snapshot.
type Analyzer struct {
	strategy Strategy
	provider llm.Provider
	logger   llm.Logger
}

// New creates a rule-based repository analyzer
func New() *Analyzer {
	return &Analyzer{
		strategy: StrategyRule,
		logger:   &llm.DefaultLogger{},
	}
}

// NewWithProvider creates an analyzer that uses the provider to enrich README
// analysis when the provider is reachable. The tier is resolved once here:
// a nil or unreachable provider yields a rule analyzer.
func NewWithProvider(ctx context.Context, provider llm.Provider, logger llm.Logger) *Analyzer {
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}
	a := &Analyzer{
		strategy: StrategyRule,
		logger:   logger,
	}
	if provider != nil && provider.ValidateAPIKey(ctx) {
		a.strategy = StrategyAI
		a.provider = provider
	}
	return a
}

// Strategy reports the analysis tier resolved at construction.
func (a *Analyzer) Strategy() Strategy {
	return a.strategy
}

// AnalyzeRepository scores the README, description and topics of a snapshot
// and combines them into an overall score (the mean of the three sections).
// Under the ai tier the provider's README analysis contributes suggested
// topics and README suggestions; provider failure degrades to the rule
// result.
func (a *Analyzer) AnalyzeRepository(ctx context.Context, snapshot models.RepositorySnapshot) *models.RepositoryAnalysis {
	analysis := &models.RepositoryAnalysis{
		Readme:      a.AnalyzeReadme(snapshot.Readme),
		Description: a.analyzeDescription(snapshot.Description),
		Topics:      a.analyzeTopics(snapshot.Topics),
	}

	extracted := a.ExtractTopics(snapshot.Readme)

	if a.strategy == StrategyAI && strings.TrimSpace(snapshot.Readme) != "" {
		enriched, err := a.provider.AnalyzeReadme(ctx, snapshot.Readme)
		if err != nil {
			a.logger.Warn("Provider README analysis failed, keeping rule analysis",
				"repo", snapshot.Name, "error", err)
		} else {
			if len(enriched.Topics) > 0 {
				extracted = lowercaseAll(enriched.Topics)
			}
			analysis.Readme.Suggestions = append(analysis.Readme.Suggestions, enriched.Suggestions...)
		}
	}

	have := make(map[string]bool, len(snapshot.Topics))
	for _, t := range snapshot.Topics {
		have[strings.ToLower(t)] = true
	}
	for _, t := range extracted {
		if !have[t] {
			analysis.SuggestedTopics = append(analysis.SuggestedTopics, t)
		}
		if len(analysis.SuggestedTopics) == maxSuggestedTopics {
			break
		}
	}

	analysis.OverallScore = (analysis.Readme.Score + analysis.Description.Score + analysis.Topics.Score) / 3.0

	return analysis
}

// AnalyzeReadme checks README length, heading structure and section coverage.
// Each issue costs 10 points from a base of 100; an absent README scores 0.
func (a *Analyzer) AnalyzeReadme(readme string) models.SectionAnalysis {
	if strings.TrimSpace(readme) == "" {
		return models.SectionAnalysis{
			Issues:      []string{"README file is missing or empty"},
			Suggestions: []string{"Create a README file with essential project information"},
			Score:       0,
		}
	}

	var section models.SectionAnalysis

	if len(readme) < minReadmeChars {
		section.Issues = append(section.Issues, fmt.Sprintf("README is too short (< %d chars)", minReadmeChars))
		section.Suggestions = append(section.Suggestions, "Expand your README with more detailed information")
	}

	headings := headingRe.FindAllStringSubmatch(readme, -1)
	if len(headings) == 0 {
		section.Issues = append(section.Issues, "No headings found in README")
		section.Suggestions = append(section.Suggestions, "Add headings (## Heading) to structure your README")
	}

	found := make([]string, 0, len(headings))
	for _, h := range headings {
		found = append(found, strings.ToLower(h[1]))
	}
	var missing []string
	for _, want := range commonSections {
		present := false
		for _, heading := range found {
			if strings.Contains(heading, want) {
				present = true
				break
			}
		}
		if !present {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		section.Issues = append(section.Issues, "Missing common sections: "+strings.Join(missing, ", "))
		section.Suggestions = append(section.Suggestions, "Add sections for: "+strings.Join(missing, ", "))
	}

	section.Score = clampScore(100 - float64(len(section.Issues))*readmeIssuePenalty)

	return section
}

// ExtractTopics pulls candidate topics from README headings and the first
// paragraph, ranked by frequency. Returns at most ten topics.
func (a *Analyzer) ExtractTopics(readme string) []string {
	if strings.TrimSpace(readme) == "" {
		return nil
	}

	var candidates []string
	for _, h := range headingRe.FindAllStringSubmatch(readme, -1) {
		candidates = append(candidates, topicWords(h[1])...)
	}
	if paragraphs := blankLineRe.Split(readme, -1); len(paragraphs) > 0 {
		candidates = append(candidates, topicWords(paragraphs[0])...)
	}

	counts := make(map[string]int, len(candidates))
	firstSeen := make(map[string]int, len(candidates))
	for i, word := range candidates {
		if _, ok := firstSeen[word]; !ok {
			firstSeen[word] = i
		}
		counts[word]++
	}

	unique := make([]string, 0, len(counts))
	for word := range counts {
		unique = append(unique, word)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return firstSeen[unique[i]] < firstSeen[unique[j]]
	})

	if len(unique) > maxExtractedTopics {
		unique = unique[:maxExtractedTopics]
	}
	return unique
}

func (a *Analyzer) analyzeDescription(description string) models.SectionAnalysis {
	var section models.SectionAnalysis

	switch {
	case description == "":
		section.Issues = append(section.Issues, "Repository description is missing")
		section.Suggestions = append(section.Suggestions, "Add a concise description explaining the purpose of your project")
	case len(description) < minDescriptionChars:
		section.Issues = append(section.Issues, "Repository description is too short")
		section.Suggestions = append(section.Suggestions, "Expand your description to better explain your project")
	case len(description) > maxDescriptionChars:
		section.Issues = append(section.Issues, "Repository description is too long")
		section.Suggestions = append(section.Suggestions, fmt.Sprintf("Shorten your description to be more concise (< %d chars)", maxDescriptionChars))
	}

	section.Score = clampScore(100 - float64(len(section.Issues))*sectionIssuePenalty)

	return section
}

func (a *Analyzer) analyzeTopics(topics []string) models.SectionAnalysis {
	var section models.SectionAnalysis

	switch {
	case len(topics) == 0:
		section.Issues = append(section.Issues, "No topics defined for the repository")
		section.Suggestions = append(section.Suggestions, "Add relevant topics to improve discoverability")
	case len(topics) < minTopicCount:
		section.Issues = append(section.Issues, fmt.Sprintf("Too few topics defined (< %d)", minTopicCount))
		section.Suggestions = append(section.Suggestions, "Add more relevant topics to improve discoverability")
	}

	section.Score = clampScore(100 - float64(len(section.Issues))*sectionIssuePenalty)

	return section
}

func topicWords(text string) []string {
	var words []string
	for _, word := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(word) >= minTopicWordLength && !topicStopwords[word] {
			words = append(words, word)
		}
	}
	return words
}

func lowercaseAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
