package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalykov/repo-seo/internal/models"
	"github.com/dkalykov/repo-seo/internal/service/llm"
)

// fullReadme carries every common section and enough length to score 100.
var fullReadme = strings.Repeat("This project does a thing and does it well. ", 12) + `
# Project

## Installation

install it

## Usage

use it

## Features

- fast

## Contributing

patches welcome

## License

MIT
`

// stubAnalysisProvider implements llm.Provider for tier-selection tests.
type stubAnalysisProvider struct {
	reachable  bool
	analysis   *llm.ReadmeAnalysis
	analyzeErr error
	calls      int
}

func (s *stubAnalysisProvider) GenerateDescription(context.Context, string, []string, []string, string) (string, error) {
	return "", nil
}

func (s *stubAnalysisProvider) GenerateTopics(context.Context, string, []string, []string, string) ([]string, error) {
	return nil, nil
}

func (s *stubAnalysisProvider) AnalyzeReadme(context.Context, string) (*llm.ReadmeAnalysis, error) {
	s.calls++
	if s.analyzeErr != nil {
		return nil, s.analyzeErr
	}
	if s.analysis != nil {
		return s.analysis, nil
	}
	return llm.EmptyReadmeAnalysis(), nil
}

func (s *stubAnalysisProvider) GenerateReadme(context.Context, string, []string, []string, string, string) (string, error) {
	return "", nil
}

func (s *stubAnalysisProvider) ValidateAPIKey(context.Context) bool { return s.reachable }

func (s *stubAnalysisProvider) ModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: "stub", Provider: "stub"}
}

func (s *stubAnalysisProvider) Close() error { return nil }

func TestAnalyzeReadme(t *testing.T) {
	a := New()

	t.Run("missing readme scores zero", func(t *testing.T) {
		section := a.AnalyzeReadme("")

		assert.Equal(t, float64(0), section.Score)
		assert.Contains(t, section.Issues, "README file is missing or empty")
	})

	t.Run("whitespace-only counts as missing", func(t *testing.T) {
		section := a.AnalyzeReadme("   \n\t  ")
		assert.Equal(t, float64(0), section.Score)
	})

	t.Run("each issue costs ten points", func(t *testing.T) {
		// Short, no headings, all five common sections missing: 3 issues.
		section := a.AnalyzeReadme("just a line of text")

		assert.Len(t, section.Issues, 3)
		assert.Equal(t, float64(70), section.Score)
	})

	t.Run("complete readme scores full marks", func(t *testing.T) {
		section := a.AnalyzeReadme(fullReadme)

		assert.Empty(t, section.Issues)
		assert.Equal(t, float64(100), section.Score)
	})

	t.Run("missing sections are named", func(t *testing.T) {
		section := a.AnalyzeReadme("# Title\n\n## Installation\n\nstuff")

		found := false
		for _, issue := range section.Issues {
			if strings.Contains(issue, "usage") && strings.Contains(issue, "license") {
				found = true
			}
		}
		assert.True(t, found, "expected missing sections issue, got %v", section.Issues)
	})
}

func TestStrategySelection(t *testing.T) {
	ctx := context.Background()

	t.Run("default constructor is rule tier", func(t *testing.T) {
		assert.Equal(t, StrategyRule, New().Strategy())
	})

	t.Run("nil provider is rule tier", func(t *testing.T) {
		a := NewWithProvider(ctx, nil, nil)
		assert.Equal(t, StrategyRule, a.Strategy())
	})

	t.Run("unreachable provider is rule tier", func(t *testing.T) {
		a := NewWithProvider(ctx, &stubAnalysisProvider{reachable: false}, nil)
		assert.Equal(t, StrategyRule, a.Strategy())
	})

	t.Run("reachable provider is ai tier", func(t *testing.T) {
		a := NewWithProvider(ctx, &stubAnalysisProvider{reachable: true}, nil)
		assert.Equal(t, StrategyAI, a.Strategy())
	})
}

func TestAnalyzeRepositoryAITier(t *testing.T) {
	ctx := context.Background()
	readme := "# Widget Factory\n\nwidget widget factory pipeline"

	t.Run("provider topics and suggestions are merged", func(t *testing.T) {
		stub := &stubAnalysisProvider{
			reachable: true,
			analysis: &llm.ReadmeAnalysis{
				Topics:      []string{"Observability", "tracing", "widget"},
				Suggestions: []string{"Add a Usage section with examples."},
			},
		}
		a := NewWithProvider(ctx, stub, nil)

		analysis := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
			Name:   "widget-factory",
			Topics: []string{"widget"},
			Readme: readme,
		})

		assert.Equal(t, []string{"observability", "tracing"}, analysis.SuggestedTopics)
		assert.Contains(t, analysis.Readme.Suggestions, "Add a Usage section with examples.")
	})

	t.Run("provider error degrades to rule extraction", func(t *testing.T) {
		stub := &stubAnalysisProvider{
			reachable:  true,
			analyzeErr: errors.New("upstream unavailable"),
		}
		a := NewWithProvider(ctx, stub, nil)

		analysis := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
			Name:   "widget-factory",
			Readme: readme,
		})

		assert.Contains(t, analysis.SuggestedTopics, "widget")
		assert.Contains(t, analysis.SuggestedTopics, "factory")
	})

	t.Run("empty provider topics keep rule extraction", func(t *testing.T) {
		stub := &stubAnalysisProvider{
			reachable: true,
			analysis:  &llm.ReadmeAnalysis{Suggestions: []string{"Expand the README."}},
		}
		a := NewWithProvider(ctx, stub, nil)

		analysis := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
			Name:   "widget-factory",
			Readme: readme,
		})

		assert.Contains(t, analysis.SuggestedTopics, "widget")
		assert.Contains(t, analysis.Readme.Suggestions, "Expand the README.")
	})

	t.Run("empty readme skips the provider", func(t *testing.T) {
		stub := &stubAnalysisProvider{reachable: true}
		a := NewWithProvider(ctx, stub, nil)

		a.AnalyzeRepository(ctx, models.RepositorySnapshot{Name: "bare"})
		assert.Zero(t, stub.calls)
	})
}

func TestAnalyzeRepository(t *testing.T) {
	ctx := context.Background()
	a := New()

	t.Run("description scoring", func(t *testing.T) {
		tests := []struct {
			name        string
			description string
			score       float64
		}{
			{"missing", "", 75},
			{"too short", "tiny", 75},
			{"too long", strings.Repeat("x", 300), 75},
			{"healthy", "A reasonable description of suitable length.", 100},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				analysis := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
					Description: tt.description,
				})
				assert.Equal(t, tt.score, analysis.Description.Score)
			})
		}
	})

	t.Run("topics scoring", func(t *testing.T) {
		none := a.AnalyzeRepository(ctx, models.RepositorySnapshot{})
		assert.Equal(t, float64(75), none.Topics.Score)

		few := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
			Topics: []string{"one", "two"},
		})
		assert.Equal(t, float64(75), few.Topics.Score)

		enough := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
			Topics: []string{"one", "two", "three", "four", "five"},
		})
		assert.Equal(t, float64(100), enough.Topics.Score)
	})

	t.Run("overall score is the mean of sections", func(t *testing.T) {
		analysis := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
			Description: "A reasonable description of suitable length.",
			Topics:      []string{"one", "two", "three", "four", "five"},
			Readme:      fullReadme,
		})

		assert.Equal(t, float64(100), analysis.OverallScore)
	})

	t.Run("suggested topics exclude current ones", func(t *testing.T) {
		readme := "# Widget Factory\n\n## Widget Factory Overview\n\nwidget widget factory factory pipeline pipeline"

		analysis := a.AnalyzeRepository(ctx, models.RepositorySnapshot{
			Topics: []string{"widget"},
			Readme: readme,
		})

		assert.NotContains(t, analysis.SuggestedTopics, "widget")
		assert.Contains(t, analysis.SuggestedTopics, "factory")
		assert.LessOrEqual(t, len(analysis.SuggestedTopics), 5)
	})
}

func TestExtractTopics(t *testing.T) {
	a := New()

	t.Run("empty readme", func(t *testing.T) {
		assert.Empty(t, a.ExtractTopics(""))
	})

	t.Run("frequency ordering with stable ties", func(t *testing.T) {
		// Only headings and the first paragraph are scanned.
		readme := "intro gamma alpha\n\n# alpha section\n\nbody text"

		topics := a.ExtractTopics(readme)
		require.NotEmpty(t, topics)

		// alpha appears twice, everything else once in discovery order.
		assert.Equal(t, []string{"alpha", "section", "intro", "gamma"}, topics)
	})

	t.Run("short words and stopwords excluded", func(t *testing.T) {
		topics := a.ExtractTopics("# the api and this framework\n\ncli with framework")

		assert.NotContains(t, topics, "this")
		assert.NotContains(t, topics, "with")
		assert.NotContains(t, topics, "the")
		assert.NotContains(t, topics, "api") // three letters, under the length floor
		assert.Contains(t, topics, "framework")
	})
}
