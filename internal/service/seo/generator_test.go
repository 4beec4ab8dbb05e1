package seo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalykov/repo-seo/internal/models"
	"github.com/dkalykov/repo-seo/internal/service/analyzer"
	"github.com/dkalykov/repo-seo/internal/service/llm"
	"github.com/dkalykov/repo-seo/internal/service/llm/providers"
)

// stubProvider returns canned values, or errors on everything when failing
// is set.
type stubProvider struct {
	failing     bool
	description string
	topics      []string
	readme      string
}

var errStub = errors.New("backend unreachable")

func (s *stubProvider) GenerateDescription(context.Context, string, []string, []string, string) (string, error) {
	if s.failing {
		return "", errStub
	}
	return s.description, nil
}

func (s *stubProvider) GenerateTopics(context.Context, string, []string, []string, string) ([]string, error) {
	if s.failing {
		return nil, errStub
	}
	return s.topics, nil
}

func (s *stubProvider) AnalyzeReadme(context.Context, string) (*llm.ReadmeAnalysis, error) {
	if s.failing {
		return nil, errStub
	}
	return llm.EmptyReadmeAnalysis(), nil
}

func (s *stubProvider) GenerateReadme(_ context.Context, _ string, _, _ []string, _, existing string) (string, error) {
	if s.failing {
		return "", errStub
	}
	if len(existing) >= llm.MinReadmeLength {
		return existing, nil
	}
	return s.readme, nil
}

func (s *stubProvider) ValidateAPIKey(context.Context) bool { return !s.failing }
func (s *stubProvider) ModelInfo() llm.ModelInfo            { return llm.ModelInfo{Provider: "stub"} }
func (s *stubProvider) Close() error                        { return nil }

func snapshotFixture() models.RepositorySnapshot {
	return models.RepositorySnapshot{
		Name:        "my-cool-tool",
		Owner:       "someone",
		Description: "",
		Languages:   []string{"Python"},
		Topics:      []string{"cli"},
		Readme:      "",
	}
}

func TestGenerateRegeneratesThinFields(t *testing.T) {
	provider := &stubProvider{
		description: "A generated description of reasonable length.",
		topics:      []string{"generated-topic", "another"},
		readme:      "# Generated\n\nGenerated readme content.",
	}
	g := NewGenerator(provider, nil)

	result := g.Generate(context.Background(), snapshotFixture())

	assert.Equal(t, "A generated description of reasonable length.", result.NewDescription)
	assert.True(t, result.Changes.Description)

	// Current topics come first, then sanitized candidates.
	assert.Equal(t, []string{"cli", "generated-topic", "another"}, result.NewTopics)
	assert.True(t, result.Changes.Topics)

	assert.Equal(t, "# Generated\n\nGenerated readme content.", result.NewReadme)
	assert.True(t, result.Changes.Readme)
}

func TestGeneratePreservesHealthyFields(t *testing.T) {
	provider := &stubProvider{
		description: "should not be used",
		topics:      []string{"cli"},
		readme:      "should not be used",
	}
	g := NewGenerator(provider, nil)

	snapshot := snapshotFixture()
	snapshot.Description = "An existing description that is long enough to keep."
	snapshot.Readme = strings.Repeat("Existing readme content. ", 10)

	result := g.Generate(context.Background(), snapshot)

	assert.Equal(t, snapshot.Description, result.NewDescription)
	assert.False(t, result.Changes.Description)
	assert.Equal(t, snapshot.Readme, result.NewReadme)
	assert.False(t, result.Changes.Readme)
}

func TestGenerateTopicOrderIsNotAChange(t *testing.T) {
	provider := &stubProvider{
		description: "A generated description of reasonable length.",
		topics:      []string{"b", "a"},
		readme:      "readme",
	}
	g := NewGenerator(provider, nil)

	snapshot := snapshotFixture()
	snapshot.Topics = []string{"a", "b"}

	result := g.Generate(context.Background(), snapshot)

	// Same set in a different order must not count as a topic change.
	assert.False(t, result.Changes.Topics)
}

func TestGenerateFallsBackToLocalOnFailure(t *testing.T) {
	failing := &stubProvider{failing: true}
	g := NewGenerator(failing, nil)

	snapshot := snapshotFixture()
	result := g.Generate(context.Background(), snapshot)
	require.NotNil(t, result)

	// Every operation must degrade to the local provider's output.
	local := providers.NewLocalProvider()
	wantDesc, err := local.GenerateDescription(context.Background(),
		snapshot.Name, snapshot.Languages, snapshot.Topics, snapshot.Readme)
	require.NoError(t, err)
	assert.Equal(t, wantDesc, result.NewDescription)

	assert.NotEmpty(t, result.NewTopics)
	assert.Contains(t, result.NewTopics, "cli")
	assert.Contains(t, result.NewReadme, "# My Cool Tool")
}

func TestGenerateSanitizesTopics(t *testing.T) {
	provider := &stubProvider{
		description: "A generated description of reasonable length.",
		topics:      []string{"Machine Learning", "CLI", "bad,joined,list"},
		readme:      "readme",
	}
	g := NewGenerator(provider, nil)

	snapshot := snapshotFixture()
	snapshot.Topics = nil

	result := g.Generate(context.Background(), snapshot)

	assert.Equal(t, []string{"machine-learning", "cli"}, result.NewTopics)
}

func TestGeneratorResolvesAnalyzerStrategy(t *testing.T) {
	reachable := NewGenerator(&stubProvider{}, nil)
	assert.Equal(t, analyzer.StrategyAI, reachable.analyzer.Strategy())

	unreachable := NewGenerator(&stubProvider{failing: true}, nil)
	assert.Equal(t, analyzer.StrategyRule, unreachable.analyzer.Strategy())
}

func TestGenerateAttachesAnalysis(t *testing.T) {
	g := NewGenerator(&stubProvider{description: "d", topics: []string{"t1"}, readme: "r"}, nil)

	result := g.Generate(context.Background(), snapshotFixture())

	require.NotNil(t, result.Analysis)
	assert.NotEmpty(t, result.Analysis.Readme.Issues, "empty README must be flagged")
}
