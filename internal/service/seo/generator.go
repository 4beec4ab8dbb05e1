// Package seo turns a repository snapshot into an optimization change-set.
package seo

import (
	"context"

	"github.com/dkalykov/repo-seo/internal/models"
	"github.com/dkalykov/repo-seo/internal/service/analyzer"
	"github.com/dkalykov/repo-seo/internal/service/llm"
	"github.com/dkalykov/repo-seo/internal/service/llm/providers"
	"github.com/dkalykov/repo-seo/internal/service/llm/validation"
)

const (
	// Descriptions shorter than this are considered unusable and regenerated.
	minUsableDescriptionLength = 30

	// READMEs shorter than this are considered insubstantial and regenerated.
	minUsableReadmeLength = 100

	maxTopics = 20
)

// Generator produces an OptimizationResult for a snapshot. Every remote
// provider failure degrades to the local rule-based provider for that
// operation only; Generate itself never fails.
type Generator struct {
	provider llm.Provider
	fallback *providers.LocalProvider
	analyzer *analyzer.Analyzer
	logger   llm.Logger
}

// NewGenerator creates a generator around the given provider. The analyzer
// tier is resolved here: providers that pass the reachability check also
// enrich repository analysis.
func NewGenerator(provider llm.Provider, logger llm.Logger) *Generator {
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}
	return &Generator{
		provider: provider,
		fallback: providers.NewLocalProvider(),
		analyzer: analyzer.NewWithProvider(context.Background(), provider, logger),
		logger:   logger,
	}
}

// Generate runs a full optimization pass: analyze, decide per field whether
// to regenerate, and package the change-set. Current values are preserved
// when they already meet the usability thresholds.
func (g *Generator) Generate(ctx context.Context, snapshot models.RepositorySnapshot) *models.OptimizationResult {
	result := &models.OptimizationResult{
		RepoName:           snapshot.Name,
		Owner:              snapshot.Owner,
		CurrentDescription: snapshot.Description,
		NewDescription:     snapshot.Description,
		CurrentTopics:      snapshot.Topics,
		NewTopics:          snapshot.Topics,
		CurrentReadme:      snapshot.Readme,
		NewReadme:          snapshot.Readme,
		Analysis:           g.analyzer.AnalyzeRepository(ctx, snapshot),
	}

	result.NewDescription = g.decideDescription(ctx, snapshot)
	result.NewTopics = g.decideTopics(ctx, snapshot)
	result.NewReadme = g.decideReadme(ctx, snapshot, result.NewDescription, result.NewTopics)

	result.Changes = models.Changes{
		Description: result.NewDescription != result.CurrentDescription,
		Topics:      !models.TopicsEqual(result.NewTopics, result.CurrentTopics),
		Readme:      result.NewReadme != result.CurrentReadme,
	}

	return result
}

func (g *Generator) decideDescription(ctx context.Context, snapshot models.RepositorySnapshot) string {
	if len(snapshot.Description) >= minUsableDescriptionLength {
		return snapshot.Description
	}

	desc, err := g.provider.GenerateDescription(ctx, snapshot.Name, snapshot.Languages, snapshot.Topics, snapshot.Readme)
	if err != nil {
		g.logger.Warn("Description generation failed, using local fallback",
			"repo", snapshot.Name, "error", err)
		desc, err = g.fallback.GenerateDescription(ctx, snapshot.Name, snapshot.Languages, snapshot.Topics, snapshot.Readme)
		if err != nil {
			g.logger.Error("Local description fallback failed", "repo", snapshot.Name, "error", err)
			return snapshot.Description
		}
	}
	if desc == "" {
		return snapshot.Description
	}
	return desc
}

// decideTopics always regenerates: topics are cheap to produce and existing
// ones are preserved first by the sanitizer, so regeneration only adds.
func (g *Generator) decideTopics(ctx context.Context, snapshot models.RepositorySnapshot) []string {
	candidates, err := g.provider.GenerateTopics(ctx, snapshot.Name, snapshot.Languages, snapshot.Topics, snapshot.Readme)
	if err != nil {
		g.logger.Warn("Topic generation failed, using local fallback",
			"repo", snapshot.Name, "error", err)
		candidates, err = g.fallback.GenerateTopics(ctx, snapshot.Name, snapshot.Languages, snapshot.Topics, snapshot.Readme)
		if err != nil {
			g.logger.Error("Local topic fallback failed", "repo", snapshot.Name, "error", err)
			return snapshot.Topics
		}
	}

	sanitized := validation.SanitizeTopics(snapshot.Topics, candidates, maxTopics)
	if len(sanitized) == 0 {
		return snapshot.Topics
	}
	return sanitized
}

func (g *Generator) decideReadme(ctx context.Context, snapshot models.RepositorySnapshot, description string, topics []string) string {
	if len(snapshot.Readme) >= minUsableReadmeLength {
		return snapshot.Readme
	}

	readme, err := g.provider.GenerateReadme(ctx, snapshot.Name, snapshot.Languages, topics, description, snapshot.Readme)
	if err != nil {
		g.logger.Warn("README generation failed, using local fallback",
			"repo", snapshot.Name, "error", err)
		readme, err = g.fallback.GenerateReadme(ctx, snapshot.Name, snapshot.Languages, topics, description, snapshot.Readme)
		if err != nil {
			g.logger.Error("Local README fallback failed", "repo", snapshot.Name, "error", err)
			return snapshot.Readme
		}
	}
	if readme == "" {
		return snapshot.Readme
	}
	return readme
}
