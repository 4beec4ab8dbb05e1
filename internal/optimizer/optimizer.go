// Package optimizer drives optimization passes over one repository or a
// user's whole account.
package optimizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/dkalykov/repo-seo/internal/github"
	"github.com/dkalykov/repo-seo/internal/models"
	"github.com/dkalykov/repo-seo/internal/service/llm"
	"github.com/dkalykov/repo-seo/internal/service/seo"
)

// Options control a single optimization run.
type Options struct {
	Apply       bool          // write changes back instead of dry-run
	NoSync      bool          // skip fork syncing
	SkipPrivate bool          // leave private repositories out of batch runs
	MaxRepos    int           // cap on repositories per batch run
	OutputDir   string        // where the batch results file is written
	Delay       time.Duration // pause between batch iterations
}

// Summary aggregates the outcome of a batch run.
type Summary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Errored   int `json:"errored"`
	Changed   int `json:"changed"`
}

// Optimizer wires the GitHub collaborator and the SEO generator together.
type Optimizer struct {
	client    github.Client
	generator *seo.Generator
	logger    llm.Logger
	opts      Options
	limiter   *rate.Limiter
	now       func() time.Time
}

// New creates an optimizer. A zero Delay disables pacing.
func New(client github.Client, generator *seo.Generator, opts Options, logger llm.Logger) *Optimizer {
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)
	if opts.Delay > 0 {
		// The bucket starts full; spend the free token so the first paced
		// wait actually waits.
		limiter.Allow()
	}

	return &Optimizer{
		client:    client,
		generator: generator,
		logger:    logger,
		opts:      opts,
		limiter:   limiter,
		now:       time.Now,
	}
}

// OptimizeRepository runs a full pass over one repository: optional fork
// sync, snapshot fetch, generation, and conditional write-back.
func (o *Optimizer) OptimizeRepository(ctx context.Context, owner, repoName string) (*models.OptimizationResult, error) {
	repo, err := o.client.GetRepository(ctx, owner, repoName)
	if err != nil {
		return nil, err
	}

	if repo.IsFork && !o.opts.NoSync {
		if ok, err := o.client.SyncFork(ctx, owner, repoName); err != nil || !ok {
			o.logger.Warn("Continuing with unsynced fork", "repo", owner+"/"+repoName)
		} else {
			o.logger.Info("Synced fork with upstream", "repo", owner+"/"+repoName)
		}
	}

	snapshot, err := o.buildSnapshot(ctx, repo)
	if err != nil {
		return nil, err
	}

	result := o.generator.Generate(ctx, snapshot)

	if o.opts.Apply && result.Changes.Any() {
		if err := o.applyChanges(ctx, result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// OptimizeUser runs a batch pass over a user's repositories, preserving the
// listing order in the returned entries. Per-repository failures become
// entries, never run failures; the only run-level errors are an empty or
// unfetchable repository list.
func (o *Optimizer) OptimizeUser(ctx context.Context, username string) ([]models.BatchEntry, Summary, error) {
	repos, err := o.client.GetUserRepositories(ctx, username)
	if err != nil {
		return nil, Summary{}, fmt.Errorf("fetching repositories for %s: %w", username, err)
	}
	if len(repos) == 0 {
		return nil, Summary{}, fmt.Errorf("no repositories found for %s", username)
	}

	if o.opts.SkipPrivate {
		public := repos[:0]
		for _, r := range repos {
			if !r.IsPrivate {
				public = append(public, r)
			}
		}
		repos = public
	}
	if o.opts.MaxRepos > 0 && len(repos) > o.opts.MaxRepos {
		o.logger.Info("Capping repository list", "total", len(repos), "max", o.opts.MaxRepos)
		repos = repos[:o.opts.MaxRepos]
	}

	entries := make([]models.BatchEntry, 0, len(repos))
	var summary Summary

	for i, repo := range repos {
		if i > 0 {
			if err := o.limiter.Wait(ctx); err != nil {
				return entries, summary, err
			}
		}

		owner := repo.Owner
		if owner == "" {
			owner = username
		}

		o.logger.Info("Processing repository", "repo", owner+"/"+repo.Name,
			"progress", fmt.Sprintf("%d/%d", i+1, len(repos)))

		entry := models.BatchEntry{
			Owner:     owner,
			RepoName:  repo.Name,
			Timestamp: o.now().UTC().Format(time.RFC3339),
		}

		result, err := o.OptimizeRepository(ctx, owner, repo.Name)
		summary.Processed++
		if err != nil {
			entry.Error = err.Error()
			entry.Result = result
			summary.Errored++
			o.logger.Error("Repository pass failed", "repo", owner+"/"+repo.Name, "error", err)
		} else {
			entry.Success = true
			entry.Result = result
			summary.Succeeded++
			if result.Changes.Any() {
				summary.Changed++
			}
		}

		entries = append(entries, entry)
	}

	if path, err := o.persistResults(entries); err != nil {
		o.logger.Error("Failed to write results file", "error", err)
	} else {
		o.logger.Info("Results written", "path", path)
	}

	return entries, summary, nil
}

// buildSnapshot assembles the generator's input from collaborator calls.
// Languages are ordered by byte count, largest first.
func (o *Optimizer) buildSnapshot(ctx context.Context, repo *github.Repository) (models.RepositorySnapshot, error) {
	snapshot := models.RepositorySnapshot{
		Name:        repo.Name,
		Owner:       repo.Owner,
		Description: repo.Description,
		IsFork:      repo.IsFork,
	}

	languages, err := o.client.GetRepositoryLanguages(ctx, repo.Owner, repo.Name)
	if err != nil {
		return snapshot, fmt.Errorf("building snapshot for %s/%s: %w", repo.Owner, repo.Name, err)
	}
	snapshot.Languages = sortLanguages(languages)

	topics, err := o.client.GetRepositoryTopics(ctx, repo.Owner, repo.Name)
	if err != nil {
		return snapshot, fmt.Errorf("building snapshot for %s/%s: %w", repo.Owner, repo.Name, err)
	}
	snapshot.Topics = topics

	readme, err := o.client.GetRepositoryReadme(ctx, repo.Owner, repo.Name)
	if err != nil {
		return snapshot, fmt.Errorf("building snapshot for %s/%s: %w", repo.Owner, repo.Name, err)
	}
	snapshot.Readme = readme

	return snapshot, nil
}

func (o *Optimizer) applyChanges(ctx context.Context, result *models.OptimizationResult) error {
	var description *string
	if result.Changes.Description {
		description = &result.NewDescription
	}
	var topics []string
	if result.Changes.Topics {
		topics = result.NewTopics
	}

	if description != nil || topics != nil {
		if err := o.client.UpdateRepository(ctx, result.Owner, result.RepoName, description, topics); err != nil {
			return fmt.Errorf("applying metadata for %s/%s: %w", result.Owner, result.RepoName, err)
		}
		if description != nil {
			o.logger.Info("Updated description", "repo", result.Owner+"/"+result.RepoName)
		}
		if topics != nil {
			o.logger.Info("Updated topics", "repo", result.Owner+"/"+result.RepoName, "count", len(topics))
		}
	}

	if result.Changes.Readme {
		if err := o.client.UpdateRepositoryReadme(ctx, result.Owner, result.RepoName, result.NewReadme, "Update README"); err != nil {
			return fmt.Errorf("applying README for %s/%s: %w", result.Owner, result.RepoName, err)
		}
		o.logger.Info("Updated README", "repo", result.Owner+"/"+result.RepoName)
	}

	return nil
}

// persistResults writes the batch output as indented JSON named by the run's
// start time, e.g. seo_results_20260827_153004.json.
func (o *Optimizer) persistResults(entries []models.BatchEntry) (string, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding results: %w", err)
	}

	name := fmt.Sprintf("seo_results_%s.json", o.now().Format("20060102_150405"))
	path := filepath.Join(o.opts.OutputDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing results file: %w", err)
	}
	return path, nil
}

func sortLanguages(byteCounts map[string]int) []string {
	names := make([]string, 0, len(byteCounts))
	for name := range byteCounts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if byteCounts[names[i]] != byteCounts[names[j]] {
			return byteCounts[names[i]] > byteCounts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
