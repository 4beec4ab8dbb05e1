package optimizer

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalykov/repo-seo/internal/github"
	"github.com/dkalykov/repo-seo/internal/models"
	"github.com/dkalykov/repo-seo/internal/service/llm/providers"
	"github.com/dkalykov/repo-seo/internal/service/seo"
)

// fakeClient serves canned repository data and records write-backs.
type fakeClient struct {
	repos     []github.Repository
	languages map[string]map[string]int
	topics    map[string][]string
	readmes   map[string]string
	failFetch map[string]bool
	synced    []string

	updatedMeta   []string
	updatedReadme []string
}

func (f *fakeClient) key(owner, repo string) string { return owner + "/" + repo }

func (f *fakeClient) GetUserRepositories(_ context.Context, username string) ([]github.Repository, error) {
	return f.repos, nil
}

func (f *fakeClient) GetRepository(_ context.Context, owner, repo string) (*github.Repository, error) {
	if f.failFetch[f.key(owner, repo)] {
		return nil, errors.New("boom")
	}
	for _, r := range f.repos {
		if r.Owner == owner && r.Name == repo {
			out := r
			return &out, nil
		}
	}
	return nil, github.ErrRepositoryNotFound
}

func (f *fakeClient) GetRepositoryLanguages(_ context.Context, owner, repo string) (map[string]int, error) {
	return f.languages[f.key(owner, repo)], nil
}

func (f *fakeClient) GetRepositoryTopics(_ context.Context, owner, repo string) ([]string, error) {
	return f.topics[f.key(owner, repo)], nil
}

func (f *fakeClient) GetRepositoryReadme(_ context.Context, owner, repo string) (string, error) {
	return f.readmes[f.key(owner, repo)], nil
}

func (f *fakeClient) UpdateRepository(_ context.Context, owner, repo string, description *string, topics []string) error {
	f.updatedMeta = append(f.updatedMeta, f.key(owner, repo))
	return nil
}

func (f *fakeClient) UpdateRepositoryReadme(_ context.Context, owner, repo, content, message string) error {
	f.updatedReadme = append(f.updatedReadme, f.key(owner, repo))
	return nil
}

func (f *fakeClient) IsFork(_ context.Context, owner, repo string) (bool, error) {
	r, err := f.GetRepository(context.Background(), owner, repo)
	if err != nil {
		return false, err
	}
	return r.IsFork, nil
}

func (f *fakeClient) SyncFork(_ context.Context, owner, repo string) (bool, error) {
	f.synced = append(f.synced, f.key(owner, repo))
	return true, nil
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		repos: []github.Repository{
			{Name: "alpha", Owner: "user"},
			{Name: "beta", Owner: "user"},
			{Name: "gamma", Owner: "user", IsPrivate: true},
		},
		languages: map[string]map[string]int{
			"user/alpha": {"Go": 1000},
			"user/beta":  {"Python": 500},
			"user/gamma": {"Rust": 100},
		},
		topics: map[string][]string{
			"user/alpha": {"cli"},
		},
		readmes:   map[string]string{},
		failFetch: map[string]bool{},
	}
}

func newTestOptimizer(client github.Client, opts Options) *Optimizer {
	generator := seo.NewGenerator(providers.NewLocalProvider(), nil)
	return New(client, generator, opts, nil)
}

func TestNewSpendsInitialPacingToken(t *testing.T) {
	t.Run("delay set means the first wait paces", func(t *testing.T) {
		opt := newTestOptimizer(newFakeClient(), Options{Delay: time.Hour})
		assert.False(t, opt.limiter.Allow(), "bucket must start empty when pacing is on")
	})

	t.Run("zero delay never paces", func(t *testing.T) {
		opt := newTestOptimizer(newFakeClient(), Options{})
		assert.True(t, opt.limiter.Allow())
		assert.True(t, opt.limiter.Allow())
	})
}

func TestOptimizeRepository(t *testing.T) {
	t.Run("dry run produces result without write-back", func(t *testing.T) {
		client := newFakeClient()
		opt := newTestOptimizer(client, Options{})

		result, err := opt.OptimizeRepository(context.Background(), "user", "alpha")
		require.NoError(t, err)

		assert.True(t, result.Changes.Any())
		assert.Empty(t, client.updatedMeta)
		assert.Empty(t, client.updatedReadme)
	})

	t.Run("apply writes changed fields", func(t *testing.T) {
		client := newFakeClient()
		opt := newTestOptimizer(client, Options{Apply: true, OutputDir: t.TempDir()})

		result, err := opt.OptimizeRepository(context.Background(), "user", "alpha")
		require.NoError(t, err)
		require.True(t, result.Changes.Any())

		assert.Contains(t, client.updatedMeta, "user/alpha")
		assert.Contains(t, client.updatedReadme, "user/alpha")
	})

	t.Run("forks are synced unless disabled", func(t *testing.T) {
		client := newFakeClient()
		client.repos[0].IsFork = true

		opt := newTestOptimizer(client, Options{})
		_, err := opt.OptimizeRepository(context.Background(), "user", "alpha")
		require.NoError(t, err)
		assert.Equal(t, []string{"user/alpha"}, client.synced)

		client.synced = nil
		opt = newTestOptimizer(client, Options{NoSync: true})
		_, err = opt.OptimizeRepository(context.Background(), "user", "alpha")
		require.NoError(t, err)
		assert.Empty(t, client.synced)
	})

	t.Run("unknown repository errors", func(t *testing.T) {
		opt := newTestOptimizer(newFakeClient(), Options{})

		_, err := opt.OptimizeRepository(context.Background(), "user", "missing")
		assert.ErrorIs(t, err, github.ErrRepositoryNotFound)
	})
}

func TestOptimizeUser(t *testing.T) {
	t.Run("entries preserve listing order including failures", func(t *testing.T) {
		client := newFakeClient()
		client.failFetch["user/beta"] = true

		opt := newTestOptimizer(client, Options{OutputDir: t.TempDir()})

		entries, summary, err := opt.OptimizeUser(context.Background(), "user")
		require.NoError(t, err)
		require.Len(t, entries, 3)

		assert.Equal(t, "alpha", entries[0].RepoName)
		assert.Equal(t, "beta", entries[1].RepoName)
		assert.Equal(t, "gamma", entries[2].RepoName)

		assert.True(t, entries[0].Success)
		assert.False(t, entries[1].Success)
		assert.Contains(t, entries[1].Error, "boom")
		assert.True(t, entries[2].Success)

		assert.Equal(t, 3, summary.Processed)
		assert.Equal(t, 2, summary.Succeeded)
		assert.Equal(t, 1, summary.Errored)
	})

	t.Run("skip private filters batch", func(t *testing.T) {
		opt := newTestOptimizer(newFakeClient(), Options{SkipPrivate: true, OutputDir: t.TempDir()})

		entries, _, err := opt.OptimizeUser(context.Background(), "user")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "alpha", entries[0].RepoName)
		assert.Equal(t, "beta", entries[1].RepoName)
	})

	t.Run("max repos caps the run", func(t *testing.T) {
		opt := newTestOptimizer(newFakeClient(), Options{MaxRepos: 1, OutputDir: t.TempDir()})

		entries, summary, err := opt.OptimizeUser(context.Background(), "user")
		require.NoError(t, err)
		assert.Len(t, entries, 1)
		assert.Equal(t, 1, summary.Processed)
	})

	t.Run("empty repository list is a setup failure", func(t *testing.T) {
		client := newFakeClient()
		client.repos = nil

		opt := newTestOptimizer(client, Options{OutputDir: t.TempDir()})

		_, _, err := opt.OptimizeUser(context.Background(), "user")
		assert.Error(t, err)
	})

	t.Run("results file written as indented json", func(t *testing.T) {
		dir := t.TempDir()
		opt := newTestOptimizer(newFakeClient(), Options{OutputDir: dir})

		_, _, err := opt.OptimizeUser(context.Background(), "user")
		require.NoError(t, err)

		matches, err := filepath.Glob(filepath.Join(dir, "seo_results_*.json"))
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.True(t, strings.HasPrefix(filepath.Base(matches[0]), "seo_results_"))

		data, err := os.ReadFile(matches[0])
		require.NoError(t, err)

		var entries []models.BatchEntry
		require.NoError(t, json.Unmarshal(data, &entries))
		assert.Len(t, entries, 3)
	})
}

func TestSortLanguages(t *testing.T) {
	languages := sortLanguages(map[string]int{
		"Python": 500,
		"Go":     2000,
		"Shell":  500,
	})

	// Largest first, ties alphabetical.
	assert.Equal(t, []string{"Go", "Python", "Shell"}, languages)
}
