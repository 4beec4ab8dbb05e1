package github

import (
	"context"
	"fmt"
	"net/http"

	gogithub "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

// RESTClient talks to the GitHub REST API with a personal access token.
type RESTClient struct {
	api    *gogithub.Client
	logger llm.Logger
}

// NewRESTClient creates a REST-backed client. Construction fails when no
// token is supplied.
func NewRESTClient(ctx context.Context, token string, logger llm.Logger) (*RESTClient, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: set the GITHUB_TOKEN environment variable or pass --token", ErrMissingToken)
	}
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)

	return &RESTClient{
		api:    gogithub.NewClient(tc),
		logger: logger,
	}, nil
}

func toRepository(r *gogithub.Repository) Repository {
	return Repository{
		Name:          r.GetName(),
		Owner:         r.GetOwner().GetLogin(),
		Description:   r.GetDescription(),
		IsPrivate:     r.GetPrivate(),
		IsFork:        r.GetFork(),
		DefaultBranch: r.GetDefaultBranch(),
	}
}

// GetUserRepositories lists a user's repositories, following pagination.
func (c *RESTClient) GetUserRepositories(ctx context.Context, username string) ([]Repository, error) {
	opts := &gogithub.RepositoryListOptions{
		ListOptions: gogithub.ListOptions{PerPage: 100},
	}

	var repos []Repository
	for {
		page, resp, err := c.api.Repositories.List(ctx, username, opts)
		if err != nil {
			return nil, fmt.Errorf("listing repositories for %s: %w", username, err)
		}
		for _, r := range page {
			repos = append(repos, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// GetRepository fetches a single repository.
func (c *RESTClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	r, resp, err := c.api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s/%s", ErrRepositoryNotFound, owner, repo)
		}
		return nil, fmt.Errorf("fetching repository %s/%s: %w", owner, repo, err)
	}

	result := toRepository(r)
	return &result, nil
}

// GetRepositoryLanguages returns the byte counts per language.
func (c *RESTClient) GetRepositoryLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	languages, _, err := c.api.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching languages for %s/%s: %w", owner, repo, err)
	}
	return languages, nil
}

// GetRepositoryTopics returns the repository's topic list.
func (c *RESTClient) GetRepositoryTopics(ctx context.Context, owner, repo string) ([]string, error) {
	topics, _, err := c.api.Repositories.ListAllTopics(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("fetching topics for %s/%s: %w", owner, repo, err)
	}
	return topics, nil
}

// GetRepositoryReadme returns the decoded README content. A repository
// without a README yields an empty string, not an error.
func (c *RESTClient) GetRepositoryReadme(ctx context.Context, owner, repo string) (string, error) {
	readme, resp, err := c.api.Repositories.GetReadme(ctx, owner, repo, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("fetching README for %s/%s: %w", owner, repo, err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding README for %s/%s: %w", owner, repo, err)
	}
	return content, nil
}

// UpdateRepository patches the description and replaces the topic list.
func (c *RESTClient) UpdateRepository(ctx context.Context, owner, repo string, description *string, topics []string) error {
	if description != nil {
		_, _, err := c.api.Repositories.Edit(ctx, owner, repo, &gogithub.Repository{
			Description: description,
		})
		if err != nil {
			return fmt.Errorf("updating description for %s/%s: %w", owner, repo, err)
		}
	}

	if topics != nil {
		if _, _, err := c.api.Repositories.ReplaceAllTopics(ctx, owner, repo, topics); err != nil {
			return fmt.Errorf("updating topics for %s/%s: %w", owner, repo, err)
		}
	}

	return nil
}

// UpdateRepositoryReadme creates or updates README.md on the default branch.
func (c *RESTClient) UpdateRepositoryReadme(ctx context.Context, owner, repo, content, message string) error {
	if message == "" {
		message = "Update README"
	}

	opts := &gogithub.RepositoryContentFileOptions{
		Message: gogithub.String(message),
		Content: []byte(content),
	}

	existing, _, resp, err := c.api.Repositories.GetContents(ctx, owner, repo, "README.md", nil)
	switch {
	case err == nil && existing != nil:
		opts.SHA = existing.SHA
		if _, _, err := c.api.Repositories.UpdateFile(ctx, owner, repo, "README.md", opts); err != nil {
			return fmt.Errorf("updating README for %s/%s: %w", owner, repo, err)
		}
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		if _, _, err := c.api.Repositories.CreateFile(ctx, owner, repo, "README.md", opts); err != nil {
			return fmt.Errorf("creating README for %s/%s: %w", owner, repo, err)
		}
	default:
		return fmt.Errorf("checking README for %s/%s: %w", owner, repo, err)
	}

	return nil
}

// IsFork reports whether the repository is a fork.
func (c *RESTClient) IsFork(ctx context.Context, owner, repo string) (bool, error) {
	repository, err := c.GetRepository(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	return repository.IsFork, nil
}

// SyncFork fast-forwards a fork's default branch from its upstream.
func (c *RESTClient) SyncFork(ctx context.Context, owner, repo string) (bool, error) {
	repository, err := c.GetRepository(ctx, owner, repo)
	if err != nil {
		return false, err
	}

	branch := repository.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	_, _, err = c.api.Repositories.MergeUpstream(ctx, owner, repo, &gogithub.RepoMergeUpstreamRequest{
		Branch: gogithub.String(branch),
	})
	if err != nil {
		c.logger.Warn("Fork sync failed", "repo", owner+"/"+repo, "error", err)
		return false, err
	}
	return true, nil
}
