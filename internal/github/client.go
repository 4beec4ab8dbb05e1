// Package github wraps repository metadata access behind a single Client
// interface with two backends: the gh command-line tool and the REST API.
package github

import (
	"context"
	"errors"
)

var (
	// ErrCLIUnavailable is returned when the gh binary is missing or the
	// user has not authenticated with it.
	ErrCLIUnavailable = errors.New("github cli unavailable")

	// ErrMissingToken is returned when the REST client is constructed
	// without a token.
	ErrMissingToken = errors.New("github token not provided")

	// ErrRepositoryNotFound is returned when a repository lookup fails.
	ErrRepositoryNotFound = errors.New("repository not found")
)

// Repository is the subset of repository metadata the optimizer reads.
type Repository struct {
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	Description   string `json:"description"`
	IsPrivate     bool   `json:"isPrivate"`
	IsFork        bool   `json:"isFork"`
	DefaultBranch string `json:"defaultBranch"`
}

// Client is the repository metadata collaborator. Both backends satisfy it;
// the optimizer does not care which one it talks to.
type Client interface {
	GetUserRepositories(ctx context.Context, username string) ([]Repository, error)
	GetRepository(ctx context.Context, owner, repo string) (*Repository, error)
	GetRepositoryLanguages(ctx context.Context, owner, repo string) (map[string]int, error)
	GetRepositoryTopics(ctx context.Context, owner, repo string) ([]string, error)
	GetRepositoryReadme(ctx context.Context, owner, repo string) (string, error)
	UpdateRepository(ctx context.Context, owner, repo string, description *string, topics []string) error
	UpdateRepositoryReadme(ctx context.Context, owner, repo, content, message string) error
	IsFork(ctx context.Context, owner, repo string) (bool, error)
	SyncFork(ctx context.Context, owner, repo string) (bool, error)
}
