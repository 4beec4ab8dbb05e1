package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

// CLIClient talks to GitHub through the gh command-line tool, reusing the
// ambient gh authentication. No token is needed.
type CLIClient struct {
	logger llm.Logger
}

// NewCLIClient creates a gh-backed client. Construction fails when the gh
// binary is missing or unauthenticated.
func NewCLIClient(logger llm.Logger) (*CLIClient, error) {
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	if _, err := exec.LookPath("gh"); err != nil {
		return nil, fmt.Errorf("%w: gh binary not found, install it from https://cli.github.com/", ErrCLIUnavailable)
	}
	if err := exec.Command("gh", "auth", "status").Run(); err != nil {
		return nil, fmt.Errorf("%w: not authenticated, run 'gh auth login'", ErrCLIUnavailable)
	}

	return &CLIClient{logger: logger}, nil
}

// run executes a gh command and returns its stdout. Stderr is folded into
// the error.
func (c *CLIClient) run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "gh", args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("Running gh command", "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("gh %s: %s", args[0], msg)
	}
	return stdout.Bytes(), nil
}

type cliRepository struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"isPrivate"`
	IsFork      bool   `json:"isFork"`
	Owner       struct {
		Login string `json:"login"`
	} `json:"owner"`
	DefaultBranchRef struct {
		Name string `json:"name"`
	} `json:"defaultBranchRef"`
}

func (r cliRepository) toRepository() Repository {
	return Repository{
		Name:          r.Name,
		Owner:         r.Owner.Login,
		Description:   r.Description,
		IsPrivate:     r.IsPrivate,
		IsFork:        r.IsFork,
		DefaultBranch: r.DefaultBranchRef.Name,
	}
}

// GetUserRepositories lists a user's repositories via `gh repo list`.
func (c *CLIClient) GetUserRepositories(ctx context.Context, username string) ([]Repository, error) {
	out, err := c.run(ctx, nil,
		"repo", "list", username,
		"--limit", "1000",
		"--json", "name,description,isPrivate,isFork,owner,defaultBranchRef")
	if err != nil {
		return nil, fmt.Errorf("listing repositories for %s: %w", username, err)
	}

	var raw []cliRepository
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parsing repository list for %s: %w", username, err)
	}

	repos := make([]Repository, 0, len(raw))
	for _, r := range raw {
		repos = append(repos, r.toRepository())
	}
	return repos, nil
}

// GetRepository fetches a single repository via `gh repo view`.
func (c *CLIClient) GetRepository(ctx context.Context, owner, repo string) (*Repository, error) {
	out, err := c.run(ctx, nil,
		"repo", "view", owner+"/"+repo,
		"--json", "name,description,isPrivate,isFork,owner,defaultBranchRef")
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrRepositoryNotFound, owner, repo, err)
	}

	var raw cliRepository
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parsing repository %s/%s: %w", owner, repo, err)
	}

	result := raw.toRepository()
	if result.Owner == "" {
		result.Owner = owner
	}
	return &result, nil
}

// GetRepositoryLanguages returns the byte counts per language.
func (c *CLIClient) GetRepositoryLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	out, err := c.run(ctx, nil, "api", fmt.Sprintf("repos/%s/%s/languages", owner, repo))
	if err != nil {
		return nil, fmt.Errorf("fetching languages for %s/%s: %w", owner, repo, err)
	}

	languages := make(map[string]int)
	if err := json.Unmarshal(out, &languages); err != nil {
		return nil, fmt.Errorf("parsing languages for %s/%s: %w", owner, repo, err)
	}
	return languages, nil
}

// GetRepositoryTopics returns the repository's topic list.
func (c *CLIClient) GetRepositoryTopics(ctx context.Context, owner, repo string) ([]string, error) {
	out, err := c.run(ctx, nil, "api", fmt.Sprintf("repos/%s/%s/topics", owner, repo))
	if err != nil {
		return nil, fmt.Errorf("fetching topics for %s/%s: %w", owner, repo, err)
	}

	var payload struct {
		Names []string `json:"names"`
	}
	if err := json.Unmarshal(out, &payload); err != nil {
		return nil, fmt.Errorf("parsing topics for %s/%s: %w", owner, repo, err)
	}
	return payload.Names, nil
}

// GetRepositoryReadme returns the raw README content. A repository without
// a README yields an empty string, not an error.
func (c *CLIClient) GetRepositoryReadme(ctx context.Context, owner, repo string) (string, error) {
	out, err := c.run(ctx, nil,
		"api", fmt.Sprintf("repos/%s/%s/readme", owner, repo),
		"-H", "Accept: application/vnd.github.raw")
	if err != nil {
		if strings.Contains(err.Error(), "404") || strings.Contains(err.Error(), "Not Found") {
			return "", nil
		}
		return "", fmt.Errorf("fetching README for %s/%s: %w", owner, repo, err)
	}
	return string(out), nil
}

// UpdateRepository patches the description and replaces the topic list.
// A nil description leaves it unchanged; nil topics leave them unchanged.
func (c *CLIClient) UpdateRepository(ctx context.Context, owner, repo string, description *string, topics []string) error {
	if description != nil {
		payload, err := json.Marshal(map[string]string{"description": *description})
		if err != nil {
			return fmt.Errorf("encoding description for %s/%s: %w", owner, repo, err)
		}
		if _, err := c.run(ctx, payload,
			"api", "--method", "PATCH",
			fmt.Sprintf("repos/%s/%s", owner, repo),
			"--input", "-"); err != nil {
			return fmt.Errorf("updating description for %s/%s: %w", owner, repo, err)
		}
	}

	if topics != nil {
		payload, err := json.Marshal(map[string][]string{"names": topics})
		if err != nil {
			return fmt.Errorf("encoding topics for %s/%s: %w", owner, repo, err)
		}
		if _, err := c.run(ctx, payload,
			"api", "--method", "PUT",
			fmt.Sprintf("repos/%s/%s/topics", owner, repo),
			"--input", "-"); err != nil {
			return fmt.Errorf("updating topics for %s/%s: %w", owner, repo, err)
		}
	}

	return nil
}

// UpdateRepositoryReadme creates or updates README.md on the default branch.
// Updating an existing file requires its blob SHA, so that is looked up first.
func (c *CLIClient) UpdateRepositoryReadme(ctx context.Context, owner, repo, content, message string) error {
	if message == "" {
		message = "Update README"
	}

	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}

	if out, err := c.run(ctx, nil, "api", fmt.Sprintf("repos/%s/%s/contents/README.md", owner, repo)); err == nil {
		var existing struct {
			SHA string `json:"sha"`
		}
		if err := json.Unmarshal(out, &existing); err == nil && existing.SHA != "" {
			body["sha"] = existing.SHA
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding README update for %s/%s: %w", owner, repo, err)
	}

	if _, err := c.run(ctx, payload,
		"api", "--method", "PUT",
		fmt.Sprintf("repos/%s/%s/contents/README.md", owner, repo),
		"--input", "-"); err != nil {
		return fmt.Errorf("updating README for %s/%s: %w", owner, repo, err)
	}
	return nil
}

// IsFork reports whether the repository is a fork.
func (c *CLIClient) IsFork(ctx context.Context, owner, repo string) (bool, error) {
	repository, err := c.GetRepository(ctx, owner, repo)
	if err != nil {
		return false, err
	}
	return repository.IsFork, nil
}

// SyncFork fast-forwards a fork from its upstream via `gh repo sync`.
func (c *CLIClient) SyncFork(ctx context.Context, owner, repo string) (bool, error) {
	if _, err := c.run(ctx, nil, "repo", "sync", owner+"/"+repo); err != nil {
		c.logger.Warn("Fork sync failed", "repo", owner+"/"+repo, "error", err)
		return false, err
	}
	return true, nil
}
