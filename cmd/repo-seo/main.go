package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dkalykov/repo-seo/internal/config"
	"github.com/dkalykov/repo-seo/internal/github"
	"github.com/dkalykov/repo-seo/internal/optimizer"
	"github.com/dkalykov/repo-seo/internal/service/llm"
	"github.com/dkalykov/repo-seo/internal/service/llm/providers"
	"github.com/dkalykov/repo-seo/internal/service/seo"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type flags struct {
	repo        string
	apply       bool
	provider    string
	noSync      bool
	maxRepos    int
	token       string
	skipPrivate bool
	output      string
	delay       time.Duration
	verbose     bool
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "repo-seo <username>",
		Short: "Optimize GitHub repository descriptions, topics and READMEs for discoverability",
		Long: `repo-seo fetches repository metadata, generates improved SEO metadata
with a rule-based engine or an LLM provider, and optionally writes the
results back. Runs are dry-run by default; pass --apply to write.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.repo, "repo", "", "Optimize a single repository instead of all")
	cmd.Flags().BoolVar(&f.apply, "apply", false, "Write changes back to GitHub (default dry-run)")
	cmd.Flags().StringVar(&f.provider, "provider", "local", "LLM provider for content generation")
	cmd.Flags().BoolVar(&f.noSync, "no-sync", false, "Skip syncing forks with their upstream")
	cmd.Flags().IntVar(&f.maxRepos, "max-repos", 0, "Maximum repositories to process (0 = config default)")
	cmd.Flags().StringVar(&f.token, "token", "", "GitHub token (default: GITHUB_TOKEN, else gh CLI auth)")
	cmd.Flags().BoolVar(&f.skipPrivate, "skip-private", false, "Skip private repositories in batch runs")
	cmd.Flags().StringVar(&f.output, "output", ".", "Directory for the batch results file")
	cmd.Flags().DurationVar(&f.delay, "delay", 0, "Delay between repositories (0 = config default)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(providersCmd())

	return cmd
}

func providersCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List registered LLM providers and their availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			logger := &llm.DefaultLogger{Verbose: verbose}
			registry := providers.NewRegistry(cfg, logger)

			for _, status := range registry.List() {
				if status.Available {
					fmt.Printf("%-12s available (model: %s)\n", status.Name, status.Info.Name)
				} else {
					fmt.Printf("%-12s unavailable: %s\n", status.Name, status.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

func run(ctx context.Context, username string, f flags) error {
	cfg := config.NewConfig()
	logger := &llm.DefaultLogger{Verbose: f.verbose}

	if f.token != "" {
		cfg.GitHubToken = f.token
	}
	if f.maxRepos <= 0 {
		f.maxRepos = cfg.MaxRepos
	}
	if f.delay <= 0 {
		f.delay = cfg.BatchDelay
	}

	registry := providers.NewRegistry(cfg, logger)
	provider, err := registry.Get(f.provider)
	if err != nil {
		return err
	}
	defer func() {
		if err := provider.Close(); err != nil {
			logger.Debug("Failed to close provider", "error", err)
		}
	}()

	client, err := newGitHubClient(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opt := optimizer.New(client, seo.NewGenerator(provider, logger), optimizer.Options{
		Apply:       f.apply,
		NoSync:      f.noSync,
		SkipPrivate: f.skipPrivate,
		MaxRepos:    f.maxRepos,
		OutputDir:   f.output,
		Delay:       f.delay,
	}, logger)

	if !f.apply {
		logger.Info("Dry run: no changes will be written (pass --apply to write)")
	}

	if f.repo != "" {
		return runSingle(ctx, opt, username, f.repo, f.apply)
	}
	return runBatch(ctx, opt, username)
}

// newGitHubClient prefers the REST backend when a token is available and
// falls back to ambient gh CLI authentication otherwise.
func newGitHubClient(ctx context.Context, cfg *config.Config, logger llm.Logger) (github.Client, error) {
	if cfg.GitHubToken != "" {
		logger.Debug("Using REST GitHub client")
		return github.NewRESTClient(ctx, cfg.GitHubToken, logger)
	}
	logger.Debug("No token configured, using gh CLI client")
	return github.NewCLIClient(logger)
}

func runSingle(ctx context.Context, opt *optimizer.Optimizer, owner, repo string, applied bool) error {
	result, err := opt.OptimizeRepository(ctx, owner, repo)
	if err != nil {
		return err
	}

	fmt.Printf("Repository: %s/%s\n", result.Owner, result.RepoName)
	if result.Analysis != nil {
		fmt.Printf("SEO score: %.0f/100\n", result.Analysis.OverallScore)
	}

	if !result.Changes.Any() {
		fmt.Println("No changes needed.")
		return nil
	}

	if result.Changes.Description {
		fmt.Printf("Description: %q -> %q\n", result.CurrentDescription, result.NewDescription)
	}
	if result.Changes.Topics {
		fmt.Printf("Topics: [%s] -> [%s]\n",
			strings.Join(result.CurrentTopics, ", "), strings.Join(result.NewTopics, ", "))
	}
	if result.Changes.Readme {
		fmt.Printf("README: %d chars -> %d chars\n", len(result.CurrentReadme), len(result.NewReadme))
	}

	if applied {
		fmt.Println("Changes applied.")
	} else {
		fmt.Println("Dry run complete; re-run with --apply to write these changes.")
	}
	return nil
}

func runBatch(ctx context.Context, opt *optimizer.Optimizer, username string) error {
	entries, summary, err := opt.OptimizeUser(ctx, username)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		status := "ok"
		if !entry.Success {
			status = "error: " + entry.Error
		} else if entry.Result != nil && entry.Result.Changes.Any() {
			var fields []string
			if entry.Result.Changes.Description {
				fields = append(fields, "description")
			}
			if entry.Result.Changes.Topics {
				fields = append(fields, "topics")
			}
			if entry.Result.Changes.Readme {
				fields = append(fields, "readme")
			}
			status = "changes: " + strings.Join(fields, ", ")
		}
		fmt.Printf("  %s/%s: %s\n", entry.Owner, entry.RepoName, status)
	}

	fmt.Printf("\nProcessed %d repositories: %d succeeded, %d failed, %d with changes\n",
		summary.Processed, summary.Succeeded, summary.Errored, summary.Changed)

	// Individual repository failures are reported above but do not fail the run.
	return nil
}
