package providers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dkalykov/repo-seo/internal/service/llm"
	"github.com/dkalykov/repo-seo/internal/service/llm/prompts"
)

const remoteMaxDescriptionLength = 250

// seoSystemPrompt is the shared system instruction for chat-style backends.
const seoSystemPrompt = "You are a helpful assistant that generates SEO-friendly metadata for GitHub repositories."

// completionFn sends a single prompt to an external backend and returns the
// raw text reply.
type completionFn func(ctx context.Context, prompt string) (string, error)

// remoteAdapter implements the content-generation operations shared by every
// remote backend: it builds prompts from repository metadata, defensively
// truncates README input, and parses free-text replies into the contract's
// typed outputs. Concrete providers embed it and supply the transport.
type remoteAdapter struct {
	name      string
	generator *prompts.Generator
	logger    llm.Logger
	maxReadme int
	complete  completionFn
}

func newRemoteAdapter(name string, logger llm.Logger, maxReadme int, complete completionFn) remoteAdapter {
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}
	return remoteAdapter{
		name:      name,
		generator: prompts.NewGenerator(),
		logger:    logger,
		maxReadme: maxReadme,
		complete:  complete,
	}
}

// GenerateDescription implements the Provider interface
func (a *remoteAdapter) GenerateDescription(ctx context.Context, repoName string, languages, topics []string, readme string) (string, error) {
	prompt := a.generator.DescriptionPrompt(repoName, languages, topics, readme, a.maxReadme)

	text, err := a.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrAPIRequestFailed, err)
	}

	description := strings.TrimSpace(llm.StripCodeFences(text))
	description = strings.Trim(description, `"`)

	return truncateWithEllipsis(description, remoteMaxDescriptionLength), nil
}

// truncateWithEllipsis shortens s to at most max bytes, cutting on a rune
// boundary before appending the ellipsis.
func truncateWithEllipsis(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// GenerateTopics implements the Provider interface
func (a *remoteAdapter) GenerateTopics(ctx context.Context, repoName string, languages, currentTopics []string, readme string) ([]string, error) {
	prompt := a.generator.TopicsPrompt(repoName, languages, currentTopics, readme, a.maxReadme)

	text, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrAPIRequestFailed, err)
	}

	topics := llm.ParseTopicList(text, llm.MaxTopics)
	a.logger.Debug("Parsed topics from response", "provider", a.name, "count", len(topics))

	return topics, nil
}

// AnalyzeReadme implements the Provider interface
func (a *remoteAdapter) AnalyzeReadme(ctx context.Context, readme string) (*llm.ReadmeAnalysis, error) {
	if readme == "" {
		return llm.EmptyReadmeAnalysis(), nil
	}

	prompt := a.generator.AnalyzePrompt(readme, a.maxReadme)

	text, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", llm.ErrAPIRequestFailed, err)
	}

	analysis, err := llm.ParseAnalysis(text)
	if err != nil {
		a.logger.Warn("Failed to parse analysis response", "provider", a.name, "error", err)
		return nil, err
	}

	return analysis, nil
}

// GenerateReadme implements the Provider interface. An existing substantive
// README is returned unchanged without a backend call.
func (a *remoteAdapter) GenerateReadme(ctx context.Context, repoName string, languages, topics []string, description, existingReadme string) (string, error) {
	if len(existingReadme) >= llm.MinReadmeLength {
		return existingReadme, nil
	}

	prompt := a.generator.ReadmePrompt(repoName, languages, topics, description)

	text, err := a.complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrAPIRequestFailed, err)
	}

	return llm.StripCodeFences(text), nil
}
