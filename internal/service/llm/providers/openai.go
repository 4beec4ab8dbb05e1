package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

// OpenAIProvider implements the Provider interface using the OpenAI chat
// completions API.
type OpenAIProvider struct {
	remoteAdapter
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider. Construction fails when
// no API key is available.
func NewOpenAIProvider(apiKey, model string, logger llm.Logger) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set the OPENAI_API_KEY environment variable", llm.ErrMissingAPIKey)
	}
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	p := &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
	p.remoteAdapter = newRemoteAdapter("openai", logger, 2000, p.completion)

	return p, nil
}

func (p *OpenAIProvider) completion(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: seoSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// ValidateAPIKey checks the credential with a minimal models request
func (p *OpenAIProvider) ValidateAPIKey(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// ModelInfo returns the provider's static self-description
func (p *OpenAIProvider) ModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:     p.model,
		Version:  "v1",
		Provider: "openai",
		Capabilities: []string{
			"description_generation",
			"topic_generation",
			"readme_analysis",
			"readme_generation",
		},
	}
}

// Close implements the Provider interface
func (p *OpenAIProvider) Close() error {
	return nil
}
