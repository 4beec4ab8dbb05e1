package providers

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

const deepSeekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider implements the Provider interface against DeepSeek's
// OpenAI-compatible chat API.
type DeepSeekProvider struct {
	remoteAdapter
	client *openai.Client
	model  string
}

// NewDeepSeekProvider creates a new DeepSeek provider
func NewDeepSeekProvider(apiKey, model string, logger llm.Logger) (*DeepSeekProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set the DEEPSEEK_API_KEY environment variable", llm.ErrMissingAPIKey)
	}
	if model == "" {
		model = "deepseek-chat"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = deepSeekBaseURL

	p := &DeepSeekProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
	p.remoteAdapter = newRemoteAdapter("deepseek", logger, 2000, p.completion)

	return p, nil
}

func (p *DeepSeekProvider) completion(ctx context.Context, prompt string) (string, error) {
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
		return "", fmt.Errorf("empty response from DeepSeek")
	}

	return resp.Choices[0].Message.Content, nil
}

// ValidateAPIKey checks the credential with a minimal models request
func (p *DeepSeekProvider) ValidateAPIKey(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// ModelInfo returns the provider's static self-description
func (p *DeepSeekProvider) ModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:     p.model,
		Version:  "v1",
		Provider: "deepseek",
		Capabilities: []string{
			"description_generation",
			"topic_generation",
			"readme_analysis",
			"readme_generation",
		},
	}
}

// Close implements the Provider interface
func (p *DeepSeekProvider) Close() error {
	return nil
}
