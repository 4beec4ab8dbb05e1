package providers

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

// GeminiProvider implements the Provider interface for Google's Gemini API
// using the official client.
type GeminiProvider struct {
	remoteAdapter
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a new Gemini provider. Construction fails when
// the API key is missing or the client cannot be initialized.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, logger llm.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set the GEMINI_API_KEY or GOOGLE_API_KEY environment variable", llm.ErrMissingAPIKey)
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	p := &GeminiProvider{
		client:    client,
		modelName: modelName,
	}
	p.remoteAdapter = newRemoteAdapter("gemini", logger, 2000, p.completion)

	return p, nil
}

func (p *GeminiProvider) completion(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.modelName)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2048)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("content blocked: %s", resp.PromptFeedback.BlockReason)
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			text += string(textPart)
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}

	return text, nil
}

// ValidateAPIKey checks the credential with a minimal generation request
func (p *GeminiProvider) ValidateAPIKey(ctx context.Context) bool {
	_, err := p.completion(ctx, "Reply with the single word: ok")
	return err == nil
}

// ModelInfo returns the provider's static self-description
func (p *GeminiProvider) ModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:     p.modelName,
		Version:  "v1",
		Provider: "gemini",
		Capabilities: []string{
			"description_generation",
			"topic_generation",
			"readme_analysis",
			"readme_generation",
		},
	}
}

// Close closes the Gemini client
func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
