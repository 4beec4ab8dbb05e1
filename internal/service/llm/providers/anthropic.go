package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
	anthropicTimeout     = 30 * time.Second
)

// AnthropicProvider implements the Provider interface for Anthropic's
// messages API.
type AnthropicProvider struct {
	remoteAdapter
	apiKey     string
	model      string
	httpClient *http.Client
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewAnthropicProvider creates a new Anthropic provider
func NewAnthropicProvider(apiKey, model string, logger llm.Logger) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set the ANTHROPIC_API_KEY environment variable", llm.ErrMissingAPIKey)
	}
	if model == "" {
		model = "claude-3-haiku-20240307"
	}

	p := &AnthropicProvider{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: anthropicTimeout},
	}
	p.remoteAdapter = newRemoteAdapter("anthropic", logger, 1000, p.completion)

	return p, nil
}

func (p *AnthropicProvider) completion(ctx context.Context, prompt string) (string, error) {
	request := anthropicRequest{
		Model:     p.model,
		MaxTokens: 1024,
		System:    seoSystemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicMessagesURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("Anthropic API error", "status", resp.Status, "body", string(body))
		return "", fmt.Errorf("API error: %s", resp.Status)
	}

	var apiResponse anthropicResponse
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if apiResponse.Error != nil {
		return "", fmt.Errorf("API error: %s", apiResponse.Error.Message)
	}

	var text string
	for _, block := range apiResponse.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	return text, nil
}

// ValidateAPIKey checks the credential with a minimal completion request
func (p *AnthropicProvider) ValidateAPIKey(ctx context.Context) bool {
	_, err := p.completion(ctx, "Reply with the single word: ok")
	return err == nil
}

// ModelInfo returns the provider's static self-description
func (p *AnthropicProvider) ModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:     p.model,
		Version:  anthropicVersion,
		Provider: "anthropic",
		Capabilities: []string{
			"description_generation",
			"topic_generation",
			"readme_analysis",
			"readme_generation",
		},
	}
}

// Close implements the Provider interface
func (p *AnthropicProvider) Close() error {
	return nil
}
