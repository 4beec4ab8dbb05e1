package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dkalykov/repo-seo/internal/service/llm"
)

const (
	ollamaTagsTimeout     = 5 * time.Second
	ollamaGenerateTimeout = 60 * time.Second

	ollamaMaxDescriptionLength = 160
)

// preferredOllamaModels is checked in order against the models a local
// Ollama server actually has pulled. The first match wins; when none
// match, the first installed model is used.
var preferredOllamaModels = []string{
	"mistral:latest",
	"llama2:latest",
	"deepseek-coder",
	"deepseek-r1:7b",
	"neural-chat",
}

// OllamaProvider implements the Provider interface against a local Ollama
// server. It needs no API key.
type OllamaProvider struct {
	remoteAdapter
	baseURL string
	model   string
	client  *http.Client
}

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

type ollamaTagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllamaProvider creates a new Ollama provider. When the requested model
// is not installed on the server, it falls back to a known-good model from
// the server's tag list.
func NewOllamaProvider(ctx context.Context, baseURL, model string, logger llm.Logger) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	p := &OllamaProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: ollamaGenerateTimeout},
	}

	resolved, err := p.resolveModel(ctx, model)
	if err != nil {
		return nil, err
	}
	p.model = resolved
	p.remoteAdapter = newRemoteAdapter("ollama", logger, 1000, p.completion)

	return p, nil
}

// resolveModel asks the server for its installed models and picks the
// requested one when present, otherwise the first preferred fallback that
// is installed, otherwise the first installed model.
func (p *OllamaProvider) resolveModel(ctx context.Context, requested string) (string, error) {
	installed, err := p.listModels(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrAPIRequestFailed, err)
	}
	if len(installed) == 0 {
		return "", fmt.Errorf("%w: no models installed on Ollama server at %s", llm.ErrNoModelsAvailable, p.baseURL)
	}

	have := make(map[string]bool, len(installed))
	for _, name := range installed {
		have[name] = true
	}

	if requested != "" && have[requested] {
		return requested, nil
	}
	for _, candidate := range preferredOllamaModels {
		if have[candidate] {
			return candidate, nil
		}
	}
	return installed[0], nil
}

func (p *OllamaProvider) listModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ollamaTagsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Ollama server returned status %d", resp.StatusCode)
	}

	var tags ollamaTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags response: %w", err)
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (p *OllamaProvider) completion(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]interface{}{
			"num_predict": 1024,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var result ollamaGenerateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return "", fmt.Errorf("Ollama error: %s", result.Error)
	}
	if strings.TrimSpace(result.Response) == "" {
		return "", fmt.Errorf("empty response from Ollama")
	}

	return result.Response, nil
}

// GenerateDescription overrides the shared adapter to apply a tighter
// length limit. Local models ramble; 160 characters keeps the description
// inside GitHub's visible range.
func (p *OllamaProvider) GenerateDescription(ctx context.Context, repoName string, languages, topics []string, readme string) (string, error) {
	desc, err := p.remoteAdapter.GenerateDescription(ctx, repoName, languages, topics, readme)
	if err != nil {
		return "", err
	}
	return truncateWithEllipsis(desc, ollamaMaxDescriptionLength), nil
}

// ValidateAPIKey reports whether the server is reachable. Ollama has no
// credential, so reachability is the whole check.
func (p *OllamaProvider) ValidateAPIKey(ctx context.Context) bool {
	_, err := p.listModels(ctx)
	return err == nil
}

// ModelInfo returns the provider's static self-description
func (p *OllamaProvider) ModelInfo() llm.ModelInfo {
	return llm.ModelInfo{
		Name:     p.model,
		Version:  "local",
		Provider: "ollama",
		Capabilities: []string{
			"description_generation",
			"topic_generation",
			"readme_analysis",
			"readme_generation",
		},
	}
}

// Close releases resources held by the provider
func (p *OllamaProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
