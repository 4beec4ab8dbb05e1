package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dkalykov/repo-seo/internal/config"
	"github.com/dkalykov/repo-seo/internal/service/llm"
)

// Descriptor is a static registry entry describing how to resolve a
// provider's credentials.
type Descriptor struct {
	Name           string
	RequiresAPIKey bool
	APIKeyEnvVars  []string // first present wins
}

// Availability reports whether a registered provider can be constructed in
// the current environment, and why not when it cannot.
type Availability struct {
	Name      string         `json:"name"`
	Available bool           `json:"available"`
	Error     string         `json:"error,omitempty"`
	Info      *llm.ModelInfo `json:"info,omitempty"`
}

type constructor func(cfg *config.Config, logger llm.Logger) (llm.Provider, error)

// Registry maps case-insensitive provider names to constructors. Providers
// are constructed lazily: a provider needing a missing credential fails at
// construction time, not at call time.
type Registry struct {
	cfg          *config.Config
	logger       llm.Logger
	constructors map[string]constructor
	descriptors  map[string]Descriptor
}

// NewRegistry creates a registry with all built-in providers registered
func NewRegistry(cfg *config.Config, logger llm.Logger) *Registry {
	if logger == nil {
		logger = &llm.DefaultLogger{}
	}

	r := &Registry{
		cfg:          cfg,
		logger:       logger,
		constructors: make(map[string]constructor),
		descriptors:  make(map[string]Descriptor),
	}

	r.register(
		Descriptor{Name: "local"},
		func(*config.Config, llm.Logger) (llm.Provider, error) {
			return NewLocalProvider(), nil
		},
	)
	r.register(
		Descriptor{Name: "openai", RequiresAPIKey: true, APIKeyEnvVars: []string{"OPENAI_API_KEY"}},
		func(cfg *config.Config, logger llm.Logger) (llm.Provider, error) {
			return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
		},
	)
	r.register(
		Descriptor{Name: "anthropic", RequiresAPIKey: true, APIKeyEnvVars: []string{"ANTHROPIC_API_KEY"}},
		func(cfg *config.Config, logger llm.Logger) (llm.Provider, error) {
			return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
		},
	)
	r.register(
		Descriptor{Name: "gemini", RequiresAPIKey: true, APIKeyEnvVars: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}},
		func(cfg *config.Config, logger llm.Logger) (llm.Provider, error) {
			return NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		},
	)
	r.register(
		Descriptor{Name: "ollama"},
		func(cfg *config.Config, logger llm.Logger) (llm.Provider, error) {
			return NewOllamaProvider(context.Background(), cfg.OllamaBaseURL, cfg.OllamaModel, logger)
		},
	)
	r.register(
		Descriptor{Name: "deepseek", RequiresAPIKey: true, APIKeyEnvVars: []string{"DEEPSEEK_API_KEY"}},
		func(cfg *config.Config, logger llm.Logger) (llm.Provider, error) {
			return NewDeepSeekProvider(cfg.DeepSeekAPIKey, cfg.DeepSeekModel, logger)
		},
	)

	return r
}

func (r *Registry) register(desc Descriptor, ctor constructor) {
	name := strings.ToLower(desc.Name)
	r.descriptors[name] = desc
	r.constructors[name] = ctor
}

// Get resolves a provider name to a freshly constructed instance. An unknown
// name yields ErrProviderNotSupported listing the valid names; a provider
// missing its credential fails with a descriptive construction error.
func (r *Registry) Get(name string) (llm.Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	ctor, ok := r.constructors[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available providers: %s)",
			llm.ErrProviderNotSupported, name, strings.Join(r.Names(), ", "))
	}

	provider, err := ctor(r.cfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("initializing provider %q: %w", key, err)
	}
	return provider, nil
}

// Names returns the registered provider names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Descriptor returns the registry entry for a provider name
func (r *Registry) Descriptor(name string) (Descriptor, bool) {
	desc, ok := r.descriptors[strings.ToLower(strings.TrimSpace(name))]
	return desc, ok
}

// List attempts to construct every registered provider and reports
// per-provider availability. Construction failures are captured as data,
// never propagated.
func (r *Registry) List() []Availability {
	results := make([]Availability, 0, len(r.constructors))

	for _, name := range r.Names() {
		provider, err := r.Get(name)
		if err != nil {
			results = append(results, Availability{Name: name, Error: err.Error()})
			continue
		}

		info := provider.ModelInfo()
		results = append(results, Availability{Name: name, Available: true, Info: &info})
		if err := provider.Close(); err != nil {
			r.logger.Debug("Failed to close provider", "provider", name, "error", err)
		}
	}

	return results
}
