package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalykov/repo-seo/internal/config"
	"github.com/dkalykov/repo-seo/internal/service/llm"
)

func newTestRegistry() *Registry {
	return NewRegistry(&config.Config{}, &llm.DefaultLogger{})
}

func TestRegistryNames(t *testing.T) {
	r := newTestRegistry()

	assert.Equal(t, []string{"anthropic", "deepseek", "gemini", "local", "ollama", "openai"}, r.Names())
}

func TestRegistryGet(t *testing.T) {
	r := newTestRegistry()

	t.Run("local always constructs", func(t *testing.T) {
		provider, err := r.Get("local")
		require.NoError(t, err)
		assert.Equal(t, "local", provider.ModelInfo().Provider)
	})

	t.Run("name matching is case-insensitive", func(t *testing.T) {
		provider, err := r.Get("  LOCAL ")
		require.NoError(t, err)
		assert.Equal(t, "local", provider.ModelInfo().Provider)
	})

	t.Run("unknown name lists valid providers", func(t *testing.T) {
		_, err := r.Get("nonexistent")
		require.Error(t, err)

		assert.ErrorIs(t, err, llm.ErrProviderNotSupported)
		assert.Contains(t, err.Error(), "local")
		assert.Contains(t, err.Error(), "openai")
	})

	t.Run("missing credential fails construction", func(t *testing.T) {
		_, err := r.Get("openai")
		require.Error(t, err)
		assert.ErrorIs(t, err, llm.ErrMissingAPIKey)
	})
}

func TestRegistryDescriptor(t *testing.T) {
	r := newTestRegistry()

	desc, ok := r.Descriptor("gemini")
	require.True(t, ok)
	assert.True(t, desc.RequiresAPIKey)
	assert.Equal(t, []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}, desc.APIKeyEnvVars)

	local, ok := r.Descriptor("local")
	require.True(t, ok)
	assert.False(t, local.RequiresAPIKey)

	_, ok = r.Descriptor("nonexistent")
	assert.False(t, ok)
}

func TestRegistryListCapturesFailures(t *testing.T) {
	r := newTestRegistry()

	statuses := r.List()
	require.Len(t, statuses, 6)

	byName := make(map[string]Availability, len(statuses))
	for _, s := range statuses {
		byName[s.Name] = s
	}

	assert.True(t, byName["local"].Available)
	require.NotNil(t, byName["local"].Info)
	assert.Equal(t, "local-rule-based", byName["local"].Info.Name)

	// Keyed providers have no credentials in the test environment.
	assert.False(t, byName["openai"].Available)
	assert.NotEmpty(t, byName["openai"].Error)
	assert.False(t, byName["anthropic"].Available)
	assert.False(t, byName["deepseek"].Available)
}
