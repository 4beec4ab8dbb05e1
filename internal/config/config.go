package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// GitHub
	GitHubToken string

	// Providers
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
	DeepSeekAPIKey  string
	DeepSeekModel   string
	OllamaBaseURL   string
	OllamaModel     string

	// Optimization
	MaxRepos       int
	BatchDelay     time.Duration
	RequestTimeout time.Duration
}

// NewConfig creates a new configuration from environment variables. A .env
// file in the working directory is loaded first if present.
func NewConfig() *Config {
	_ = godotenv.Load()

	maxRepos, _ := strconv.Atoi(getEnv("MAX_REPOS", "100"))
	batchDelaySec, _ := strconv.Atoi(getEnv("BATCH_DELAY_SECONDS", "1"))
	requestTimeoutSec, _ := strconv.Atoi(getEnv("REQUEST_TIMEOUT_SECONDS", "30"))

	return &Config{
		// GitHub
		GitHubToken: getEnv("GITHUB_TOKEN", ""),

		// Providers
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
		GeminiAPIKey:    firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		DeepSeekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:     getEnv("OLLAMA_MODEL", "mistral:latest"),

		// Optimization
		MaxRepos:       maxRepos,
		BatchDelay:     time.Duration(batchDelaySec) * time.Second,
		RequestTimeout: time.Duration(requestTimeoutSec) * time.Second,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// firstEnv returns the value of the first non-empty environment variable
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}
