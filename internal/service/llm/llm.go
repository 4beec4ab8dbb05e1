package llm

import (
	"context"
	"errors"
	"log"
)

// Logger interface for service logging
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Common errors
var (
	ErrAPIRequestFailed     = errors.New("LLM API request failed")
	ErrResponseProcessing   = errors.New("failed to process LLM response")
	ErrProviderNotSupported = errors.New("provider not supported")
	ErrMissingAPIKey        = errors.New("missing API key")
	ErrNoModelsAvailable    = errors.New("no models available")
)

// DefaultLogger provides a basic implementation of the Logger interface
type DefaultLogger struct {
	Verbose bool
}

func (l *DefaultLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.Verbose {
		log.Printf("[DEBUG] %s %v", msg, keysAndValues)
	}
}

func (l *DefaultLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Printf("[INFO] %s %v", msg, keysAndValues)
}

func (l *DefaultLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Printf("[WARN] %s %v", msg, keysAndValues)
}

func (l *DefaultLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Printf("[ERROR] %s %v", msg, keysAndValues)
}

// Provider defines the interface that all content-generation backends must
// implement. Implementations translate these calls into either local text
// heuristics or prompts for an external language model.
type Provider interface {
	// GenerateDescription produces a short, human-readable repository
	// description. Callers truncate if the provider does not enforce a limit.
	GenerateDescription(ctx context.Context, repoName string, languages, topics []string, readme string) (string, error)

	// GenerateTopics returns candidate topics. Candidates may be invalid;
	// callers are responsible for validation.
	GenerateTopics(ctx context.Context, repoName string, languages, currentTopics []string, readme string) ([]string, error)

	// AnalyzeReadme performs a best-effort content analysis. An empty input
	// yields a neutral analysis with a "missing README" suggestion, never an
	// error.
	AnalyzeReadme(ctx context.Context, readme string) (*ReadmeAnalysis, error)

	// GenerateReadme synthesizes a README. An existing README of at least
	// MinReadmeLength characters is returned unchanged.
	GenerateReadme(ctx context.Context, repoName string, languages, topics []string, description, existingReadme string) (string, error)

	// ValidateAPIKey is a best-effort credential check. Providers with no
	// external dependency return true.
	ValidateAPIKey(ctx context.Context) bool

	// ModelInfo returns the provider's static self-description.
	ModelInfo() ModelInfo

	// Close releases any resources held by the provider.
	Close() error
}

// MinReadmeLength is the substantiveness threshold below which a README is
// considered worth regenerating.
const MinReadmeLength = 100

// MaxTopics is the platform limit on the number of repository topics.
const MaxTopics = 20
