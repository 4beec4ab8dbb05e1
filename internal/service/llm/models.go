package llm

// ModelInfo describes the model behind a provider
type ModelInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Provider     string   `json:"provider"`
	Capabilities []string `json:"capabilities"`
}

// ReadmeAnalysis represents the result of analyzing README content
type ReadmeAnalysis struct {
	Summary     string   `json:"summary"`
	Topics      []string `json:"topics"`
	Entities    []string `json:"entities"`
	Sentiment   string   `json:"sentiment"`
	Readability string   `json:"readability"`
	Suggestions []string `json:"suggestions"`
}

// EmptyReadmeAnalysis returns the neutral analysis used for a missing README
func EmptyReadmeAnalysis() *ReadmeAnalysis {
	return &ReadmeAnalysis{
		Topics:      []string{},
		Entities:    []string{},
		Sentiment:   "neutral",
		Readability: "unknown",
		Suggestions: []string{"Add a README file to your repository."},
	}
}
