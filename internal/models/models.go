package models

import "strings"

// RepositorySnapshot is the immutable input to an optimization pass. It is
// assembled from GitHub responses and never mutated afterwards.
type RepositorySnapshot struct {
	Name        string   `json:"name"`
	Owner       string   `json:"owner"`
	Description string   `json:"description"`
	Languages   []string `json:"languages"` // primary language first
	Topics      []string `json:"topics"`
	Readme      string   `json:"readme"`
	IsFork      bool     `json:"is_fork"`
}

// Changes records which repository fields an optimization pass would modify.
type Changes struct {
	Description bool `json:"description"`
	Topics      bool `json:"topics"`
	Readme      bool `json:"readme"`
}

// Any reports whether at least one field changed.
func (c Changes) Any() bool {
	return c.Description || c.Topics || c.Readme
}

// OptimizationResult is the change-set produced for a single repository.
type OptimizationResult struct {
	RepoName           string              `json:"repository"`
	Owner              string              `json:"owner"`
	CurrentDescription string              `json:"current_description"`
	NewDescription     string              `json:"new_description"`
	CurrentTopics      []string            `json:"current_topics"`
	NewTopics          []string            `json:"new_topics"`
	CurrentReadme      string              `json:"current_readme,omitempty"`
	NewReadme          string              `json:"new_readme,omitempty"`
	Changes            Changes             `json:"changes"`
	Analysis           *RepositoryAnalysis `json:"analysis,omitempty"`
}

// BatchEntry is one element of the persisted batch output. Entries for failed
// repositories carry an error message instead of a result.
type BatchEntry struct {
	Owner     string              `json:"owner"`
	RepoName  string              `json:"repository"`
	Success   bool                `json:"success"`
	Error     string              `json:"error,omitempty"`
	Timestamp string              `json:"timestamp"`
	Result    *OptimizationResult `json:"result,omitempty"`
}

// SectionAnalysis holds the diagnostic findings for one aspect of a repository.
type SectionAnalysis struct {
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Score       float64  `json:"score"`
}

// RepositoryAnalysis is the informational analysis attached to an
// OptimizationResult. It never influences write-back decisions.
type RepositoryAnalysis struct {
	Readme          SectionAnalysis `json:"readme"`
	Description     SectionAnalysis `json:"description"`
	Topics          SectionAnalysis `json:"topics"`
	SuggestedTopics []string        `json:"suggested_topics,omitempty"`
	OverallScore    float64         `json:"overall_score"`
}

// TopicsEqual compares two topic lists as case-insensitive sets.
func TopicsEqual(a, b []string) bool {
	as := topicSet(a)
	bs := topicSet(b)
	if len(as) != len(bs) {
		return false
	}
	for t := range as {
		if _, ok := bs[t]; !ok {
			return false
		}
	}
	return true
}

func topicSet(topics []string) map[string]struct{} {
	set := make(map[string]struct{}, len(topics))
	for _, t := range topics {
		set[strings.ToLower(t)] = struct{}{}
	}
	return set
}
