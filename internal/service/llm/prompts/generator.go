package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Generator creates prompts for content-generation providers
type Generator struct{}

// NewGenerator creates a new prompt generator
func NewGenerator() *Generator {
	return &Generator{}
}

// DescriptionPrompt creates a prompt for repository description generation.
// README content is truncated to maxReadme characters to respect upstream
// input limits.
func (g *Generator) DescriptionPrompt(repoName string, languages, topics []string, readme string, maxReadme int) string {
	var sb strings.Builder

	sb.WriteString("Generate a concise, SEO-friendly description for a GitHub repository.\n\n")
	sb.WriteString(fmt.Sprintf("Repository Name: %s\n", repoName))
	sb.WriteString(fmt.Sprintf("Programming Languages: %s\n", strings.Join(languages, ", ")))
	sb.WriteString(fmt.Sprintf("Current Topics: %s\n\n", strings.Join(topics, ", ")))

	sb.WriteString("README Content:\n")
	sb.WriteString(truncate(readme, maxReadme))
	sb.WriteString("\n\n")

	sb.WriteString("The description should:\n")
	sb.WriteString("1. Be 1-2 sentences (maximum 250 characters)\n")
	sb.WriteString("2. Highlight the main purpose and key technologies\n")
	sb.WriteString("3. Use relevant keywords naturally\n")
	sb.WriteString("4. Be written in a professional tone\n\n")

	sb.WriteString("Return ONLY the description text, without quotes or additional commentary.")

	return sb.String()
}

// TopicsPrompt creates a prompt for repository topic generation
func (g *Generator) TopicsPrompt(repoName string, languages, currentTopics []string, readme string, maxReadme int) string {
	var sb strings.Builder

	sb.WriteString("Generate a list of SEO-friendly topics for a GitHub repository.\n\n")
	sb.WriteString(fmt.Sprintf("Repository Name: %s\n", repoName))
	sb.WriteString(fmt.Sprintf("Programming Languages: %s\n", strings.Join(languages, ", ")))
	sb.WriteString(fmt.Sprintf("Current Topics: %s\n\n", strings.Join(currentTopics, ", ")))

	sb.WriteString("README Content:\n")
	sb.WriteString(truncate(readme, maxReadme))
	sb.WriteString("\n\n")

	sb.WriteString("The topics should:\n")
	sb.WriteString("- Be relevant to the repository content\n")
	sb.WriteString("- Include programming languages and frameworks used\n")
	sb.WriteString("- Follow GitHub's topic guidelines (lowercase, hyphenated, no spaces)\n")
	sb.WriteString("- Be good for discoverability on GitHub\n\n")

	sb.WriteString("Return ONLY a JSON array of topic strings, without any additional commentary.")

	return sb.String()
}

// AnalyzePrompt creates a prompt for README content analysis
func (g *Generator) AnalyzePrompt(readme string, maxReadme int) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following GitHub README content.\n\n")
	sb.WriteString("README Content:\n")
	sb.WriteString(truncate(readme, maxReadme))
	sb.WriteString("\n\n")

	sb.WriteString("Return a JSON object with these fields:\n")
	sb.WriteString("- \"summary\": a 1-2 sentence summary of the project\n")
	sb.WriteString("- \"topics\": an array of topics covered by the README\n")
	sb.WriteString("- \"entities\": an array of named entities (products, tools, organizations)\n")
	sb.WriteString("- \"sentiment\": \"positive\", \"negative\", or \"neutral\"\n")
	sb.WriteString("- \"readability\": \"simple\", \"good\", or \"complex\"\n")
	sb.WriteString("- \"suggestions\": an array of suggestions for improving the README\n\n")

	sb.WriteString("Return ONLY the JSON object, without any additional commentary.")

	return sb.String()
}

// ReadmePrompt creates a prompt for README synthesis
func (g *Generator) ReadmePrompt(repoName string, languages, topics []string, description string) string {
	var sb strings.Builder

	sb.WriteString("Generate a complete README.md for a GitHub repository.\n\n")
	sb.WriteString(fmt.Sprintf("Repository Name: %s\n", repoName))
	sb.WriteString(fmt.Sprintf("Programming Languages: %s\n", strings.Join(languages, ", ")))
	sb.WriteString(fmt.Sprintf("Topics: %s\n", strings.Join(topics, ", ")))
	sb.WriteString(fmt.Sprintf("Description: %s\n\n", description))

	sb.WriteString("The README should include: a title, the description, ")
	sb.WriteString("Installation and Usage sections with language-appropriate commands, ")
	sb.WriteString("a Features section, and Contributing and License sections.\n\n")

	sb.WriteString("Return ONLY the markdown content, without code-fence wrappers around the whole document.")

	return sb.String()
}

// truncate limits s to max bytes, cutting on a rune boundary. A non-positive
// max means no limit.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
