package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// minResponseLength is the shortest raw response worth attempting to parse.
const minResponseLength = 10

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// ParseModelJSON cleans a raw model response and unmarshals it into v.
// It strips fenced code-block delimiters, and on a parse failure applies a
// best-effort repair (drop trailing commas, append missing closing braces)
// before retrying once. It never surfaces the underlying parser error, only
// ErrEmptyResponse or ErrMalformedResponse.
func ParseModelJSON(raw string, v any) error {
	if len(strings.TrimSpace(raw)) < minResponseLength {
		return ErrEmptyResponse
	}

	cleaned := stripCodeFences(raw)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired := repairJSON(cleaned)
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedResponse, firstChars(cleaned, 60))
	}
	return nil
}

// stripCodeFences removes a ```json / ``` wrapper around the whole response.
func stripCodeFences(s string) string {
	cleaned := strings.TrimSpace(s)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// repairJSON fixes the two truncation shapes models actually produce:
// a trailing comma before a closing brace, and missing closing braces on a
// cut-off response.
func repairJSON(s string) string {
	repaired := trailingCommaRe.ReplaceAllString(s, "$1")
	repaired = strings.TrimSpace(repaired)
	repaired = strings.TrimSuffix(repaired, ",")

	open := strings.Count(repaired, "{")
	closed := strings.Count(repaired, "}")
	for i := 0; i < open-closed; i++ {
		repaired += "}"
	}
	return repaired
}

func firstChars(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// promptFamily is the coarse intent bucket the fallback classifier sorts a
// prompt into. A known approximation, never primary logic.
type promptFamily int

const (
	familyDefault promptFamily = iota
	familyDefinition
	familyComparison
	familyTutorial
)

func classifyPrompt(prompt string) promptFamily {
	lower := strings.ToLower(prompt)
	switch {
	case containsAny(lower, "how to", "tutorial", "step by step", "implement", "write code", "program", "build a"):
		return familyTutorial
	case containsAny(lower, " vs ", " vs.", "versus", "difference between", "compare", "comparison"):
		return familyComparison
	case containsAny(lower, "what is", "what are", "define", "definition", "explain", "meaning of"):
		return familyDefinition
	default:
		return familyDefault
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// FallbackOutline builds a canned outline from prompt keywords alone, with
// zero images. It guarantees the pipeline produces some structured outline
// even with zero model availability.
func FallbackOutline(prompt string) Outline {
	title := deriveTitle(prompt)

	var sections []Section
	switch classifyPrompt(prompt) {
	case familyDefinition:
		sections = []Section{
			{Heading: "Overview", Subsections: []string{"Definition", "Background"}, ContentTypes: []string{"paragraph"}},
			{Heading: "Key Concepts", Subsections: []string{"Core ideas", "Terminology"}, ContentTypes: []string{"paragraph", "points"}},
			{Heading: "How It Works", Subsections: []string{"Mechanism", "Examples"}, ContentTypes: []string{"paragraph"}},
			{Heading: "Summary", Subsections: []string{"Key takeaways", "Further reading"}, ContentTypes: []string{"points"}},
		}
	case familyComparison:
		sections = []Section{
			{Heading: "Introduction", Subsections: []string{"What is being compared", "Why it matters"}, ContentTypes: []string{"paragraph"}},
			{Heading: "Key Differences", Subsections: []string{"Side by side", "Trade-offs"}, ContentTypes: []string{"points"}},
			{Heading: "When to Use Which", Subsections: []string{"Typical scenarios", "Recommendations"}, ContentTypes: []string{"paragraph", "points"}},
		}
	case familyTutorial:
		sections = []Section{
			{Heading: "Getting Started", Subsections: []string{"Prerequisites", "Setup"}, ContentTypes: []string{"paragraph", "points"}},
			{Heading: "Step-by-Step Guide", Subsections: []string{"Walkthrough", "Code examples"}, ContentTypes: []string{"points", "code"}},
			{Heading: "Common Pitfalls", Subsections: []string{"Mistakes to avoid", "Debugging tips"}, ContentTypes: []string{"points"}},
			{Heading: "Next Steps", Subsections: []string{"Practice ideas", "Resources"}, ContentTypes: []string{"paragraph"}},
		}
	default:
		sections = []Section{
			{Heading: "Introduction", Subsections: []string{"Overview", "Context"}, ContentTypes: []string{"paragraph"}},
			{Heading: "Main Points", Subsections: []string{"Details", "Examples"}, ContentTypes: []string{"paragraph", "points"}},
			{Heading: "Conclusion", Subsections: []string{"Summary", "Takeaways"}, ContentTypes: []string{"points"}},
		}
	}

	return Outline{
		Title:         title,
		Sections:      sections,
		TotalImages:   0,
		ContentPrompt: prompt,
	}
}

// deriveTitle takes the first 60 characters of the prompt as a title.
func deriveTitle(prompt string) string {
	title := strings.TrimSpace(prompt)
	if title == "" {
		return "Untitled Notes"
	}
	runes := []rune(title)
	if len(runes) > 60 {
		title = strings.TrimSpace(string(runes[:60]))
	}
	return title
}
