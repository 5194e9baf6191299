package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const markerInstructions = `Formatting rules: use these inline markers instead of markdown.
- Bullet items: start the line with "BULLET_POINT: "
- Numbered items: start the line with "NUMBERED_POINT: 1." (then 2., 3., ...)
- Code: wrap in lines "CODE_BLOCK_START:language" and "CODE_BLOCK_END"
- Never use #, *, -, backticks, or any other markdown syntax.
- Plain paragraphs and section headings are written as plain lines.`

// writeContent issues the single large body-generation call and returns the
// cleaned marker-annotated text.
func (p *Pipeline) writeContent(ctx context.Context, outline Outline, images []GeneratedImage, fromFallback bool) (string, error) {
	var prompt string
	if fromFallback {
		prompt = buildFallbackContentPrompt(outline)
	} else {
		prompt = buildContentPrompt(outline, images)
	}

	raw, err := withRetry(ctx, p.cfg, func() (string, error) {
		return p.gen.GenerateText(ctx, prompt, "", p.cfg.MaxOutputTokens)
	})
	if err != nil {
		return "", fmt.Errorf("writing content: %w", err)
	}

	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyContent
	}
	if len(strings.TrimSpace(raw)) < p.cfg.MinContentLength {
		return "", ErrIncompleteContent
	}

	cleaned := cleanGeneratedText(raw)

	if strings.TrimSpace(cleaned) == "" {
		return "", ErrEmptyContent
	}
	if len(strings.TrimSpace(cleaned)) < p.cfg.MinContentLength {
		return "", ErrIncompleteContent
	}
	return cleaned, nil
}

// buildFallbackContentPrompt addresses the original topic directly, since a
// heuristic outline carries canned section names rather than planned ones.
func buildFallbackContentPrompt(outline Outline) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write comprehensive study notes on: %s\n\n", outline.ContentPrompt)
	sb.WriteString("Cover the topic thoroughly with no length limit, organized around these sections:\n")

	max := len(outline.Sections)
	if max > 4 {
		max = 4
	}
	for _, section := range outline.Sections[:max] {
		fmt.Fprintf(&sb, "- %s\n", section.Heading)
	}

	sb.WriteString("\n")
	sb.WriteString(markerInstructions)
	return sb.String()
}

// buildContentPrompt describes the planned section tree in prose and lists
// the available illustrations so the model can reference them naturally.
func buildContentPrompt(outline Outline, images []GeneratedImage) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write the full body of a study notebook titled %q.\n\n", outline.Title)
	if outline.ContentPrompt != "" {
		fmt.Fprintf(&sb, "Guidance: %s\n\n", outline.ContentPrompt)
	}

	sb.WriteString("Follow this structure exactly, using each section heading as a plain line:\n")
	for i, section := range outline.Sections {
		fmt.Fprintf(&sb, "%d. %s", i+1, section.Heading)
		if len(section.Subsections) > 0 {
			fmt.Fprintf(&sb, " (covering: %s)", strings.Join(section.Subsections, ", "))
		}
		if len(section.ContentTypes) > 0 {
			fmt.Fprintf(&sb, " [style: %s]", strings.Join(section.ContentTypes, ", "))
		}
		sb.WriteString("\n")
	}

	if valid := ValidImages(images); len(valid) > 0 {
		sb.WriteString("\nThese illustrations will be placed in the notebook; refer to them naturally where relevant:\n")
		for _, img := range valid {
			fmt.Fprintf(&sb, "- %s\n", img.Prompt)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(markerInstructions)
	return sb.String()
}

var (
	strayKeyRe    = regexp.MustCompile(`^\s*"\w+"\s*:\s*,?\s*$`)
	headerRe      = regexp.MustCompile(`^#{1,6}\s+`)
	bulletRe      = regexp.MustCompile(`^[\*\-•]\s+`)
	numberedRe    = regexp.MustCompile(`^(\d+)\.\s+`)
	fenceOpenRe   = regexp.MustCompile("^```(\\w*)\\s*$")
	boldWrapperRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// cleanGeneratedText normalizes a model body to the single marker dialect
// downstream parsing expects, regardless of whether the model obeyed the
// formatting instructions.
func cleanGeneratedText(raw string) string {
	text := strings.TrimSpace(raw)

	// A whole-response fence wrapper is packaging, not content.
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && strings.Count(text, "```") == 2 {
		text = stripCodeFences(text)
	}

	// Some models wrap the body in a one-field JSON object.
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		var wrapper map[string]string
		if err := json.Unmarshal([]byte(text), &wrapper); err == nil {
			if body, ok := wrapper["content"]; ok && body != "" {
				text = body
			}
		}
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inCode := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Residual markdown fences become code markers; track open state so
		// the closing fence maps to the end marker.
		if m := fenceOpenRe.FindStringSubmatch(trimmed); m != nil {
			if inCode {
				out = append(out, "CODE_BLOCK_END")
				inCode = false
			} else {
				lang := m[1]
				if lang == "" {
					lang = "text"
				}
				out = append(out, "CODE_BLOCK_START:"+lang)
				inCode = true
			}
			continue
		}
		if inCode || strings.HasPrefix(trimmed, "CODE_BLOCK_START:") {
			if strings.HasPrefix(trimmed, "CODE_BLOCK_START:") {
				inCode = true
			}
			if trimmed == "CODE_BLOCK_END" {
				inCode = false
			}
			out = append(out, line)
			continue
		}

		if strayKeyRe.MatchString(trimmed) {
			continue
		}

		switch {
		case headerRe.MatchString(trimmed):
			trimmed = headerRe.ReplaceAllString(trimmed, "")
		case bulletRe.MatchString(trimmed):
			trimmed = "BULLET_POINT: " + bulletRe.ReplaceAllString(trimmed, "")
		case numberedRe.MatchString(trimmed) && !strings.HasPrefix(trimmed, "NUMBERED_POINT:"):
			m := numberedRe.FindStringSubmatch(trimmed)
			trimmed = "NUMBERED_POINT: " + m[1] + ". " + numberedRe.ReplaceAllString(trimmed, "")
		}

		trimmed = boldWrapperRe.ReplaceAllString(trimmed, "$1")
		out = append(out, trimmed)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
