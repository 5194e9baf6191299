package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const plannerSystem = "You are a study-notes planner. You respond with a single JSON object and nothing else: no prose, no markdown fences."

// planStructure asks the text model for a JSON outline of the notebook.
// Returns the outline and whether it came from the heuristic fallback path.
//
// Parse and validation failures degrade to the fallback outline by design;
// auth, quota, and network errors propagate unchanged.
func (p *Pipeline) planStructure(ctx context.Context, prompt string, files []FileRef) (Outline, bool, error) {
	directive := buildPlannerPrompt(prompt, files, p.cfg)

	raw, err := withRetry(ctx, p.cfg, func() (string, error) {
		return p.gen.GenerateText(ctx, directive, plannerSystem, p.cfg.MaxOutputTokens)
	})
	if err != nil {
		return Outline{}, false, fmt.Errorf("planning structure: %w", err)
	}

	outline, err := parseOutline(raw, prompt)
	if err != nil {
		if errors.Is(err, ErrEmptyResponse) || errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrInvalidStructure) {
			return FallbackOutline(prompt), true, nil
		}
		return Outline{}, false, err
	}

	return outline, false, nil
}

// parseOutline decodes and validates a raw outline response.
func parseOutline(raw, prompt string) (Outline, error) {
	var outline Outline
	if err := ParseModelJSON(raw, &outline); err != nil {
		return Outline{}, err
	}

	if strings.TrimSpace(outline.Title) == "" || len(outline.Sections) == 0 {
		return Outline{}, fmt.Errorf("%w: missing title or sections", ErrInvalidStructure)
	}

	if outline.ContentPrompt == "" {
		outline.ContentPrompt = prompt
	}
	return outline, nil
}

func buildPlannerPrompt(prompt string, files []FileRef, cfg Config) string {
	var sb strings.Builder

	sb.WriteString("Design the structure of an illustrated study notebook for the following topic.\n\n")
	sb.WriteString("Topic: ")
	sb.WriteString(prompt)
	sb.WriteString("\n")

	if names := fileNames(files); len(names) > 0 {
		sb.WriteString("The user attached these files for context (names only): ")
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, `
Respond with exactly one JSON object of this shape:
{
  "title": "notebook title",
  "sections": [
    {
      "heading": "section heading",
      "subsections": ["subsection", "..."],
      "contentTypes": ["paragraph" | "points" | "code"],
      "imagePrompts": ["illustration description", "..."],
      "imagePositions": [0]
    }
  ],
  "totalImages": 0,
  "contentPrompt": "guidance for writing the full body"
}

Rules:
- 3 to 6 sections, each with 2 to 5 subsections.
- 0 to %d imagePrompts per section; at most %d images in total.
- Pick contentTypes per section: tutorials and lists get "points",
  technical or programming material gets "code", explanatory or
  theoretical material gets "paragraph".
- Output raw JSON only.
`, cfg.MaxImagesPerSection, cfg.MaxImages)

	return sb.String()
}

func fileNames(files []FileRef) []string {
	var names []string
	for _, f := range files {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

// flattenImagePrompts collects the outline's image prompts in section order,
// applying the per-section and global caps.
func flattenImagePrompts(outline Outline, cfg Config) []string {
	var prompts []string
	for _, section := range outline.Sections {
		sectionPrompts := section.ImagePrompts
		if cfg.MaxImagesPerSection > 0 && len(sectionPrompts) > cfg.MaxImagesPerSection {
			sectionPrompts = sectionPrompts[:cfg.MaxImagesPerSection]
		}
		for _, prompt := range sectionPrompts {
			if strings.TrimSpace(prompt) == "" {
				continue
			}
			prompts = append(prompts, prompt)
			if cfg.MaxImages > 0 && len(prompts) >= cfg.MaxImages {
				return prompts
			}
		}
	}
	return prompts
}
