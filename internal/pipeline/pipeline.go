package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"noteforge/quill/internal/gemini"
)

// Pipeline runs the prompt → outline → illustrations → body → structured
// notebook sequence. Each run allocates fresh state; a Pipeline holds no
// per-run mutable fields and two concurrent runs only race on the caller's
// progress sink and storage, never on pipeline state.
type Pipeline struct {
	gen      Generator
	cfg      Config
	progress ProgressFunc
	sleepFn  func(time.Duration)
}

// New builds a Pipeline. progress may be nil.
func New(gen Generator, cfg Config, progress ProgressFunc) *Pipeline {
	return &Pipeline{gen: gen, cfg: cfg, progress: progress}
}

func (p *Pipeline) report(stage string) {
	if p.progress != nil {
		p.progress(stage)
	}
}

// Generate turns a prompt (plus optional attachment descriptors) into a
// fully assembled notebook. Stages run strictly in sequence; the only
// suspension points are the retried network calls and the inter-image
// pacing delay.
func (p *Pipeline) Generate(ctx context.Context, prompt string, files []FileRef) (*Notebook, error) {
	p.report("Analyzing your prompt...")

	outline, fromFallback, err := p.planStructure(ctx, prompt, files)
	if err != nil {
		return nil, p.finalizeError(err)
	}
	if fromFallback {
		p.report("Using a heuristic outline (the model response was unusable)")
	} else {
		p.report(fmt.Sprintf("Planned %d sections for %q", len(outline.Sections), outline.Title))
	}

	var images []GeneratedImage
	prompts := flattenImagePrompts(outline, p.cfg)
	if len(prompts) > 0 {
		p.report(fmt.Sprintf("Generating %d illustrations...", len(prompts)))
		images, _ = p.generateImages(ctx, prompts)
	}

	p.report("Writing the notebook body...")
	body, err := p.writeContent(ctx, outline, images, fromFallback)
	if err != nil {
		return nil, p.finalizeError(err)
	}

	p.report("Structuring content...")
	content := StructureContent(body, images, outline, p.cfg.PlacementInterval)

	p.report("Assembling notebook...")
	return p.assemble(outline, content, images, body), nil
}

// Refine re-submits an existing notebook with an optional instruction and
// reassembles the result, reusing the notebook's valid images rather than
// generating new ones. The input notebook is never mutated.
func (p *Pipeline) Refine(ctx context.Context, nb *Notebook, instruction string) (*Notebook, error) {
	p.report("Preparing refinement...")

	prompt := buildRefinementPrompt(nb, instruction)
	raw, err := withRetry(ctx, p.cfg, func() (string, error) {
		return p.gen.GenerateText(ctx, prompt, "", p.cfg.MaxOutputTokens)
	})
	if err != nil {
		return nil, p.finalizeError(fmt.Errorf("refining notebook: %w", err))
	}

	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyContent
	}
	body := stripRefinementPrefixes(cleanGeneratedText(raw))
	if len(strings.TrimSpace(body)) < p.cfg.MinContentLength {
		return nil, ErrIncompleteContent
	}

	// Carry existing valid images forward under fresh batch-unique ids.
	var carried []GeneratedImage
	for _, item := range nb.Content {
		if item.Type != ItemImage {
			continue
		}
		img := GeneratedImage{
			ID:         fmt.Sprintf("img_refined_%d", len(carried)),
			Prompt:     item.Content,
			Position:   len(carried),
			Base64Data: item.ImageData,
			MIMEType:   item.MIMEType,
		}
		if img.Valid() {
			carried = append(carried, img)
		}
	}

	p.report("Structuring refined content...")
	content := StructureContent(body, carried, nb.Structure, p.cfg.PlacementInterval)

	p.report("Assembling notebook...")
	refined := p.assemble(nb.Structure, content, carried, body)
	refined.Title = nb.Title
	return refined, nil
}

// assemble builds the final notebook record. TotalImages counts only valid
// images; WordCount is the whitespace-token count of the raw body.
func (p *Pipeline) assemble(outline Outline, content []ContentItem, images []GeneratedImage, body string) *Notebook {
	return &Notebook{
		ID:          uuid.New().String(),
		Title:       outline.Title,
		Structure:   outline,
		Content:     content,
		CreatedAt:   time.Now(),
		TotalImages: len(ValidImages(images)),
		WordCount:   len(strings.Fields(body)),
	}
}

// finalizeError is the single reclassification pass before surfacing a
// pipeline failure: quota conditions get their distinguished error so the
// caller can render a dedicated message.
func (p *Pipeline) finalizeError(err error) error {
	if gemini.Classify(err) == gemini.KindQuota {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}
	return err
}

// buildRefinementPrompt flattens the notebook back to a line-oriented text
// representation and asks the model to re-emit the same marker vocabulary.
func buildRefinementPrompt(nb *Notebook, instruction string) string {
	var sb strings.Builder

	if strings.TrimSpace(instruction) == "" {
		sb.WriteString("Improve the overall quality, clarity, and depth of these study notes.\n")
	} else {
		fmt.Fprintf(&sb, "Revise these study notes according to this instruction: %s\n", instruction)
	}
	sb.WriteString("Preserve the existing section structure and keep every image reference in place.\n\n")
	sb.WriteString("Current notes:\n")
	sb.WriteString(FlattenContent(nb.Content))
	sb.WriteString("\n\n")
	sb.WriteString(markerInstructions)
	return sb.String()
}

// stripRefinementPrefixes undoes the type prefixes a model tends to echo
// back from the flattened representation. IMAGE lines are dropped entirely;
// the carried images are re-placed by the structurer.
func stripRefinementPrefixes(body string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	inCode := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "CODE_BLOCK_START:") {
			inCode = true
		} else if trimmed == "CODE_BLOCK_END" {
			inCode = false
		}
		if inCode {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(trimmed, "IMAGE: ") {
			continue
		}
		if rest, ok := strings.CutPrefix(trimmed, "HEADING: "); ok {
			line = rest
		} else if rest, ok := strings.CutPrefix(trimmed, "SUBHEADING: "); ok {
			line = rest
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// FlattenContent renders structured content back to the line-oriented form
// used for refinement prompts.
func FlattenContent(content []ContentItem) string {
	var sb strings.Builder
	for _, item := range content {
		switch item.Type {
		case ItemHeading:
			fmt.Fprintf(&sb, "HEADING: %s\n", item.Content)
		case ItemSubheading:
			fmt.Fprintf(&sb, "SUBHEADING: %s\n", item.Content)
		case ItemPoints:
			for _, point := range item.Points {
				fmt.Fprintf(&sb, "BULLET_POINT: %s\n", point)
			}
		case ItemCode:
			fmt.Fprintf(&sb, "CODE_BLOCK_START:%s\n%s\nCODE_BLOCK_END\n", item.Language, item.Content)
		case ItemImage:
			fmt.Fprintf(&sb, "IMAGE: %s\n", item.Content)
		default:
			sb.WriteString(item.Content)
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}
