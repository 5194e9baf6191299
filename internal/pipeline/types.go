package pipeline

import (
	"context"
	"strings"
	"time"
)

// Outline is the planner's structured table of contents for a notebook,
// produced before the full body is generated. It is immutable after creation
// and copied unchanged into the final notebook.
type Outline struct {
	Title         string    `json:"title"`
	Sections      []Section `json:"sections"`
	TotalImages   int       `json:"totalImages"`
	ContentPrompt string    `json:"contentPrompt"`
}

// Section is one planned chapter of the outline.
type Section struct {
	Heading        string   `json:"heading"`
	Subsections    []string `json:"subsections"`
	ContentTypes   []string `json:"contentTypes"`
	ImagePrompts   []string `json:"imagePrompts"`
	ImagePositions []int    `json:"imagePositions"`
}

// PlaceholderMIME marks an image record that never received real image data.
// The current generation path drops failed prompts instead of recording
// placeholders, but the predicate is applied everywhere counts matter so a
// sentinel-producing source stays compatible.
const PlaceholderMIME = "image/placeholder"

// GeneratedImage is one illustration produced for an outline image prompt.
type GeneratedImage struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Position   int    `json:"position"`
	Base64Data string `json:"base64Data"`
	MIMEType   string `json:"mimeType"`
}

// Valid reports whether the image holds a real encoded payload rather than a
// failure sentinel.
func (g GeneratedImage) Valid() bool {
	return g.MIMEType != PlaceholderMIME && strings.HasPrefix(g.Base64Data, "data:")
}

// ValidImages filters a batch down to images passing the Valid predicate.
func ValidImages(images []GeneratedImage) []GeneratedImage {
	var valid []GeneratedImage
	for _, img := range images {
		if img.Valid() {
			valid = append(valid, img)
		}
	}
	return valid
}

// ItemType tags one entry of a notebook's ordered content sequence.
type ItemType string

const (
	ItemText       ItemType = "text"
	ItemHeading    ItemType = "heading"
	ItemSubheading ItemType = "subheading"
	ItemPoints     ItemType = "points"
	ItemCode       ItemType = "code"
	ItemImage      ItemType = "image"
)

// ContentItem is one typed block of notebook content. Order is zero-based
// and strictly increasing within a notebook; it defines the unique rendering
// sequence.
type ContentItem struct {
	Type      ItemType `json:"type"`
	Content   string   `json:"content"`
	Order     int      `json:"order"`
	Points    []string `json:"points,omitempty"`
	Language  string   `json:"language,omitempty"`
	ImageData string   `json:"imageData,omitempty"`
	MIMEType  string   `json:"mimeType,omitempty"`
}

// Notebook is the assembled result of one generation or refinement run.
type Notebook struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Structure   Outline       `json:"structure"`
	Content     []ContentItem `json:"content"`
	CreatedAt   time.Time     `json:"createdAt"`
	TotalImages int           `json:"totalImages"`
	WordCount   int           `json:"wordCount"`
}

// FileRef describes an attachment supplied alongside the prompt. Only Name
// is ever forwarded to the model; contents are never read.
type FileRef struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	URI      string `json:"uri"`
}

// Generator is the outbound model surface the pipeline depends on. The
// production implementation is internal/gemini.Client; tests inject fakes.
type Generator interface {
	// GenerateText issues one text-generation call and returns the raw body.
	GenerateText(ctx context.Context, prompt, system string, maxOutputTokens int32) (string, error)
	// GenerateImage issues one image-generation call and returns the inline
	// payload bytes and their MIME type.
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
}

// ProgressFunc receives human-readable stage descriptions as the pipeline
// advances. Purely observational; no control-flow impact.
type ProgressFunc func(stage string)
