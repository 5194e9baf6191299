package pipeline

import "time"

// Config carries every tunable the pipeline consults. Nothing here is
// ambient: tests override pacing and limits without timing hacks.
type Config struct {
	TextModel  string
	ImageModel string

	// MaxImages caps the total illustrations per notebook.
	MaxImages int
	// MaxImagesPerSection caps the image prompts taken from any one section.
	MaxImagesPerSection int
	// ImageDelay is the fixed pause between successive image calls.
	ImageDelay time.Duration

	// RetryAttempts is the total attempt cap per outbound call.
	RetryAttempts int
	// RetryBaseDelay is the first backoff interval; it doubles per attempt
	// with jitter.
	RetryBaseDelay time.Duration

	// PlacementInterval places an image after every n-th plain text block.
	// Zero disables interleaving (images still appended at the end).
	PlacementInterval int

	// MinContentLength is the shortest body accepted as a real notebook.
	MinContentLength int

	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		TextModel:           "gemini-2.5-flash",
		ImageModel:          "gemini-2.5-flash-image-preview",
		MaxImages:           5,
		MaxImagesPerSection: 3,
		ImageDelay:          3 * time.Second,
		RetryAttempts:       3,
		RetryBaseDelay:      time.Second,
		PlacementInterval:   3,
		MinContentLength:    50,
		Temperature:         0.7,
		MaxOutputTokens:     8192,
	}
}
