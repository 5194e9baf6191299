package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"noteforge/quill/internal/gemini"
)

const illustrationTemplate = "Create a professional educational illustration for study notes: %s. " +
	"Clean modern style, clear subject, no text overlays or watermarks."

// generateImages runs the outline's image prompts in order. Failed prompts
// are simply absent from the result; a quota-exhaustion error trips a
// circuit breaker that skips every remaining prompt. The returned bool
// reports whether the breaker tripped.
//
// Callers must treat the result as partial and recompute valid-image counts
// via GeneratedImage.Valid rather than trusting its length.
func (p *Pipeline) generateImages(ctx context.Context, prompts []string) ([]GeneratedImage, bool) {
	var images []GeneratedImage
	quotaHit := false

	for i, prompt := range prompts {
		if quotaHit {
			break
		}

		styled := fmt.Sprintf(illustrationTemplate, prompt)

		type payload struct {
			data []byte
			mime string
		}
		result, err := withRetry(ctx, p.cfg, func() (payload, error) {
			data, mime, err := p.gen.GenerateImage(ctx, styled)
			return payload{data: data, mime: mime}, err
		})

		switch {
		case err == nil && len(result.data) > 0 && result.mime != "":
			images = append(images, GeneratedImage{
				ID:         fmt.Sprintf("img_%d", i),
				Prompt:     prompt,
				Position:   i,
				Base64Data: dataURI(result.data, result.mime),
				MIMEType:   result.mime,
			})
		case err != nil && gemini.Classify(err) == gemini.KindQuota:
			p.report(fmt.Sprintf("Image quota exhausted, continuing with %d of %d illustrations", len(images), len(prompts)))
			quotaHit = true
		default:
			// Permission, invalid-key, or no-image failures skip this one
			// prompt; the rest of the batch still runs.
			p.report(fmt.Sprintf("Skipping illustration %d of %d", i+1, len(prompts)))
		}

		if !quotaHit && i < len(prompts)-1 && p.cfg.ImageDelay > 0 {
			p.sleep(p.cfg.ImageDelay)
		}
	}

	return images, quotaHit
}

func dataURI(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// sleep pauses between image calls. Swapped out in tests.
func (p *Pipeline) sleep(d time.Duration) {
	if p.sleepFn != nil {
		p.sleepFn(d)
		return
	}
	time.Sleep(d)
}
