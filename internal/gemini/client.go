package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// ErrNoImage is returned when a generation response completes without any
// inline image part. Callers treat the affected prompt as skipped.
var ErrNoImage = errors.New("no image data in model response")

// Client wraps the genai SDK with the two call shapes the pipeline needs.
type Client struct {
	client      *genai.Client
	textModel   string
	imageModel  string
	temperature float32
}

// NewClient builds a Gemini client. The API key must be non-empty; the
// caller is expected to have resolved it from the environment already.
func NewClient(ctx context.Context, apiKey, textModel, imageModel string, temperature float32) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}

	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Client{
		client:      c,
		textModel:   textModel,
		imageModel:  imageModel,
		temperature: temperature,
	}, nil
}

// GenerateText issues a single text-generation call and returns the
// concatenated text parts of the first candidate.
func (c *Client) GenerateText(ctx context.Context, prompt, system string, maxOutputTokens int32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		TopP:            genai.Ptr[float32](0.95),
		TopK:            genai.Ptr[float32](40),
		MaxOutputTokens: maxOutputTokens,
		SafetySettings:  defaultSafetySettings(),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.textModel, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, part := range candidateParts(resp) {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// GenerateImage issues an image-generation call and returns the first inline
// image payload. Returns ErrNoImage when the response carries only text.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(c.temperature),
		ResponseModalities: []string{"TEXT", "IMAGE"},
		SafetySettings:     defaultSafetySettings(),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.imageModel, genai.Text(prompt), config)
	if err != nil {
		return nil, "", err
	}

	for _, part := range candidateParts(resp) {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 && part.InlineData.MIMEType != "" {
			return part.InlineData.Data, part.InlineData.MIMEType, nil
		}
	}
	return nil, "", ErrNoImage
}

// candidateParts returns the content parts of the first candidate, or nil.
func candidateParts(resp *genai.GenerateContentResponse) []*genai.Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil
	}
	return candidate.Content.Parts
}

func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
	}
}
