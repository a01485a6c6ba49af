package imagegen

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Part is one piece of an image-model response. Data is empty for text parts.
type Part struct {
	MIMEType string
	Data     []byte
	Text     string
}

// ImageProvider runs one single-prompt image generation request.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) ([]Part, error)
}

// GeminiImageProvider implements ImageProvider with the Gemini image models.
type GeminiImageProvider struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiImageProvider creates a client for the Gemini API backend.
func NewGeminiImageProvider(ctx context.Context, apiKey, model string) (*GeminiImageProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini image client: %w", err)
	}
	return &GeminiImageProvider{client: client, model: model, temperature: 0.7}, nil
}

// GenerateImage asks for both image and text modalities; the model refuses
// image-only output for some prompts.
func (p *GeminiImageProvider) GenerateImage(ctx context.Context, prompt string) ([]Part, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		Temperature:        genai.Ptr(p.temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini image generation error: %w", err)
	}
	return partsFromResponse(resp), nil
}

func partsFromResponse(resp *genai.GenerateContentResponse) []Part {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return nil
	}

	parts := make([]Part, 0, len(cand.Content.Parts))
	for _, p := range cand.Content.Parts {
		if p == nil {
			parts = append(parts, Part{})
			continue
		}
		out := Part{Text: p.Text}
		if p.InlineData != nil {
			out.MIMEType = p.InlineData.MIMEType
			out.Data = p.InlineData.Data
		}
		parts = append(parts, out)
	}
	return parts
}
