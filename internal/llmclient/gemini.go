package llmclient

import (
	"context"
	"encoding/json"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client. It focuses
// on the API call itself; retry and error-to-user mapping live in the
// analysis pipeline.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	// The genai client falls back to GEMINI_API_KEY from the environment
	// when APIKey is empty.
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// GenerateJSON sends the prompt plus inline images, asks for
// application/json constrained by req.Schema when present, and returns the
// model's JSON untouched.
func (g *GeminiClient) GenerateJSON(ctx context.Context, req Request) (json.RawMessage, error) {
	parts := make([]*genai.Part, 0, 1+len(req.Images))
	parts = append(parts, &genai.Part{Text: req.Prompt})
	for _, img := range req.Images {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{
			MIMEType: img.MIMEType,
			Data:     img.Data,
		}})
	}

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	if req.Schema != nil {
		cfg.ResponseSchema = req.Schema
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: parts}}, cfg)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, ErrEmptyResponse
	}
	txt := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if txt == "" {
		return nil, ErrEmptyResponse
	}
	return json.RawMessage(txt), nil
}
