package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/you/emrsvc/domain"
	"google.golang.org/genai"
)

// GeminiGenerator implements domain.TextGenerator on the Gemini API
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiGenerator creates the generator. An empty API key yields a
// generator whose every call fails with domain.ErrGeneratorUnavailable.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (domain.TextGenerator, error) {
	if apiKey == "" {
		return unavailable{}, nil
	}
	return newGemini(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model, timeout)
}

func newGemini(ctx context.Context, cfg *genai.ClientConfig, model string, timeout time.Duration) (*GeminiGenerator, error) {
	if model == "" {
		model = "gemini-1.5-pro"
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model, timeout: timeout}, nil
}

// Generate implements domain.TextGenerator
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Image != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Image.Data, req.Image.MimeType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	config := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		MaxOutputTokens: req.MaxOutputTokens,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("GenAI returned an empty response")
	}
	return text, nil
}

type unavailable struct{}

func (unavailable) Generate(context.Context, domain.GenerationRequest) (string, error) {
	return "", domain.ErrGeneratorUnavailable
}
