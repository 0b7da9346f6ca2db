package llm

import (
	"context"
	"log"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It only focuses on the API call itself; rate limiting is the single
// cross-cutting concern it carries, via an optional token-bucket limiter.
type GeminiClient struct {
	cli   *genai.Client
	model string
	rl    *rpsLimiter
}

// NewGeminiClient builds a client for the given model.
// NOTE: apiKey may be empty; the genai client also reads GEMINI_API_KEY
// from the environment. The parameter keeps the factory signature stable.
func NewGeminiClient(ctx context.Context, apiKey, model string, rps float64, burst int) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if strings.TrimSpace(apiKey) != "" {
		cfg.APIKey = strings.TrimSpace(apiKey)
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model, rl: newRPSLimiter(rps, burst)}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }

func (g *GeminiClient) Close() error {
	if g.rl != nil {
		g.rl.Stop()
	}
	return nil
}

// contents renders the prompt as genai parts, image part first.
func contents(p Prompt) []*genai.Content {
	parts := make([]*genai.Part, 0, 2)
	if p.Image != nil {
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{
			MIMEType: p.Image.MIMEType,
			Data:     p.Image.Data,
		}})
	}
	parts = append(parts, &genai.Part{Text: p.Text})
	return []*genai.Content{{Parts: parts}}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

// GenerateJSON sends the prompt and requests application/json back.
func (g *GeminiClient) GenerateJSON(ctx context.Context, p Prompt) (string, error) {
	if err := g.rl.Acquire(ctx); err != nil {
		return "", err
	}
	log.Printf("LLM request (%s): %d bytes, image=%v", g.model, len(p.Text), p.Image != nil)

	resp, err := g.cli.Models.GenerateContent(ctx, g.model, contents(p),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	)
	if err != nil {
		return "", err
	}
	txt := responseText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

// GenerateJSONStream streams fragments to onFragment and returns the
// full concatenated text once the model finishes.
func (g *GeminiClient) GenerateJSONStream(ctx context.Context, p Prompt, onFragment func(fragment string)) (string, error) {
	if err := g.rl.Acquire(ctx); err != nil {
		return "", err
	}
	log.Printf("LLM stream request (%s): %d bytes, image=%v", g.model, len(p.Text), p.Image != nil)

	var full strings.Builder
	for resp, err := range g.cli.Models.GenerateContentStream(ctx, g.model, contents(p),
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	) {
		if err != nil {
			return "", err
		}
		txt := responseText(resp)
		if txt == "" {
			continue
		}
		full.WriteString(txt)
		if onFragment != nil {
			onFragment(txt)
		}
	}
	if full.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return full.String(), nil
}

// GenerateText sends a plain-text prompt without the JSON MIME hint.
// Used by the assistant chat, where free-form prose is the point.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := g.rl.Acquire(ctx); err != nil {
		return "", err
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, nil,
	)
	if err != nil {
		return "", err
	}
	txt := responseText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}
