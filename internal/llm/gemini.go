package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/pribylovaa/web3-hub/internal/config"
	"github.com/pribylovaa/web3-hub/internal/prompt"
)

const geminiModel = "gemini-2.0-flash"

// Gemini — провайдер на google.golang.org/genai.
type Gemini struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
}

// NewGemini создаёт клиента Gemini API. cfg.BaseURL, если задан, переопределяет endpoint.
func NewGemini(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (*Gemini, error) {
	const op = "llm.NewGemini"

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	model := cfg.Model
	if model == "" {
		model = geminiModel
	}

	return &Gemini{
		client:      client,
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     httpClient.Timeout,
	}, nil
}

// Generate вызывает Models.GenerateContent с системной инструкцией.
func (g *Gemini) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	const op = "llm.Gemini.Generate"

	ctx, cancel := withDeadline(ctx, g.timeout)
	defer cancel()

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.temperature),
	}
	if g.maxTokens > 0 {
		gc.MaxOutputTokens = g.maxTokens
	}
	if p.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(p.User), gc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	return text, nil
}
