package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/cohere-ai/cohere-go/v2/option"

	"github.com/pribylovaa/web3-hub/internal/config"
	"github.com/pribylovaa/web3-hub/internal/prompt"
)

const cohereModel = "command-r-plus"

// Cohere — провайдер на cohere-go/v2 (Chat с preamble).
type Cohere struct {
	client      *cohereclient.Client
	model       string
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewCohere создаёт клиента Cohere.
func NewCohere(cfg config.LLMConfig, httpClient *http.Client) *Cohere {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	opts := []option.RequestOption{
		cohereclient.WithToken(cfg.APIKey),
		cohereclient.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, cohereclient.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = cohereModel
	}

	return &Cohere{
		client:      cohereclient.NewClient(opts...),
		model:       model,
		maxTokens:   int(cfg.MaxTokens),
		temperature: float64(cfg.Temperature),
		timeout:     httpClient.Timeout,
	}
}

// Generate вызывает Chat: System уходит в preamble, User — в message.
func (c *Cohere) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	const op = "llm.Cohere.Generate"

	ctx, cancel := withDeadline(ctx, c.timeout)
	defer cancel()

	req := &cohere.ChatRequest{
		Message:     p.User,
		Model:       &c.model,
		Temperature: &c.temperature,
	}
	if c.maxTokens > 0 {
		req.MaxTokens = &c.maxTokens
	}
	if p.System != "" {
		req.Preamble = &p.System
	}

	resp, err := c.client.Chat(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}

	return text, nil
}
