// llm — провайдеры генерации текста для обогащения новостей и ассистента.
// Все провайдеры реализуют news.TextGenerator и assistant.TextGenerator.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pribylovaa/web3-hub/internal/config"
	"github.com/pribylovaa/web3-hub/internal/prompt"
)

var (
	// ErrNoAPIKey — ключ провайдера не задан.
	ErrNoAPIKey = errors.New("llm api key is not configured")
	// ErrEmptyResponse — провайдер ответил без текста.
	ErrEmptyResponse = errors.New("llm returned empty response")
	// ErrRateLimited — провайдер вернул 429.
	ErrRateLimited = errors.New("llm rate limited")
)

// Generator — общий контракт провайдеров.
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// New выбирает провайдера по cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, timeout time.Duration) (Generator, error) {
	const op = "llm.New"

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: %s: %w", op, cfg.Provider, ErrNoAPIKey)
	}

	httpClient := &http.Client{Timeout: timeout}

	switch cfg.Provider {
	case config.ProviderGroq, "":
		return NewGroq(cfg, httpClient), nil
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg, httpClient)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return g, nil
	case config.ProviderCohere:
		return NewCohere(cfg, httpClient), nil
	default:
		return nil, fmt.Errorf("%s: unknown provider %q", op, cfg.Provider)
	}
}

// withDeadline ставит таймаут клиента, если у ctx своего дедлайна нет.
func withDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || timeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, timeout)
}
