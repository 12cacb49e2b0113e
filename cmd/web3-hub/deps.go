package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/web3-hub/internal/access"
	"github.com/pribylovaa/web3-hub/internal/cache"
	"github.com/pribylovaa/web3-hub/internal/chain"
	"github.com/pribylovaa/web3-hub/internal/config"
	"github.com/pribylovaa/web3-hub/internal/llm"
	"github.com/pribylovaa/web3-hub/internal/metrics"
	"github.com/pribylovaa/web3-hub/internal/news"
	"github.com/pribylovaa/web3-hub/internal/rss"
)

// errNoToken — без адреса токена проверки доступа невозможны.
var errNoToken = errors.New("chain.token_address (TOKEN_ADDRESS) is required")

// buildEvaluator подключается к RPC-узлу и собирает access.Evaluator.
func buildEvaluator(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*access.Evaluator, func(), error) {
	if cfg.Chain.TokenAddress == "" {
		return nil, nil, errNoToken
	}

	reader, err := chain.Dial(ctx, cfg.Chain.RPCURL, cfg.Chain.TokenAddress, cfg.Timeouts.RPC)
	if err != nil {
		return nil, nil, err
	}

	return access.New(reader, cfg.Credits, m), reader.Close, nil
}

// buildGenerator возвращает nil без ключа: пайплайн пишет заглушки, ассистент отвечает 503.
func buildGenerator(ctx context.Context, cfg *config.Config, log *slog.Logger) (llm.Generator, error) {
	gen, err := llm.New(ctx, cfg.LLM, cfg.Timeouts.LLM)
	if errors.Is(err, llm.ErrNoAPIKey) {
		log.Warn("llm_disabled", slog.String("provider", cfg.LLM.Provider), slog.String("err", err.Error()))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	log.Info("llm_ready", slog.String("provider", cfg.LLM.Provider))
	return gen, nil
}

// buildPipeline собирает пайплайн новостей вместе с кэшем.
func buildPipeline(ctx context.Context, cfg *config.Config, gen llm.Generator, m *metrics.Metrics) (*news.Pipeline, func(), error) {
	store, err := cache.Open(ctx, cfg.Cache)
	if err != nil {
		return nil, nil, fmt.Errorf("cache: %w", err)
	}

	fetcher := rss.New(&http.Client{Timeout: cfg.Timeouts.Feed})

	p := news.New(fetcher, gen, store, cfg.News, m)
	return p, func() { _ = store.Close() }, nil
}
