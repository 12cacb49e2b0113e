// assistant — AI-инструменты дашборда, доступные только кошелькам с достаточным балансом.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/internal/prompt"
	"github.com/pribylovaa/web3-hub/pkg/log"
)

var (
	// ErrWalletRequired — адрес кошелька не передан.
	// Транспорт: 401.
	ErrWalletRequired = errors.New("connect wallet")
	// ErrAccessDenied — баланса не хватает для фичи.
	// Транспорт: 403.
	ErrAccessDenied = errors.New("insufficient credits")
	// ErrInvalidInput — пустой или слишком длинный ввод.
	// Транспорт: 400.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable — генератор текста не настроен.
	// Транспорт: 503.
	ErrUnavailable = errors.New("assistant is not configured")
)

// Ограничения ввода, в символах.
const (
	maxMessage     = 4000
	maxDescription = 4000
	maxSource      = 50000
	maxSymbol      = 16
	maxHistory     = 20
)

// DeniedError несёт решение о доступе; errors.Is(err, ErrAccessDenied) == true.
type DeniedError struct {
	Access models.FeatureAccess
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s requires %d, have %s",
		ErrAccessDenied, e.Access.Feature, e.Access.RequiredCredits, e.Access.CurrentCredits)
}

func (e *DeniedError) Unwrap() error { return ErrAccessDenied }

// AccessChecker — решение о доступе к фиче (реализует access.Evaluator).
type AccessChecker interface {
	CheckFeatureAccess(ctx context.Context, address string, feature models.Feature) models.FeatureAccess
}

// TextGenerator — провайдер LLM.
type TextGenerator interface {
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// MarketData — котировка монеты для торгового ассистента.
//
//go:generate mockgen -destination=../../mocks/market.go -package=mocks github.com/pribylovaa/web3-hub/internal/assistant MarketData
type MarketData interface {
	Quote(ctx context.Context, symbol string) (models.Coin, error)
}

// Service — gated-инструменты: чат, генерация и аудит контрактов, торговые советы.
type Service struct {
	access    AccessChecker
	generator TextGenerator
	market    MarketData
}

// New создаёт Service. market может быть nil: тогда советы строятся без котировки.
func New(access AccessChecker, generator TextGenerator, market MarketData) *Service {
	return &Service{access: access, generator: generator, market: market}
}

// Chat — ответ Web3-ассистента с учётом истории (последние 20 реплик).
func (s *Service) Chat(ctx context.Context, address, message string, history []prompt.ChatTurn) (string, error) {
	const op = "assistant.Service.Chat"

	if err := s.authorize(ctx, address, models.FeatureChatbot); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	message = strings.TrimSpace(message)
	if err := checkText("message", message, maxMessage); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	turns, err := normalizeHistory(history)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.run(ctx, op, prompt.Chat, prompt.ChatVars{Message: message, History: turns})
}

// GenerateContract — Solidity-контракт по описанию. kind — необязательный тип (erc20, erc721, ...).
func (s *Service) GenerateContract(ctx context.Context, address, description, kind string) (string, error) {
	const op = "assistant.Service.GenerateContract"

	if err := s.authorize(ctx, address, models.FeatureSmartContractGenerator); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	description = strings.TrimSpace(description)
	if err := checkText("description", description, maxDescription); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.run(ctx, op, prompt.ContractGenerate, prompt.ContractVars{
		Description: description,
		Kind:        strings.TrimSpace(kind),
	})
}

// AuditContract — отчёт о проблемах безопасности в исходнике контракта.
func (s *Service) AuditContract(ctx context.Context, address, source string) (string, error) {
	const op = "assistant.Service.AuditContract"

	if err := s.authorize(ctx, address, models.FeatureSmartContractGenerator); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	source = strings.TrimSpace(source)
	if err := checkText("source", source, maxSource); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.run(ctx, op, prompt.ContractAudit, prompt.ContractVars{Source: source})
}

// TradeAdvice — обзор по тикеру. Котировка подмешивается в запрос, если её удалось получить.
func (s *Service) TradeAdvice(ctx context.Context, address, symbol string) (string, error) {
	const op = "assistant.Service.TradeAdvice"

	if err := s.authorize(ctx, address, models.FeatureTradeAssistant); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := checkText("symbol", symbol, maxSymbol); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	vars := prompt.TradeVars{Symbol: symbol}
	if s.market != nil {
		coin, err := s.market.Quote(ctx, symbol)
		if err != nil {
			log.From(ctx).Warn("quote_lookup_failed",
				slog.String("op", op),
				slog.String("symbol", symbol),
				slog.String("err", err.Error()),
			)
		} else {
			vars.Market = snapshot(coin)
		}
	}

	return s.run(ctx, op, prompt.TradeAdvice, vars)
}

// authorize — кошелёк обязателен, баланс должен покрывать порог фичи.
func (s *Service) authorize(ctx context.Context, address string, feature models.Feature) error {
	if strings.TrimSpace(address) == "" {
		return ErrWalletRequired
	}

	decision := s.access.CheckFeatureAccess(ctx, address, feature)
	if !decision.HasAccess {
		return &DeniedError{Access: decision}
	}

	return nil
}

func (s *Service) run(ctx context.Context, op, name string, vars any) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	p, err := prompt.Render(name, vars)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	text, err := s.generator.Generate(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s: generate: %w", op, err)
	}

	return text, nil
}

func checkText(field, v string, max int) error {
	if v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, field, max)
	}

	return nil
}

// normalizeHistory оставляет последние maxHistory реплик с ролями user/assistant.
func normalizeHistory(in []prompt.ChatTurn) ([]prompt.ChatTurn, error) {
	if len(in) > maxHistory {
		in = in[len(in)-maxHistory:]
	}

	out := make([]prompt.ChatTurn, 0, len(in))
	for _, t := range in {
		role := strings.ToLower(strings.TrimSpace(t.Role))
		if role != "user" && role != "assistant" {
			return nil, fmt.Errorf("%w: history role %q", ErrInvalidInput, t.Role)
		}

		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		if err := checkText("history content", content, maxMessage); err != nil {
			return nil, err
		}

		out = append(out, prompt.ChatTurn{Role: role, Content: content})
	}

	return out, nil
}

func snapshot(c models.Coin) string {
	return fmt.Sprintf("%s (%s) rank #%d, price $%.4f, 24h %+.2f%%, market cap $%.0f, 24h volume $%.0f",
		c.Name, c.Symbol, c.Rank, c.PriceUSD, c.PercentChange24h, c.MarketCapUSD, c.Volume24hUSD)
}
