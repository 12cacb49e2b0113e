// access решает, какие фичи доступны кошельку, по балансу его токена.
package access

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/big"
	"strings"

	"github.com/pribylovaa/web3-hub/internal/chain"
	"github.com/pribylovaa/web3-hub/internal/config"
	"github.com/pribylovaa/web3-hub/internal/metrics"
	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/pkg/log"
	"github.com/pribylovaa/web3-hub/pkg/redact"
)

// Причины деградации проверки в нулевой баланс (лейбл метрики).
const (
	reasonInvalidAddress = "invalid_address"
	reasonLookupFailed   = "balance_lookup_failed"
	reasonParseFailed    = "balance_parse_failed"
	reasonUnknownFeature = "unknown_feature"
)

// BalanceReader — источник баланса токена.
// Возвращает человекочитаемое десятичное число ("12.5"), уже поделённое на 10^decimals.
//
//go:generate mockgen -destination=../../mocks/balance_reader.go -package=mocks github.com/pribylovaa/web3-hub/internal/access BalanceReader
type BalanceReader interface {
	TokenBalance(ctx context.Context, address string) (string, error)
}

// Evaluator сравнивает баланс кошелька с порогами фич.
//
// Особенности:
//   - никогда не возвращает ошибку: любой сбой чтения баланса трактуется как 0;
//   - невалидный адрес не доходит до RPC;
//   - пороги неизменны на время жизни процесса.
type Evaluator struct {
	balances   BalanceReader
	thresholds map[models.Feature]int64
	metrics    *metrics.Metrics
}

// New создаёт Evaluator. m может быть nil.
func New(balances BalanceReader, credits config.CreditsConfig, m *metrics.Metrics) *Evaluator {
	return &Evaluator{
		balances:   balances,
		thresholds: credits.Thresholds(),
		metrics:    m,
	}
}

// Threshold возвращает порог фичи и признак того, что фича известна.
func (e *Evaluator) Threshold(feature models.Feature) (int64, bool) {
	v, ok := e.thresholds[feature]
	return v, ok
}

// CheckFeatureAccess — решение по одной фиче.
func (e *Evaluator) CheckFeatureAccess(ctx context.Context, address string, feature models.Feature) models.FeatureAccess {
	return e.decide(ctx, feature, e.balance(ctx, address))
}

// CheckMultipleFeatures — решения по списку фич при одном чтении баланса.
// Порядок результата совпадает с порядком features.
func (e *Evaluator) CheckMultipleFeatures(ctx context.Context, address string, features []models.Feature) []models.FeatureAccess {
	out := make([]models.FeatureAccess, 0, len(features))
	if len(features) == 0 {
		return out
	}

	balance := e.balance(ctx, address)
	for _, f := range features {
		out = append(out, e.decide(ctx, f, balance))
	}

	return out
}

func (e *Evaluator) decide(ctx context.Context, feature models.Feature, balance *big.Rat) models.FeatureAccess {
	const op = "access.Evaluator.decide"

	current := credits(balance)
	required, ok := e.thresholds[feature]
	if !ok {
		log.From(ctx).Warn("unknown_feature",
			slog.String("op", op),
			slog.String("feature", string(feature)),
		)
		e.metrics.AccessDegraded(reasonUnknownFeature)

		return models.FeatureAccess{
			Feature:        feature,
			CurrentCredits: current,
		}
	}

	return models.FeatureAccess{
		Feature:         feature,
		RequiredCredits: required,
		CurrentCredits:  current,
		HasAccess:       balance.Cmp(new(big.Rat).SetInt64(required)) >= 0,
	}
}

// credits — точная десятичная запись баланса без хвостовых нулей.
// balance всегда конечная десятичная дробь (см. balance).
func credits(balance *big.Rat) json.Number {
	prec, _ := balance.FloatPrec()
	return json.Number(balance.FloatString(prec))
}

// balance читает баланс и сводит любой сбой к нулю.
// Значения без конечной десятичной записи ("1/3") считаются мусором.
func (e *Evaluator) balance(ctx context.Context, address string) *big.Rat {
	const op = "access.Evaluator.balance"

	zero := new(big.Rat)
	lg := log.From(ctx)

	address = strings.TrimSpace(address)
	if !chain.IsValidAddress(address) {
		if address != "" {
			lg.Debug("invalid_address",
				slog.String("op", op),
				slog.String("address", redact.Address(address)),
			)
		}
		e.metrics.AccessDegraded(reasonInvalidAddress)
		return zero
	}

	raw, err := e.balances.TokenBalance(ctx, address)
	if err != nil {
		lg.Warn("balance_lookup_failed",
			slog.String("op", op),
			slog.String("address", redact.Address(address)),
			slog.String("err", err.Error()),
		)
		e.metrics.AccessDegraded(reasonLookupFailed)
		return zero
	}

	v, ok := new(big.Rat).SetString(strings.TrimSpace(raw))
	if ok {
		_, ok = v.FloatPrec()
	}
	if !ok || v.Sign() < 0 {
		lg.Warn("balance_parse_failed",
			slog.String("op", op),
			slog.String("address", redact.Address(address)),
			slog.String("raw", raw),
		)
		e.metrics.AccessDegraded(reasonParseFailed)
		return zero
	}

	return v
}
