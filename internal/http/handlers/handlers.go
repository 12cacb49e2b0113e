package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/internal/prompt"
)

// maxBody — предел тела POST-запроса (исходник контракта до 50k символов плюс JSON).
const maxBody = 1 << 20

// NewsSource — текущий батч новостей (реализует news.Pipeline).
type NewsSource interface {
	Ingest(ctx context.Context) ([]models.NewsArticle, error)
}

// CoinLister — рыночные данные (реализует market.Client).
type CoinLister interface {
	Coins(ctx context.Context, kind models.CoinKind, limit int) ([]models.Coin, error)
}

// AccessChecker — решения о доступе (реализует access.Evaluator).
type AccessChecker interface {
	CheckMultipleFeatures(ctx context.Context, address string, features []models.Feature) []models.FeatureAccess
}

// Assistant — gated AI-инструменты (реализует assistant.Service).
type Assistant interface {
	Chat(ctx context.Context, address, message string, history []prompt.ChatTurn) (string, error)
	GenerateContract(ctx context.Context, address, description, kind string) (string, error)
	AuditContract(ctx context.Context, address, source string) (string, error)
	TradeAdvice(ctx context.Context, address, symbol string) (string, error)
}

// Deps — зависимости хендлеров. Любая может быть nil: соответствующие маршруты ответят 503.
type Deps struct {
	News      NewsSource
	Market    CoinLister
	Access    AccessChecker
	Assistant Assistant
}

// Handlers агрегирует зависимости.
type Handlers struct {
	news      NewsSource
	market    CoinLister
	access    AccessChecker
	assistant Assistant
}

func New(d Deps) *Handlers {
	return &Handlers{
		news:      d.News,
		market:    d.Market,
		access:    d.Access,
		assistant: d.Assistant,
	}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: неизвестные поля и хвост после объекта запрещены.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return fmt.Errorf("%w: %v", apierrors.ErrBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", apierrors.ErrBadRequest)
	}

	return nil
}
