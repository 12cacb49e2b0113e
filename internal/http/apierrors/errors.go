// apierrors стандартизирует ответы об ошибках HTTP API.
// На вход — доменная ошибка (sentinel из сервисных пакетов), на выход:
//   - HTTP-статус;
//   - плоское тело {"error", "code"} без утечки деталей апстримов.
package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/web3-hub/internal/assistant"
	"github.com/pribylovaa/web3-hub/internal/market"
	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/internal/news"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrRateLimited — клиент превысил лимит запросов (429).
	ErrRateLimited = errors.New("rate limited")
	// ErrBadRequest — тело или параметры запроса не разбираются (400).
	ErrBadRequest = errors.New("bad request")
	// ErrNotFound — маршрут не найден (404).
	ErrNotFound = errors.New("not found")
	// ErrMethodNotAllowed — метод не поддерживается маршрутом (405).
	ErrMethodNotAllowed = errors.New("method not allowed")
	// ErrUnavailable — зависимость маршрута не собрана (503).
	ErrUnavailable = errors.New("service unavailable")
)

// ErrorResponse — тело ответа об ошибке.
// Access заполняется только для 403: фронт показывает, сколько кредитов не хватает.
type ErrorResponse struct {
	Error     string                `json:"error"`
	Code      string                `json:"code"`
	RequestID string                `json:"request_id,omitempty"`
	Access    *models.FeatureAccess `json:"access,omitempty"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и тело ответа.
//
// err == nil считается программной ошибкой вызова: 500/internal,
// чтобы не отдать тело ошибки со статусом 200.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"}
	}

	var denied *assistant.DeniedError
	if errors.As(err, &denied) {
		access := denied.Access
		return http.StatusForbidden, ErrorResponse{
			Error:  "insufficient credits",
			Code:   "access_denied",
			Access: &access,
		}
	}

	status, code, msg := classify(err)
	return status, ErrorResponse{Error: msg, Code: code}
}

// WriteError пишет статус и тело, добавляя request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// classify — таблица доменная ошибка -> HTTP/код/сообщение:
//   - битые параметры и ввод -> 400
//   - кошелёк не подключён -> 401
//   - монета не найдена, неизвестный маршрут -> 404
//   - лимит запросов -> 429
//   - клиент закрыл соединение -> 499
//   - ассистент или зависимость маршрута не настроены -> 503
//   - дедлайн запроса -> 504
//   - новости недоступны, ошибка апстрима, прочее -> 500
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, market.ErrInvalidQuery):
		return http.StatusBadRequest, "invalid_query", "invalid query"
	case errors.Is(err, models.ErrUnknownFeature):
		return http.StatusBadRequest, "unknown_feature", "unknown feature"
	case errors.Is(err, assistant.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input", "invalid input"
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request", "bad request"
	case errors.Is(err, assistant.ErrWalletRequired):
		return http.StatusUnauthorized, "wallet_required", "connect wallet"
	case errors.Is(err, assistant.ErrAccessDenied):
		return http.StatusForbidden, "access_denied", "insufficient credits"
	case errors.Is(err, market.ErrNotFound):
		return http.StatusNotFound, "not_found", "coin not found"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found", "not found"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited", "too many requests"
	case errors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case errors.Is(err, assistant.ErrUnavailable), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable", "service unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	case errors.Is(err, news.ErrNoNews):
		return http.StatusInternalServerError, "no_news", "Failed to fetch news"
	case errors.Is(err, market.ErrUpstream):
		return http.StatusInternalServerError, "upstream", "Failed to fetch crypto data"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
