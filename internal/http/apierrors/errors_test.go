package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/web3-hub/internal/assistant"
	"github.com/pribylovaa/web3-hub/internal/market"
	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/internal/news"
)

func TestToHTTP_Table(t *testing.T) {
	t.Parallel()

	wrap := func(err error) error { return fmt.Errorf("op: %w", err) }

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"nil", nil, http.StatusInternalServerError, "internal"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal"},
		{"no_news", wrap(news.ErrNoNews), http.StatusInternalServerError, "no_news"},
		{"invalid_query", wrap(market.ErrInvalidQuery), http.StatusBadRequest, "invalid_query"},
		{"upstream", wrap(market.ErrUpstream), http.StatusInternalServerError, "upstream"},
		{"coin_not_found", wrap(market.ErrNotFound), http.StatusNotFound, "not_found"},
		{"unknown_feature", wrap(models.ErrUnknownFeature), http.StatusBadRequest, "unknown_feature"},
		{"wallet", wrap(assistant.ErrWalletRequired), http.StatusUnauthorized, "wallet_required"},
		{"denied_plain", wrap(assistant.ErrAccessDenied), http.StatusForbidden, "access_denied"},
		{"invalid_input", wrap(assistant.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"unavailable", wrap(assistant.ErrUnavailable), http.StatusServiceUnavailable, "unavailable"},
		{"not_configured", ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
		{"rate_limited", ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"bad_request", wrap(ErrBadRequest), http.StatusBadRequest, "bad_request"},
		{"route", ErrNotFound, http.StatusNotFound, "not_found"},
		{"method", ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			status, resp := ToHTTP(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.code, resp.Code)
			require.NotEmpty(t, resp.Error)
			require.Nil(t, resp.Access)
		})
	}
}

func TestToHTTP_DeniedCarriesAccess(t *testing.T) {
	t.Parallel()

	decision := models.FeatureAccess{
		Feature:         models.FeatureGamingBot,
		RequiredCredits: 11,
		CurrentCredits:  "2.5",
	}
	err := fmt.Errorf("assistant.Service.Chat: %w", &assistant.DeniedError{Access: decision})

	status, resp := ToHTTP(err)
	require.Equal(t, http.StatusForbidden, status)
	require.Equal(t, "access_denied", resp.Code)
	require.NotNil(t, resp.Access)
	require.Equal(t, decision, *resp.Access)
}

func TestToHTTP_NoLeakOfDetails(t *testing.T) {
	t.Parallel()

	_, resp := ToHTTP(fmt.Errorf("dial tcp 10.0.0.1:443: %w", market.ErrUpstream))
	require.NotContains(t, resp.Error, "10.0.0.1")
}

func TestWriteError_WithRequestID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	r.Header.Set("X-Request-Id", "rid-123")
	w := httptest.NewRecorder()

	WriteError(w, r, news.ErrNoNews)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Failed to fetch news", body["error"])
	require.Equal(t, "no_news", body["code"])
	require.Equal(t, "rid-123", body["request_id"])
	_, hasAccess := body["access"]
	require.False(t, hasAccess)
}

func TestWriteError_NoRequestID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/crypto", nil)
	w := httptest.NewRecorder()

	WriteError(w, r, market.ErrInvalidQuery)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, resp.RequestID)
}
