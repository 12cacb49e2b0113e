package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/web3-hub/internal/assistant"
	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	"github.com/pribylovaa/web3-hub/internal/market"
	"github.com/pribylovaa/web3-hub/internal/models"
	"github.com/pribylovaa/web3-hub/internal/news"
	"github.com/pribylovaa/web3-hub/internal/prompt"
)

type fakeNews struct {
	articles []models.NewsArticle
	err      error
}

func (f *fakeNews) Ingest(context.Context) ([]models.NewsArticle, error) { return f.articles, f.err }

type fakeMarket struct {
	gotKind  models.CoinKind
	gotLimit int
	coins    []models.Coin
	err      error
}

func (f *fakeMarket) Coins(_ context.Context, kind models.CoinKind, limit int) ([]models.Coin, error) {
	f.gotKind, f.gotLimit = kind, limit
	return f.coins, f.err
}

type fakeAccess struct {
	gotAddress  string
	gotFeatures []models.Feature
}

func (f *fakeAccess) CheckMultipleFeatures(_ context.Context, address string, features []models.Feature) []models.FeatureAccess {
	f.gotAddress, f.gotFeatures = address, features

	out := make([]models.FeatureAccess, 0, len(features))
	for _, ft := range features {
		out = append(out, models.FeatureAccess{Feature: ft, RequiredCredits: 1})
	}
	return out
}

// fakeAssistant запоминает последний вызов и возвращает заданный ответ.
type fakeAssistant struct {
	call    string
	address string
	args    []string
	history []prompt.ChatTurn
	text    string
	err     error
}

func (f *fakeAssistant) Chat(_ context.Context, address, message string, history []prompt.ChatTurn) (string, error) {
	f.call, f.address, f.args, f.history = "chat", address, []string{message}, history
	return f.text, f.err
}

func (f *fakeAssistant) GenerateContract(_ context.Context, address, description, kind string) (string, error) {
	f.call, f.address, f.args = "generate", address, []string{description, kind}
	return f.text, f.err
}

func (f *fakeAssistant) AuditContract(_ context.Context, address, source string) (string, error) {
	f.call, f.address, f.args = "audit", address, []string{source}
	return f.text, f.err
}

func (f *fakeAssistant) TradeAdvice(_ context.Context, address, symbol string) (string, error) {
	f.call, f.address, f.args = "trade", address, []string{symbol}
	return f.text, f.err
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierrors.ErrorResponse {
	t.Helper()

	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestListNews_OK(t *testing.T) {
	t.Parallel()

	src := &fakeNews{articles: []models.NewsArticle{
		{ID: "coindesk-1a2b3c4d", Source: "CoinDesk", Title: "T", Entities: []string{"Web3", "CoinDesk"}},
	}}
	h := New(Deps{News: src})

	rr := httptest.NewRecorder()
	h.ListNews(rr, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var got []models.NewsArticle
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Equal(t, src.articles, got)
}

func TestListNews_EmptyIsArray(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	New(Deps{News: &fakeNews{}}).ListNews(rr, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "[]", strings.TrimSpace(rr.Body.String()))
}

func TestListNews_Failure500(t *testing.T) {
	t.Parallel()

	src := &fakeNews{err: fmt.Errorf("news.Pipeline.Ingest: %w", news.ErrNoNews)}

	rr := httptest.NewRecorder()
	New(Deps{News: src}).ListNews(rr, httptest.NewRequest(http.MethodGet, "/api/news", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeError(t, rr)
	require.NotEmpty(t, resp.Error)
	require.Equal(t, "no_news", resp.Code)
}

func TestListCoins(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		query     string
		upstream  error
		wantCode  int
		wantKind  models.CoinKind
		wantLimit int
	}{
		{"defaults", "", nil, http.StatusOK, models.CoinsTop, market.DefaultLimit},
		{"trending", "?type=trending&limit=5", nil, http.StatusOK, models.CoinsTrending, 5},
		{"ai", "?type=AI&limit=100", nil, http.StatusOK, models.CoinsAI, 100},
		{"bad_type", "?type=memes", nil, http.StatusBadRequest, "", 0},
		{"bad_limit", "?limit=0", nil, http.StatusBadRequest, "", 0},
		{"limit_too_big", "?limit=101", nil, http.StatusBadRequest, "", 0},
		{"upstream", "?type=top", fmt.Errorf("x: %w", market.ErrUpstream), http.StatusInternalServerError, models.CoinsTop, market.DefaultLimit},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := &fakeMarket{coins: []models.Coin{{Symbol: "BTC"}}, err: tc.upstream}
			rr := httptest.NewRecorder()
			New(Deps{Market: m}).ListCoins(rr, httptest.NewRequest(http.MethodGet, "/api/crypto"+tc.query, nil))

			require.Equal(t, tc.wantCode, rr.Code)
			require.Equal(t, tc.wantKind, m.gotKind)
			require.Equal(t, tc.wantLimit, m.gotLimit)

			if tc.wantCode == http.StatusOK {
				var coins []models.Coin
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &coins))
				require.Len(t, coins, 1)
			}
		})
	}
}

func TestCheckAccess_AllFeaturesByDefault(t *testing.T) {
	t.Parallel()

	acc := &fakeAccess{}
	rr := httptest.NewRecorder()
	New(Deps{Access: acc}).CheckAccess(rr, httptest.NewRequest(http.MethodGet, "/api/access?address=0xabc", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "0xabc", acc.gotAddress)
	require.Equal(t, models.AllFeatures(), acc.gotFeatures)

	var resp accessResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Features, len(models.AllFeatures()))
}

func TestCheckAccess_SelectedFeaturesKeepOrder(t *testing.T) {
	t.Parallel()

	acc := &fakeAccess{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/access?address=0x1&features=trade-assistant,%20Chatbot,,gaming-bot", nil)
	New(Deps{Access: acc}).CheckAccess(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []models.Feature{
		models.FeatureTradeAssistant,
		models.FeatureChatbot,
		models.FeatureGamingBot,
	}, acc.gotFeatures)
}

func TestCheckAccess_UnknownFeature400(t *testing.T) {
	t.Parallel()

	acc := &fakeAccess{}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/access?address=0x1&features=chatbot,teleport", nil)
	New(Deps{Access: acc}).CheckAccess(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "unknown_feature", decodeError(t, rr).Code)
	require.Nil(t, acc.gotFeatures)
}

func TestChat_OK_WalletFromHeader(t *testing.T) {
	t.Parallel()

	as := &fakeAssistant{text: "gm"}
	body := `{"message":"hi","history":[{"role":"user","content":"prev"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(HeaderWallet, "0xwallet")

	rr := httptest.NewRecorder()
	New(Deps{Assistant: as}).Chat(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "chat", as.call)
	require.Equal(t, "0xwallet", as.address)
	require.Equal(t, []string{"hi"}, as.args)
	require.Equal(t, []prompt.ChatTurn{{Role: "user", Content: "prev"}}, as.history)

	var resp textResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "gm", resp.Text)
}

func TestAssistantRoutes_Dispatch(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		handler func(h *Handlers) http.HandlerFunc
		body    string
		call    string
		args    []string
	}{
		{
			name:    "generate",
			handler: func(h *Handlers) http.HandlerFunc { return h.GenerateContract },
			body:    `{"address":"0xbody","description":"token","kind":"erc20"}`,
			call:    "generate",
			args:    []string{"token", "erc20"},
		},
		{
			name:    "audit",
			handler: func(h *Handlers) http.HandlerFunc { return h.AuditContract },
			body:    `{"address":"0xbody","source":"contract A {}"}`,
			call:    "audit",
			args:    []string{"contract A {}"},
		},
		{
			name:    "trade",
			handler: func(h *Handlers) http.HandlerFunc { return h.TradeAdvice },
			body:    `{"address":"0xbody","symbol":"eth"}`,
			call:    "trade",
			args:    []string{"eth"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			as := &fakeAssistant{text: "ok"}
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req.Header.Set(HeaderWallet, "0xheader")

			rr := httptest.NewRecorder()
			tc.handler(New(Deps{Assistant: as}))(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tc.call, as.call)
			require.Equal(t, "0xbody", as.address, "address из тела важнее заголовка")
			require.Equal(t, tc.args, as.args)
		})
	}
}

func TestAssistant_ErrorMapping(t *testing.T) {
	t.Parallel()

	denied := &assistant.DeniedError{Access: models.FeatureAccess{
		Feature:         models.FeatureChatbot,
		RequiredCredits: 1,
		CurrentCredits:  "0.5",
	}}

	cases := []struct {
		name string
		err  error
		code int
	}{
		{"wallet", fmt.Errorf("op: %w", assistant.ErrWalletRequired), http.StatusUnauthorized},
		{"denied", fmt.Errorf("op: %w", denied), http.StatusForbidden},
		{"input", fmt.Errorf("op: %w", assistant.ErrInvalidInput), http.StatusBadRequest},
		{"unavailable", fmt.Errorf("op: %w", assistant.ErrUnavailable), http.StatusServiceUnavailable},
		{"generator", errors.New("groq: status=500"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			as := &fakeAssistant{err: tc.err}
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
			rr := httptest.NewRecorder()
			New(Deps{Assistant: as}).Chat(rr, req)

			require.Equal(t, tc.code, rr.Code)
			resp := decodeError(t, rr)
			if tc.name == "denied" {
				require.NotNil(t, resp.Access)
				require.Equal(t, denied.Access, *resp.Access)
			} else {
				require.Nil(t, resp.Access)
			}
		})
	}
}

func TestAssistant_BadBody(t *testing.T) {
	t.Parallel()

	bodies := []string{
		`not json`,
		`{"message":"hi","extra":1}`,
		`{"message":"hi"} {"message":"again"}`,
	}

	for _, body := range bodies {
		as := &fakeAssistant{}
		rr := httptest.NewRecorder()
		New(Deps{Assistant: as}).Chat(rr, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

		require.Equal(t, http.StatusBadRequest, rr.Code, body)
		require.Equal(t, "bad_request", decodeError(t, rr).Code)
		require.Empty(t, as.call)
	}
}

func TestNotConfigured503(t *testing.T) {
	t.Parallel()

	h := New(Deps{})
	routes := map[string]http.HandlerFunc{
		"news":   h.ListNews,
		"crypto": h.ListCoins,
		"access": h.CheckAccess,
		"chat":   h.Chat,
	}

	for name, fn := range routes {
		rr := httptest.NewRecorder()
		fn(rr, httptest.NewRequest(http.MethodGet, "/", strings.NewReader(`{}`)))
		require.Equal(t, http.StatusServiceUnavailable, rr.Code, name)
	}
}
