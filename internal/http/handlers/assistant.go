package handlers

import (
	"net/http"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	"github.com/pribylovaa/web3-hub/internal/prompt"
)

// HeaderWallet — адрес подключённого кошелька; поле address в теле имеет приоритет.
const HeaderWallet = "X-Wallet-Address"

type chatRequest struct {
	Address string            `json:"address"`
	Message string            `json:"message"`
	History []prompt.ChatTurn `json:"history"`
}

type contractRequest struct {
	Address     string `json:"address"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
}

type auditRequest struct {
	Address string `json:"address"`
	Source  string `json:"source"`
}

type tradeRequest struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
}

// textResponse — ответ AI-инструментов.
type textResponse struct {
	Text string `json:"text"`
}

// POST /api/chat
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !h.prepare(w, r, &req) {
		return
	}

	text, err := h.assistant.Chat(r.Context(), wallet(r, req.Address), req.Message, req.History)
	respond(w, r, text, err)
}

// POST /api/contracts/generate
func (h *Handlers) GenerateContract(w http.ResponseWriter, r *http.Request) {
	var req contractRequest
	if !h.prepare(w, r, &req) {
		return
	}

	text, err := h.assistant.GenerateContract(r.Context(), wallet(r, req.Address), req.Description, req.Kind)
	respond(w, r, text, err)
}

// POST /api/contracts/audit
func (h *Handlers) AuditContract(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if !h.prepare(w, r, &req) {
		return
	}

	text, err := h.assistant.AuditContract(r.Context(), wallet(r, req.Address), req.Source)
	respond(w, r, text, err)
}

// POST /api/trade/advice
func (h *Handlers) TradeAdvice(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if !h.prepare(w, r, &req) {
		return
	}

	text, err := h.assistant.TradeAdvice(r.Context(), wallet(r, req.Address), req.Symbol)
	respond(w, r, text, err)
}

// prepare проверяет, что ассистент собран, и разбирает тело. false — ответ уже записан.
func (h *Handlers) prepare(w http.ResponseWriter, r *http.Request, dst any) bool {
	if h.assistant == nil {
		apierrors.WriteError(w, r, apierrors.ErrUnavailable)
		return false
	}
	if err := decodeStrict(r, dst); err != nil {
		apierrors.WriteError(w, r, err)
		return false
	}

	return true
}

func respond(w http.ResponseWriter, r *http.Request, text string, err error) {
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, textResponse{Text: text})
}

func wallet(r *http.Request, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}

	return r.Header.Get(HeaderWallet)
}
