package handlers

import (
	"net/http"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	"github.com/pribylovaa/web3-hub/internal/market"
	"github.com/pribylovaa/web3-hub/internal/models"
)

// GET /api/crypto?type=top|trending|ai&limit=N
func (h *Handlers) ListCoins(w http.ResponseWriter, r *http.Request) {
	if h.market == nil {
		apierrors.WriteError(w, r, apierrors.ErrUnavailable)
		return
	}

	q := r.URL.Query()
	kind, limit, err := market.ParseQuery(q.Get("type"), q.Get("limit"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	coins, err := h.market.Coins(r.Context(), kind, limit)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if coins == nil {
		coins = []models.Coin{}
	}

	writeJSON(w, http.StatusOK, coins)
}
