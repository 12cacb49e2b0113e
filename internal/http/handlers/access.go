package handlers

import (
	"net/http"
	"strings"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	"github.com/pribylovaa/web3-hub/internal/models"
)

// accessResponse — решения по набору фич для одного кошелька.
type accessResponse struct {
	Address  string                 `json:"address"`
	Features []models.FeatureAccess `json:"features"`
}

// GET /api/access?address=0x...&features=chatbot,trade-assistant
// Без features проверяется весь список фич. Невалидный адрес даёт нулевой баланс, а не ошибку.
func (h *Handlers) CheckAccess(w http.ResponseWriter, r *http.Request) {
	if h.access == nil {
		apierrors.WriteError(w, r, apierrors.ErrUnavailable)
		return
	}

	q := r.URL.Query()
	address := strings.TrimSpace(q.Get("address"))

	features, err := parseFeatures(q.Get("features"))
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, accessResponse{
		Address:  address,
		Features: h.access.CheckMultipleFeatures(r.Context(), address, features),
	})
}

func parseFeatures(raw string) ([]models.Feature, error) {
	if strings.TrimSpace(raw) == "" {
		return models.AllFeatures(), nil
	}

	parts := strings.Split(raw, ",")
	out := make([]models.Feature, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		f, err := models.ParseFeature(p)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, nil
}
