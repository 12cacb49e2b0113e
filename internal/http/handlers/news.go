package handlers

import (
	"net/http"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	"github.com/pribylovaa/web3-hub/internal/models"
)

// GET /api/news
// Ответ: JSON-массив статей текущего батча (живой сбор или кэш).
func (h *Handlers) ListNews(w http.ResponseWriter, r *http.Request) {
	if h.news == nil {
		apierrors.WriteError(w, r, apierrors.ErrUnavailable)
		return
	}

	articles, err := h.news.Ingest(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}
	if articles == nil {
		articles = []models.NewsArticle{}
	}

	writeJSON(w, http.StatusOK, articles)
}
