package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/web3-hub/internal/http/apierrors"
	"github.com/pribylovaa/web3-hub/internal/http/handlers"
	"github.com/pribylovaa/web3-hub/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger  *slog.Logger
	Timeout time.Duration
	// Limiter — per-IP лимит запросов; nil отключает ограничение.
	Limiter *middleware.IPLimiter
}

// NewRouter собирает http.Handler с chi, middleware и маршрутами /api.
func NewRouter(deps handlers.Deps, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // ловим паники
		middleware.RequestID(),          // X-Request-Id до логирования
		middleware.Logging(opts.Logger), // request-scoped логгер в контексте
		middleware.RateLimit(opts.Limiter),
		middleware.Timeout(opts.Timeout),
	)

	root.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, apierrors.ErrNotFound)
	})
	root.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		apierrors.WriteError(w, r, apierrors.ErrMethodNotAllowed)
	})

	h := handlers.New(deps)
	root.Route("/api", func(r chi.Router) {
		registerRoutes(r, h)
	})

	return root
}

// registerRoutes — единая точка регистрации REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// публичные данные
	r.Get("/news", h.ListNews)
	r.Get("/crypto", h.ListCoins)
	r.Get("/access", h.CheckAccess)

	// gated AI-инструменты
	r.Post("/chat", h.Chat)
	r.Post("/contracts/generate", h.GenerateContract)
	r.Post("/contracts/audit", h.AuditContract)
	r.Post("/trade/advice", h.TradeAdvice)
}
