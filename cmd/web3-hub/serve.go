package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/pribylovaa/web3-hub/internal/assistant"
	"github.com/pribylovaa/web3-hub/internal/config"
	httpapi "github.com/pribylovaa/web3-hub/internal/http"
	"github.com/pribylovaa/web3-hub/internal/http/handlers"
	"github.com/pribylovaa/web3-hub/internal/http/middleware"
	"github.com/pribylovaa/web3-hub/internal/market"
	"github.com/pribylovaa/web3-hub/internal/metrics"
	"github.com/pribylovaa/web3-hub/pkg/interceptors"
	"github.com/pribylovaa/web3-hub/pkg/redact"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, gRPC health server and metrics endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), c.cfg, c.log)
		},
	}
}

func serve(rootCtx context.Context, cfg *config.Config, log *slog.Logger) error {
	log.Info("starting application", slog.String("env", cfg.Env))

	m := metrics.New(prometheus.DefaultRegisterer)

	// Доступ по балансу токена.
	evaluator, closeChain, err := buildEvaluator(rootCtx, cfg, m)
	if err != nil {
		log.Error("chain_connect_failed", slog.String("err", err.Error()))
		return err
	}
	defer closeChain()
	log.Info("chain_connected", slog.String("rpc", redact.URL(cfg.Chain.RPCURL)))

	gen, err := buildGenerator(rootCtx, cfg, log)
	if err != nil {
		log.Error("llm_init_failed", slog.String("err", err.Error()))
		return err
	}

	// Кэш подключается с таймаутом: redis проверяется Ping.
	cacheCtx, cacheCancel := context.WithTimeout(rootCtx, 10*time.Second)
	pipeline, closeCache, err := buildPipeline(cacheCtx, cfg, gen, m)
	cacheCancel()
	if err != nil {
		log.Error("cache_open_failed", slog.String("err", err.Error()))
		return err
	}
	defer closeCache()
	if cfg.Cache.Backend == config.CacheRedis {
		log.Info("redis_connected", slog.String("url", redact.URL(cfg.Cache.RedisURL)))
	}
	log.Info("news_pipeline_initialized",
		slog.Int("sources", len(cfg.News.Sources)),
		slog.String("cache", cfg.Cache.Backend),
	)

	marketClient := market.New(cfg.Market.BaseURL, cfg.Market.APIKey, &http.Client{Timeout: cfg.Timeouts.Feed})
	if cfg.Market.APIKey == "" {
		log.Warn("market_api_key_missing")
	}

	deps := handlers.Deps{
		News:      pipeline,
		Market:    marketClient,
		Access:    evaluator,
		Assistant: assistant.New(evaluator, gen, marketClient),
	}

	proxies, err := cfg.RateLimit.Proxies()
	if err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	limiter := middleware.NewIPLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, middleware.WithTrustedProxies(proxies...))

	var ready atomic.Bool

	// Метрики и пробы.
	metricsSrv := &http.Server{
		Addr:              cfg.Metrics.Addr(),
		Handler:           metricsMux(&ready),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go listenHTTP(log, "metrics", metricsSrv)

	// Публичный API.
	apiSrv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: httpapi.NewRouter(deps, httpapi.Options{
			Logger:  log,
			Timeout: cfg.Timeouts.Service,
			Limiter: limiter,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go listenHTTP(log, "api", apiSrv)

	// gRPC: только стандартный health-сервис.
	grpc_prometheus.EnableHandlingTimeHistogram()
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			interceptors.Recover(log),
			interceptors.UnaryLoggingInterceptor(log),
			interceptors.WithTimeout(cfg.Timeouts.Service),
			grpc_prometheus.UnaryServerInterceptor,
		),
		grpc.ChainStreamInterceptor(
			interceptors.StreamRecover(log),
			grpc_prometheus.StreamServerInterceptor,
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	if cfg.Env == envLocal || cfg.Env == envDev {
		reflection.Register(grpcServer)
	}
	grpc_prometheus.Register(grpcServer)

	listener, err := net.Listen("tcp", cfg.GRPC.Addr())
	if err != nil {
		log.Error("grpc_listen_failed", slog.String("addr", cfg.GRPC.Addr()), slog.String("err", err.Error()))
		shutdownHTTP(log, apiSrv, metricsSrv)
		return err
	}
	log.Info("grpc_listen_start", slog.String("addr", cfg.GRPC.Addr()))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	// Фоновое обновление кэша новостей.
	if cfg.News.RefreshInterval > 0 {
		go func() {
			if err := pipeline.StartRefresh(rootCtx, cfg.News.RefreshInterval); err != nil {
				log.Error("refresh_start_failed", slog.String("err", err.Error()))
			}
		}()
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	ready.Store(true)

	var serveErr error
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case serveErr = <-serveErrCh:
		if serveErr != nil {
			log.Error("grpc_serve_failed", slog.String("err", serveErr.Error()))
		}
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	ready.Store(false)

	stopGRPC(log, grpcServer)
	shutdownHTTP(log, apiSrv, metricsSrv)

	log.Info("service_stopped")
	return serveErr
}

// metricsMux — /livez, /healthz (readiness) и /metrics.
func metricsMux(ready *atomic.Bool) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if ready.Load() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func listenHTTP(log *slog.Logger, name string, srv *http.Server) {
	log.Info("http_listen_start", slog.String("server", name), slog.String("addr", srv.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http_serve_failed", slog.String("server", name), slog.String("err", err.Error()))
	}
}

// stopGRPC — GracefulStop с принудительной остановкой по таймауту.
func stopGRPC(log *slog.Logger, s *grpc.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("grpc_stopped")
	case <-ctx.Done():
		log.Warn("grpc_force_stop")
		s.Stop()
	}
}

func shutdownHTTP(log *slog.Logger, servers ...*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("http_shutdown_failed", slog.String("addr", srv.Addr), slog.String("err", err.Error()))
		}
	}
}
