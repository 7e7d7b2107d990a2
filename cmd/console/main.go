package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/jcmexdev/order-console/internal/config"
	"github.com/jcmexdev/order-console/internal/console/core/ordering"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
	"github.com/jcmexdev/order-console/internal/console/infra/adapters/draftstore"
	"github.com/jcmexdev/order-console/internal/console/infra/adapters/service"
	"github.com/jcmexdev/order-console/internal/console/infra/httpx"
	"github.com/jcmexdev/order-console/internal/pkg/cache"
	"github.com/jcmexdev/order-console/internal/pkg/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	telemetry.InitLogger(cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.SetupPropagation()
	if cfg.TracingEnabled {
		shutdown, err := telemetry.SetupTracer(ctx, cfg.ServiceName)
		if err != nil {
			slog.Error("tracing disabled", "error", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					slog.Error("tracer shutdown", "error", err)
				}
			}()
		}
	}

	var (
		catalog ports.CatalogService
		orders  ports.OrderService
	)
	if cfg.FakeUpstreams {
		slog.Warn("using in-memory fake upstreams")
		fake := service.NewFakeUpstreams()
		catalog, orders = fake, fake
	} else {
		httpClient := service.NewHTTPClient()
		catalog = service.NewHTTPCatalogService(cfg.CatalogAPIURL, httpClient)
		orders = service.NewHTTPOrderService(cfg.OrderAPIURL, httpClient)
	}

	var drafts ports.DraftStore
	if cfg.RedisAddr != "" {
		rdb := cache.NewRedisCache(cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.ServiceName)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			slog.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		drafts = draftstore.NewRedisStore(rdb, cfg.DraftTTL)
	} else {
		drafts = draftstore.NewMemoryStore(cfg.DraftTTL)
	}

	handler, err := httpx.NewHandler(catalog, orders, ordering.NewService(catalog, orders, drafts),
		httpx.WithPollInterval(cfg.PollInterval),
	)
	if err != nil {
		slog.Error("load templates", "error", err)
		os.Exit(1)
	}

	// No WriteTimeout: /orders/events streams for as long as orders are in
	// flight. Request contexts derive from ctx so streams end on shutdown.
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("order console listening",
			"addr", cfg.HTTPAddr,
			"catalog_api", cfg.CatalogAPIURL,
			"order_api", cfg.OrderAPIURL,
			"fake_upstreams", cfg.FakeUpstreams,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown", "error", err)
	}
}
