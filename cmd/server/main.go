package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cronix/trading-terminal/internal/bracket"
	"github.com/cronix/trading-terminal/internal/config"
	"github.com/cronix/trading-terminal/internal/handler"
	"github.com/cronix/trading-terminal/internal/logging"
	"github.com/cronix/trading-terminal/internal/middleware"
	"github.com/cronix/trading-terminal/internal/pricing"
	"github.com/cronix/trading-terminal/internal/telemetry"
	"github.com/cronix/trading-terminal/internal/ws"
)

const serviceName = "trading-terminal"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting trading terminal service", zap.String("env", cfg.Env))

	shutdownTracer, err := telemetry.InitTracer(serviceName, cfg.Env, logger)
	if err != nil {
		logger.Fatal("init tracer", zap.Error(err))
	}
	defer shutdownTracer()

	// --- Core components ---

	oracle := pricing.NewStaticOracle(priceTable(cfg.Prices))
	hub := ws.NewHub(logger)

	storeOpts := []bracket.Option{bracket.WithEventSink(hub)}
	if cfg.API.StrictStatusErrors {
		storeOpts = append(storeOpts, bracket.WithStrictStatusErrors())
	}
	store := bracket.NewMemoryStore(logger, storeOpts...)

	feed := pricing.NewFeed(oracle, hub, cfg.Feed.Interval, logger)
	feed.Start()

	// Hot-reload the price table when the config file changes.
	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if *configPath != "" {
		go func() {
			err := config.Watch(watchCtx, *configPath, logger, func(updated config.Config) {
				if len(updated.Prices) > 0 {
					oracle.SetTable(priceTable(updated.Prices))
				}
			})
			if err != nil && watchCtx.Err() == nil {
				logger.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	// --- HTTP server ---

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.API.CORSOrigins))
	r.Use(middleware.Prometheus())
	r.Use(middleware.Tracing())

	h := handler.NewHandler(store, oracle, logger)
	h.RegisterRoutes(r)
	r.GET("/ws/:client_id", ws.Serve(hub))

	srv := &http.Server{
		Addr:    ":" + portFromEnv("PORT", cfg.Server.Port),
		Handler: r,
	}

	// --- Metrics server ---

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + portFromEnv("METRICS_PORT", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}

	go func() {
		logger.Info("metrics server listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("metrics server error", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cancelWatch()
	feed.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http server shutdown error", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown error", zap.Error(err))
	}

	logger.Info("trading terminal service stopped")
}

// priceTable converts the yaml price map into the oracle's decimal table.
// An empty map yields nil so the oracle falls back to its demo defaults.
func priceTable(prices map[string]float64) map[string]decimal.Decimal {
	if len(prices) == 0 {
		return nil
	}
	table := make(map[string]decimal.Decimal, len(prices))
	for symbol, price := range prices {
		table[symbol] = decimal.NewFromFloat(price)
	}
	return table
}

// portFromEnv prefers the environment variable over the configured port.
func portFromEnv(key string, fallback int) string {
	if v := os.Getenv(key); v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			return v
		}
	}
	return fmt.Sprintf("%d", fallback)
}
