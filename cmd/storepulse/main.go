package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/organ-c/storepulse/internal/auth"
	"github.com/organ-c/storepulse/internal/config"
	"github.com/organ-c/storepulse/internal/gateway"
	"github.com/organ-c/storepulse/internal/ingest"
	"github.com/organ-c/storepulse/internal/logstore"
	"github.com/organ-c/storepulse/internal/notify"
	"github.com/organ-c/storepulse/internal/oracle"
	"github.com/organ-c/storepulse/internal/registry"
	"github.com/organ-c/storepulse/internal/retention"
	"github.com/organ-c/storepulse/internal/risk"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var store logstore.Store
	switch cfg.StoreBackend {
	case "", "memory":
		store = logstore.NewMemoryStore()
	case "redis":
		store = logstore.NewRedisStore(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		logger.Warn("unknown store backend, falling back to memory",
			zap.String("backend", cfg.StoreBackend))
		store = logstore.NewMemoryStore()
	}

	sweeper := retention.NewSweeper(store, logger)
	// Run-once-at-start retention pass; the same sweep is re-runnable via
	// the admin endpoint at any time.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	report := sweeper.Sweep(startupCtx, cfg.RetentionDays)
	cancelStartup()
	logger.Info("startup retention sweep complete",
		zap.Int("deleted", report.TotalDeleted()),
		zap.Time("cutoff", report.Cutoff))

	reg := registry.New(logger)
	wsHandler := registry.NewHandler(reg, logger)

	scoring := oracle.HTTPOracle{
		BaseURL: cfg.OracleBaseURL,
		HTTP:    &http.Client{Timeout: cfg.OracleTimeout},
	}
	evaluator := risk.NewEvaluator(cfg.RiskWeights())
	webhook := notify.AlertWebhook{URL: cfg.AlertWebhookURL}
	pipeline := ingest.NewPipeline(scoring, evaluator, store, reg, webhook, logger)

	jwt := auth.JWT{Secret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}
	router := gateway.Router{
		Auth:      auth.Handler{JWT: jwt, AdminAPIKey: cfg.AdminAPIKey},
		Ingest:    ingest.Handler{Pipeline: pipeline},
		WS:        wsHandler,
		Retention: retention.Handler{Sweeper: sweeper, DefaultDays: cfg.RetentionDays},
		Metrics:   promhttp.Handler(),
		AuthMW:    auth.Middleware(jwt),
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("storepulse listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("shutdown complete")
}
