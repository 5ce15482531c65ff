package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"OptionPrisma/internal/api"
	"OptionPrisma/internal/config"
	"OptionPrisma/internal/logger"
	"OptionPrisma/internal/metrics"
	"OptionPrisma/internal/montecarlo"
	"OptionPrisma/internal/pricing"
	"OptionPrisma/internal/scheduler"
	"OptionPrisma/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "optionprisma: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync(log)
	log.Info("OptionPrisma starting", zap.String("version", api.Version), zap.String("config", cfgPath))

	st, err := store.OpenRetrying(cfg.Storage.Driver, cfg.Storage.Path, cfg.Storage.MaxRetries, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	defer st.Close()
	log.Info("result store ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("path", cfg.Storage.Path),
		zap.Int("max_retries", cfg.Storage.MaxRetries),
	)

	m := metrics.New()
	engine := montecarlo.NewEngine(cfg.Pricing.Workers)
	svc := pricing.NewService(engine, st, log, m, cfg.Pricing.DefaultSimulations)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Retention.MaxAge > 0 {
		sched := scheduler.NewScheduler(ctx, st, cfg.Retention.MaxAge, log, m)
		if err := sched.RegisterRetention(cfg.Retention.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	} else {
		log.Info("retention pruning disabled")
	}

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(svc, log, m),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	log.Info("OptionPrisma stopped")
	return nil
}
