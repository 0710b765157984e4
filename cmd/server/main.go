package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rl1809/multiship/internal/adapter/commerce"
	"github.com/rl1809/multiship/internal/adapter/handler"
	"github.com/rl1809/multiship/internal/adapter/storage"
	"github.com/rl1809/multiship/internal/config"
	"github.com/rl1809/multiship/internal/core/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "multiship-server",
		Short: "BOPIS multi-shipment allocation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL store directory
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}
	logger.Info("connected to mysql")

	// Redis shipping method cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("connected to redis")

	// Commerce API client
	commerceClient, err := commerce.New(commerce.Config{
		BaseURL:     cfg.Commerce.BaseURL,
		SiteID:      cfg.Commerce.SiteID,
		AccessToken: cfg.Commerce.AccessToken,
		Timeout:     cfg.Commerce.Timeout,
	})
	if err != nil {
		return fmt.Errorf("init commerce client: %w", err)
	}

	storeRepo := storage.NewMySQLAdapter(db)
	methodsCache := storage.NewRedisAdapter(rdb)

	shipmentService := service.NewShipmentService(commerceClient, storeRepo, methodsCache, logger)
	multishipService := service.NewMultishipService(commerceClient, shipmentService, storeRepo, logger)

	httpHandler := handler.NewHTTPHandler(multishipService, commerceClient, storeRepo, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", httpHandler.HealthCheck)
	mux.HandleFunc("/api/delivery-option", httpHandler.DeliveryOption)
	mux.HandleFunc("/api/reconcile", httpHandler.Reconcile)
	mux.HandleFunc("/api/stores/nearby", httpHandler.StoresNearby)
	mux.HandleFunc("/api/inventory", httpHandler.Inventory)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}
