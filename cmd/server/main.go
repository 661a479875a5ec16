package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ryotak125/parts-market/config"
	"github.com/ryotak125/parts-market/internal/adapter/events"
	"github.com/ryotak125/parts-market/internal/adapter/handler"
	"github.com/ryotak125/parts-market/internal/adapter/storage"
	"github.com/ryotak125/parts-market/internal/core/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MySQL
	db, err := sqlx.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logger.Fatal("failed to open mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.MySQL.ConnMaxLifetime) * time.Second)
	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("failed to ping mysql", zap.Error(err))
	}
	logger.Info("connected to mysql")

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	// Adapters
	store := storage.NewMySQLStore(db)
	cache := storage.NewRedisAdapter(rdb)
	publisher := events.NewDispatcher(
		events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic),
		cfg.Kafka.Workers, cfg.Kafka.Queue, logger,
	)
	logger.Info("event dispatcher started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.Int("workers", cfg.Kafka.Workers),
	)

	// Services
	orderService := service.NewOrderService(store, cache, publisher, logger)
	lifecycleService := service.NewLifecycleService(store, publisher, logger)
	lotService := service.NewLotService(store, logger)
	listingService := service.NewListingService(store, cache, logger)

	// HTTP server
	httpHandler := handler.NewHTTPHandler(orderService, lifecycleService, lotService, listingService, logger)
	mux := http.NewServeMux()
	httpHandler.Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: mux,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("HTTP server stopped")

	if err := publisher.Close(); err != nil {
		logger.Warn("event dispatcher close failed", zap.Error(err))
	}
	logger.Info("event dispatcher stopped")

	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

func newLogger(cfg *config.Config) *zap.Logger {
	var zc zap.Config
	if cfg.Server.AppEnv == "dev" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	if level, err := zap.ParseAtomicLevel(cfg.Logger.Level); err == nil {
		zc.Level = level
	}
	logger, err := zc.Build()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	return logger
}
