package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fekuna/omnipos-backoffice/config"
	"github.com/fekuna/omnipos-backoffice/internal/db"
	"github.com/fekuna/omnipos-backoffice/internal/inventory"
	invListenerPkg "github.com/fekuna/omnipos-backoffice/internal/inventory/listener"
	invUCPkg "github.com/fekuna/omnipos-backoffice/internal/inventory/usecase"
	prodUCPkg "github.com/fekuna/omnipos-backoffice/internal/product/usecase"
	"github.com/fekuna/omnipos-backoffice/internal/store"
	"github.com/fekuna/omnipos-backoffice/pkg/broker"
	"github.com/fekuna/omnipos-backoffice/pkg/cache"
	"github.com/fekuna/omnipos-backoffice/pkg/database/postgres"
	"github.com/fekuna/omnipos-backoffice/pkg/logger"
	"github.com/fekuna/omnipos-backoffice/pkg/search"
)

const sessionPurgeInterval = 15 * time.Minute

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	loc := cfg.Business.Location()

	// 2. Initialize Logger
	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "dev",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	// 3. Connect to Database, one pool per role
	appDB, err := postgres.NewPostgres(pgConfig(cfg, cfg.Postgres.User, cfg.Postgres.Password))
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.String("role", cfg.Postgres.User), zap.Error(err))
	}
	defer appDB.Close()
	serviceDB, err := postgres.NewPostgres(pgConfig(cfg, cfg.Postgres.ServiceUser, cfg.Postgres.ServicePassword))
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.String("role", cfg.Postgres.ServiceUser), zap.Error(err))
	}
	defer serviceDB.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Metrics and data layer
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	provider := db.NewProvider(appDB, serviceDB,
		db.WithJWTSecret(cfg.JWT.SecretKey),
		db.WithMetrics(db.NewMetrics(registry)),
		db.WithLogger(appLogger),
	)

	// 5. Initialize Redis
	var (
		marker invUCPkg.Marker
		lists  invUCPkg.ListCache
	)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		marker, lists = redisClient, redisClient
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		appLogger.Warn("Redis disabled, redelivered sale events are deduplicated by the ledger only")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 6. Initialize Elasticsearch
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch", zap.Error(err))
		} else if err := prodUCPkg.EnsureIndex(ctx, esClient); err != nil {
			appLogger.Warn("Could not create product index", zap.Error(err))
		} else {
			appLogger.Info("Product index ready", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 7. Initialize Kafka Consumer and the stock use case
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	repoFor := func(establishmentID string) inventory.Repository {
		return store.New(provider.Service().ScopedTo(establishmentID), store.WithLocation(loc)).StockMovements
	}
	invUC := invUCPkg.NewInventoryUseCase(repoFor, marker, lists, appLogger)
	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)

	// 8. Start background loops
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		invListener.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		purgeSessions(ctx, store.New(provider.Service()), appLogger)
	}()

	metricsServer := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           metricsMux(registry, serviceDB),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		appLogger.Info("Serving metrics", zap.String("addr", cfg.Metrics.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve metrics", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down worker...")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("metrics server shutdown", zap.Error(err))
	}
	appLogger.Info("Worker stopped")
}

func pgConfig(cfg *config.Config, user, password string) *postgres.Config {
	return &postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            user,
		Password:        password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	}
}

func metricsMux(reg *prometheus.Registry, ping *sqlx.DB) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := ping.PingContext(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// purgeSessions removes expired login sessions until ctx ends.
func purgeSessions(ctx context.Context, s *store.Store, log logger.ZapLogger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		n, err := s.Sessions.DeleteExpired(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Error("session purge failed", zap.Error(err))
		case n > 0:
			log.Info("expired sessions purged", zap.Int64("count", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
