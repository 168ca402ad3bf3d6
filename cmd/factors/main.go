package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohamedkhairy/stock-factors/internal/config"
	"github.com/mohamedkhairy/stock-factors/internal/data"
	"github.com/mohamedkhairy/stock-factors/internal/indicator"
	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/internal/pubsub"
	"github.com/mohamedkhairy/stock-factors/internal/storage"
	"github.com/mohamedkhairy/stock-factors/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting factor service",
		logger.String("driver", cfg.Database.Driver),
		logger.Int("health_port", cfg.Factors.HealthCheckPort),
		logger.Date("start_date", cfg.Factors.StartDate),
		logger.Date("end_date", cfg.Factors.EndDate),
		logger.Int("universe", len(cfg.Factors.Universe)),
	)

	// Initialize bar store
	sqlStore, err := storage.NewSQLBarStorage(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize bar store",
			logger.ErrorField(err),
		)
	}
	defer sqlStore.Close()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = sqlStore.EnsureSchema(schemaCtx)
	schemaCancel()
	if err != nil {
		logger.Fatal("Failed to ensure bar schema",
			logger.ErrorField(err),
		)
	}

	// Redis is optional unless caching or publishing is enabled
	var redisClient *redis.Client
	if cfg.Factors.CacheEnabled || cfg.Factors.PublishEnabled {
		redisClient, err = pubsub.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis client",
				logger.ErrorField(err),
			)
		}
		defer redisClient.Close()
	}

	var store storage.BarStorage = sqlStore
	if cfg.Factors.CacheEnabled {
		store = storage.NewCachingBarStorage(redisClient, cfg.Factors.CacheTTL, sqlStore, "bars")
		logger.Info("Bar cache enabled",
			logger.Duration("ttl", cfg.Factors.CacheTTL),
		)
	}
	provider := data.NewStorageProvider(store)

	// Initialize factor catalog
	catalog := indicator.NewFactorCatalog()
	if err := indicator.RegisterAllFactors(catalog); err != nil {
		logger.Fatal("Failed to register factors",
			logger.ErrorField(err),
		)
	}

	registry, err := catalog.Build(cfg.Factors.Names)
	if err != nil {
		logger.Fatal("Failed to build factors",
			logger.ErrorField(err),
		)
	}

	logger.Info("Registered factors",
		logger.Int("available", len(catalog.ListAvailable())),
		logger.Strings("selected", registry.List()),
	)

	// Initialize evaluation engine
	engineConfig := indicator.DefaultEngineConfig()
	engineConfig.Workers = cfg.Factors.Workers
	engine := indicator.NewEngine(engineConfig, registry, provider)

	var publisher *indicator.Publisher
	if cfg.Factors.PublishEnabled {
		publisher = indicator.NewPublisher(redisClient, indicator.PublisherConfig{
			KeyPrefix:     cfg.Factors.PublishPrefix,
			TTL:           cfg.Factors.PublishTTL,
			UpdateChannel: cfg.Factors.PublishChannel,
		})
		engine.SetOnResult(func(ctx context.Context, result *models.FactorResult) {
			if err := publisher.Publish(ctx, result); err != nil {
				logger.WithContext(ctx).Error("Failed to publish factor result",
					logger.ErrorField(err),
					logger.String("factor", result.Factor),
				)
			}
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup health and metrics server
	status := &runStatus{}
	var wg sync.WaitGroup
	healthRouter := setupHealthAndMetricsServer(engine, publisher, status)
	healthServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Factors.HealthCheckPort),
		Handler:      healthRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting health and metrics server",
			logger.Int("port", cfg.Factors.HealthCheckPort),
		)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health and metrics server failed",
				logger.ErrorField(err),
			)
		}
	}()

	// Evaluate the configured range
	wg.Add(1)
	go func() {
		defer wg.Done()
		status.start()
		results, err := engine.RunRange(ctx, cfg.Factors.StartDate, cfg.Factors.EndDate, cfg.Factors.Universe)
		status.finish(err)
		if err != nil {
			logger.Error("Factor evaluation failed",
				logger.ErrorField(err),
			)
			return
		}
		logger.Info("Factor evaluation finished",
			logger.Int("results", len(results)),
		)
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down factor service")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Health server shutdown failed", logger.ErrorField(err))
	}

	// Wait for all goroutines to finish
	wg.Wait()

	logger.Info("Factor service stopped")
}

// runStatus tracks the evaluation run for the readiness probe
type runStatus struct {
	running  atomic.Bool
	finished atomic.Bool
	failed   atomic.Bool
}

func (s *runStatus) start() {
	s.running.Store(true)
}

func (s *runStatus) finish(err error) {
	s.failed.Store(err != nil)
	s.finished.Store(true)
	s.running.Store(false)
}

// setupHealthAndMetricsServer sets up HTTP endpoints for health checks and metrics
func setupHealthAndMetricsServer(engine *indicator.Engine, publisher *indicator.Publisher, status *runStatus) *mux.Router {
	router := mux.NewRouter()
	router.Use(metricsMiddleware)

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		code := http.StatusOK
		checks := map[string]interface{}{
			"engine": map[string]interface{}{
				"status":  "ok",
				"running": status.running.Load(),
				"stats":   engine.GetStats(),
			},
		}
		if publisher != nil {
			checks["publisher"] = map[string]interface{}{
				"status": "ok",
				"stats":  publisher.Stats(),
			}
		}
		healthStatus := map[string]interface{}{
			"status":    "UP",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    checks,
		}

		if status.failed.Load() {
			code = http.StatusServiceUnavailable
			healthStatus["status"] = "DOWN"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(healthStatus)
	}).Methods("GET")

	// Readiness probe
	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if status.finished.Load() && !status.failed.Load() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("READY"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT READY"))
		}
	}).Methods("GET")

	// Liveness probe
	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("LIVE"))
	}).Methods("GET")

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	return router
}

// statusRecorder captures the response code for request metrics
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		logger.ObserveRequest(r.Method, endpoint, rec.status, time.Since(start))
		if rec.status >= http.StatusInternalServerError {
			logger.CountError("factors", strconv.Itoa(rec.status))
		}
	})
}
