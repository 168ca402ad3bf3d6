package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/config"
	"github.com/mohamedkhairy/stock-factors/internal/data"
	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/internal/pubsub"
	"github.com/mohamedkhairy/stock-factors/internal/storage"
	"github.com/mohamedkhairy/stock-factors/pkg/logger"
)

func main() {
	var (
		path      = flag.String("file", "", "CSV file of daily bars (symbol,date,open,high,low,close,volume)")
		batchSize = flag.Int("batch", 500, "Bars written per transaction")
	)
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file bars.csv [-batch 500]")
		os.Exit(2)
	}

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*path)
	if err != nil {
		logger.Fatal("Failed to open bar file", logger.ErrorField(err), logger.String("file", *path))
	}
	bars, err := data.ReadBarsCSV(f)
	f.Close()
	if err != nil {
		logger.Fatal("Failed to parse bar file", logger.ErrorField(err), logger.String("file", *path))
	}

	sqlStore, err := storage.NewSQLBarStorage(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize bar store", logger.ErrorField(err))
	}
	defer sqlStore.Close()

	if err := sqlStore.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure bar schema", logger.ErrorField(err))
	}

	// Writing through the cache keeps cached ranges of touched symbols fresh
	var store storage.BarStorage = sqlStore
	if cfg.Factors.CacheEnabled {
		redisClient, err := pubsub.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis client", logger.ErrorField(err))
		}
		defer redisClient.Close()
		store = storage.NewCachingBarStorage(redisClient, cfg.Factors.CacheTTL, sqlStore, "bars")
	}

	start := time.Now()
	written, err := writeBatches(ctx, store, bars, *batchSize)
	if err != nil {
		logger.Fatal("Failed to write bars",
			logger.ErrorField(err),
			logger.Int("written", written),
		)
	}

	logger.Info("Ingested bars",
		logger.String("file", *path),
		logger.Int("bars", written),
		logger.Duration("elapsed", time.Since(start)),
	)
}

// writeBatches writes bars in chunks of size and returns how many were stored
func writeBatches(ctx context.Context, store storage.BarStorage, bars []*models.Bar, size int) (int, error) {
	if size < 1 {
		size = len(bars)
	}
	written := 0
	for lo := 0; lo < len(bars); lo += size {
		hi := lo + size
		if hi > len(bars) {
			hi = len(bars)
		}
		if err := store.WriteBars(ctx, bars[lo:hi]); err != nil {
			return written, err
		}
		written = hi
	}
	return written, nil
}
