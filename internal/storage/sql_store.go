package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/mohamedkhairy/stock-factors/internal/config"
	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

var (
	// Metrics for bar store operations
	barStoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bar_store_operations_total",
			Help: "Total number of bar store operations",
		},
		[]string{"operation", "status"}, // status: "success" or "error"
	)

	barStoreLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bar_store_latency_seconds",
			Help:    "Bar store operation latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		},
		[]string{"operation"},
	)

	barStoreWriteBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bar_store_write_batch_size",
			Help:    "Number of bars per write",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)
)

const schema = `
CREATE TABLE IF NOT EXISTS daily_bars (
	symbol       TEXT             NOT NULL,
	session_date DATE             NOT NULL,
	open         DOUBLE PRECISION NOT NULL,
	high         DOUBLE PRECISION NOT NULL,
	low          DOUBLE PRECISION NOT NULL,
	close        DOUBLE PRECISION NOT NULL,
	volume       BIGINT           NOT NULL,
	PRIMARY KEY (symbol, session_date)
)`

// RetryConfig controls write retries
type RetryConfig struct {
	MaxRetries int
	RetryDelay time.Duration
}

// SQLBarStorage implements BarStorage over database/sql.
// It speaks to PostgreSQL through lib/pq or to SQLite through go-sqlite3.
type SQLBarStorage struct {
	db     *sql.DB
	driver string
	retry  RetryConfig
}

// NewSQLBarStorage opens and pings the configured database
func NewSQLBarStorage(dbConfig config.DatabaseConfig) (*SQLBarStorage, error) {
	db, err := sql.Open(dbConfig.Driver, dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(dbConfig.MaxConnections)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to bar store",
		logger.String("driver", dbConfig.Driver),
		logger.String("host", dbConfig.Host),
		logger.String("database", dbConfig.Database),
	)

	return NewSQLBarStorageFromDB(db, dbConfig.Driver, RetryConfig{
		MaxRetries: dbConfig.MaxRetries,
		RetryDelay: dbConfig.RetryDelay,
	})
}

// NewSQLBarStorageFromDB wraps an already opened database
func NewSQLBarStorageFromDB(db *sql.DB, driver string, retry RetryConfig) (*SQLBarStorage, error) {
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if retry.MaxRetries < 1 {
		retry.MaxRetries = 1
	}
	return &SQLBarStorage{db: db, driver: driver, retry: retry}, nil
}

// EnsureSchema creates the bars table when it does not exist
func (s *SQLBarStorage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// WriteBars validates and upserts bars, retrying with exponential backoff
func (s *SQLBarStorage) WriteBars(ctx context.Context, bars []*models.Bar) error {
	validBars := make([]*models.Bar, 0, len(bars))
	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			logger.Warn("Invalid bar, skipping",
				logger.ErrorField(err),
				logger.String("symbol", bar.Symbol),
			)
			continue
		}
		validBars = append(validBars, bar)
	}
	if len(validBars) == 0 {
		return nil
	}

	startTime := time.Now()
	barStoreWriteBatchSize.Observe(float64(len(validBars)))

	var err error
	for attempt := 0; attempt < s.retry.MaxRetries; attempt++ {
		err = s.upsertBars(ctx, validBars)
		if err == nil {
			break
		}

		if attempt < s.retry.MaxRetries-1 {
			delay := s.retry.RetryDelay * time.Duration(1<<uint(attempt)) // Exponential backoff
			logger.Warn("Failed to write bars, retrying",
				logger.ErrorField(err),
				logger.Int("attempt", attempt+1),
				logger.Int("bars_count", len(validBars)),
				logger.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	s.observe("write", startTime, err)
	if err != nil {
		return fmt.Errorf("failed to write %d bars after %d attempts: %w", len(validBars), s.retry.MaxRetries, err)
	}

	logger.Debug("Wrote bars",
		logger.Int("count", len(validBars)),
		logger.Duration("latency", time.Since(startTime)),
	)
	return nil
}

// GetBars retrieves bars for a symbol within [start, end]
func (s *SQLBarStorage) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]*models.Bar, error) {
	startTime := time.Now()
	bars, err := s.queryBars(ctx, symbol, models.SessionDate(start), models.SessionDate(end))
	s.observe("get_bars", startTime, err)
	return bars, err
}

func (s *SQLBarStorage) queryBars(ctx context.Context, symbol string, start, end time.Time) ([]*models.Bar, error) {
	query := s.rebind(`
		SELECT symbol, session_date, open, high, low, close, volume
		FROM daily_bars
		WHERE symbol = ? AND session_date >= ? AND session_date <= ?
		ORDER BY session_date ASC
	`)

	rows, err := s.db.QueryContext(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []*models.Bar
	for rows.Next() {
		var bar models.Bar
		if err := rows.Scan(
			&bar.Symbol,
			(*sessionDate)(&bar.Date),
			&bar.Open,
			&bar.High,
			&bar.Low,
			&bar.Close,
			&bar.Volume,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, &bar)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return bars, nil
}

// GetSessions returns the distinct session dates within [start, end]
func (s *SQLBarStorage) GetSessions(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	startTime := time.Now()
	sessions, err := s.querySessions(ctx, s.rebind(`
		SELECT DISTINCT session_date
		FROM daily_bars
		WHERE session_date >= ? AND session_date <= ?
		ORDER BY session_date ASC
	`), models.SessionDate(start), models.SessionDate(end))
	s.observe("get_sessions", startTime, err)
	return sessions, err
}

// GetSessionsBefore returns up to limit session dates on or before end
func (s *SQLBarStorage) GetSessionsBefore(ctx context.Context, end time.Time, limit int) ([]time.Time, error) {
	startTime := time.Now()
	sessions, err := s.querySessions(ctx, s.rebind(`
		SELECT DISTINCT session_date
		FROM daily_bars
		WHERE session_date <= ?
		ORDER BY session_date DESC
		LIMIT ?
	`), models.SessionDate(end), limit)
	s.observe("get_sessions_before", startTime, err)
	if err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

func (s *SQLBarStorage) querySessions(ctx context.Context, query string, args ...interface{}) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []time.Time
	for rows.Next() {
		var d sessionDate
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, time.Time(d))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return sessions, nil
}

// Close closes the database connection
func (s *SQLBarStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// upsertBars writes bars in a single transaction
func (s *SQLBarStorage) upsertBars(ctx context.Context, bars []*models.Bar) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO daily_bars (symbol, session_date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, session_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		_, err := stmt.ExecContext(ctx,
			bar.Symbol,
			models.SessionDate(bar.Date),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders into $n for PostgreSQL
func (s *SQLBarStorage) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sessionDate scans a DATE column whether the driver yields a time or text
type sessionDate time.Time

func (d *sessionDate) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = sessionDate(models.SessionDate(v))
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into session date", src)
	}
}

func (d *sessionDate) parse(s string) error {
	if len(s) < len(models.DateLayout) {
		return fmt.Errorf("invalid session date %q", s)
	}
	t, err := time.Parse(models.DateLayout, s[:len(models.DateLayout)])
	if err != nil {
		return fmt.Errorf("invalid session date %q: %w", s, err)
	}
	*d = sessionDate(t)
	return nil
}

func (s *SQLBarStorage) observe(operation string, start time.Time, err error) {
	barStoreLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	barStoreOpsTotal.WithLabelValues(operation, status).Inc()
}
