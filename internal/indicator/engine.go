package indicator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/data"
	"github.com/mohamedkhairy/stock-factors/internal/models"
	indicatorpkg "github.com/mohamedkhairy/stock-factors/pkg/indicator"
	"github.com/mohamedkhairy/stock-factors/pkg/logger"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// OnResult is called for every factor result an evaluation produces.
// During Run it may be called from several goroutines at once.
type OnResult func(ctx context.Context, result *models.FactorResult)

// EngineConfig holds configuration for the evaluation engine
type EngineConfig struct {
	Workers int // Dates evaluated concurrently (default: 4)
}

// DefaultEngineConfig returns default configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Workers: 4,
	}
}

// EngineStats summarises the engine's activity for health checks
type EngineStats struct {
	Runs          int64     `json:"runs"`
	FailedRuns    int64     `json:"failed_runs"`
	Results       int64     `json:"results"`
	LastRunID     string    `json:"last_run_id,omitempty"`
	LastRunAt     time.Time `json:"last_run_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	FactorCount   int       `json:"factor_count"`
	MaxWindowSize int       `json:"max_window_length"`
}

// Engine evaluates a set of factors over cross-sections supplied by a WindowProvider
type Engine struct {
	registry *indicatorpkg.Registry
	provider data.WindowProvider
	workers  int

	mu       sync.RWMutex
	onResult OnResult
	stats    EngineStats
}

// NewEngine creates a new evaluation engine
func NewEngine(config EngineConfig, registry *indicatorpkg.Registry, provider data.WindowProvider) *Engine {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		registry: registry,
		provider: provider,
		workers:  workers,
	}
}

// SetOnResult sets the callback invoked for each result
func (e *Engine) SetOnResult(callback OnResult) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onResult = callback
}

// Evaluate computes every registered factor for the cross-section assets on date.
// Results are ordered by factor name.
func (e *Engine) Evaluate(ctx context.Context, date time.Time, assets []string) ([]*models.FactorResult, error) {
	names := e.registry.List()
	if len(names) == 0 {
		return nil, nil
	}

	length := e.registry.MaxWindowLength()
	if length < 1 {
		length = 1
	}

	frame, err := e.provider.Window(ctx, date, assets, length)
	if err != nil {
		return nil, fmt.Errorf("failed to load window for %s: %w", date.Format(models.DateLayout), err)
	}

	results := make([]*models.FactorResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := e.registry.Get(name)
		if err != nil {
			return nil, err
		}

		result, err := e.evaluateFactor(ctx, f, frame)
		if err != nil {
			factorComputationsTotal.WithLabelValues(name, statusError).Inc()
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// evaluateFactor slices the factor's inputs out of frame, computes and masks
func (e *Engine) evaluateFactor(ctx context.Context, f indicatorpkg.Factor, frame *data.Frame) (*models.FactorResult, error) {
	name := f.Name()
	out := f.NewOutput(len(frame.Assets))

	status, windows := evaluationWindows(f, frame)
	switch status {
	case statusOK:
		start := time.Now()
		if err := f.Compute(frame.Date, frame.Assets, out, windows...); err != nil {
			return nil, fmt.Errorf("factor %s on %s: %w", name, frame.Date.Format(models.DateLayout), err)
		}
		factorComputeLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	case statusShortHistory:
		logger.WithContext(logger.WithFactor(ctx, name)).Debug("Insufficient history, emitting NaN",
			logger.Date("date", frame.Date),
			logger.Int("rows", frame.Rows()),
			logger.Int("window_length", f.WindowLength()),
		)
	}
	factorComputationsTotal.WithLabelValues(name, status).Inc()

	masked := 0
	for j, exists := range frame.Exists {
		if !exists {
			out.SetMissing(j)
			masked++
		}
	}
	if masked > 0 {
		factorMaskedAssetsTotal.WithLabelValues(name).Add(float64(masked))
	}

	outputs := out.Names()
	columns := out.Columns()
	values := make(map[string][]float64, len(outputs))
	for i, output := range outputs {
		values[output] = columns[i]
	}

	return &models.FactorResult{
		RunID:   logger.GetRunID(ctx),
		Factor:  name,
		Date:    frame.Date,
		Assets:  append([]string(nil), frame.Assets...),
		Outputs: outputs,
		Values:  values,
	}, nil
}

// evaluationWindows slices the factor's inputs out of frame. An empty
// cross-section has nothing to compute and reports statusEmpty.
func evaluationWindows(f indicatorpkg.Factor, frame *data.Frame) (string, []*mat.Dense) {
	if len(frame.Assets) == 0 {
		return statusEmpty, nil
	}
	inputs := f.Inputs()
	windows := make([]*mat.Dense, 0, len(inputs))
	for _, s := range inputs {
		w, ok := frame.Tail(s, f.WindowLength())
		if !ok {
			return statusShortHistory, nil
		}
		windows = append(windows, w)
	}
	return statusOK, windows
}

// Run evaluates every date concurrently and returns the results ordered by
// date, then factor name. The first failure cancels the remaining dates.
func (e *Engine) Run(ctx context.Context, dates []time.Time, assets []string) ([]*models.FactorResult, error) {
	runID := logger.GetRunID(ctx)
	if runID == "" {
		runID = logger.NewRunID()
		ctx = logger.WithRunID(ctx, runID)
	}
	log := logger.WithContext(ctx)

	ordered := make([]time.Time, len(dates))
	for i, d := range dates {
		ordered[i] = models.SessionDate(d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Before(ordered[j]) })

	log.Info("Starting factor run",
		logger.Int("dates", len(ordered)),
		logger.Int("assets", len(assets)),
		logger.Int("factors", len(e.registry.List())),
		logger.Int("workers", e.workers),
	)
	started := time.Now()

	e.mu.RLock()
	callback := e.onResult
	e.mu.RUnlock()

	perDate := make([][]*models.FactorResult, len(ordered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, date := range ordered {
		i, date := i, date
		g.Go(func() error {
			results, err := e.Evaluate(gctx, date, assets)
			if err != nil {
				return err
			}
			perDate[i] = results
			if callback != nil {
				for _, r := range results {
					callback(gctx, r)
				}
			}
			return nil
		})
	}

	err := g.Wait()
	e.recordRun(runID, err)
	if err != nil {
		factorRunsTotal.WithLabelValues(statusError).Inc()
		log.Error("Factor run failed", logger.ErrorField(err))
		return nil, err
	}
	factorRunsTotal.WithLabelValues(statusOK).Inc()

	var results []*models.FactorResult
	for _, rs := range perDate {
		results = append(results, rs...)
	}

	e.mu.Lock()
	e.stats.Results += int64(len(results))
	e.mu.Unlock()

	log.Info("Factor run completed",
		logger.Int("results", len(results)),
		logger.Duration("elapsed", time.Since(started)),
	)
	return results, nil
}

// RunRange runs every session in [start, end] known to the provider
func (e *Engine) RunRange(ctx context.Context, start, end time.Time, assets []string) ([]*models.FactorResult, error) {
	sessions, err := e.provider.Sessions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return e.Run(ctx, sessions, assets)
}

func (e *Engine) recordRun(runID string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.Runs++
	e.stats.LastRunID = runID
	e.stats.LastRunAt = time.Now().UTC()
	e.stats.LastError = ""
	if err != nil {
		e.stats.FailedRuns++
		e.stats.LastError = err.Error()
	}
}

// GetStats returns a snapshot of the engine statistics
func (e *Engine) GetStats() EngineStats {
	e.mu.RLock()
	stats := e.stats
	e.mu.RUnlock()

	stats.FactorCount = len(e.registry.List())
	stats.MaxWindowSize = e.registry.MaxWindowLength()
	return stats
}
