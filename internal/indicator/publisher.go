package indicator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/mohamedkhairy/stock-factors/internal/models"
	"github.com/mohamedkhairy/stock-factors/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// ErrResultNotFound is returned by Fetch when no result is stored under the key
var ErrResultNotFound = errors.New("factor result not found")

// Publisher writes factor results to Redis and announces them on a channel
type Publisher struct {
	redis  redis.Cmdable
	config PublisherConfig

	published atomic.Int64
	failed    atomic.Int64
}

// PublisherConfig holds configuration for the result publisher
type PublisherConfig struct {
	KeyPrefix     string        // Prefix for result keys (default: "factor:")
	TTL           time.Duration // TTL for results (default: 24 hours)
	UpdateChannel string        // Redis pub/sub channel for updates (default: "factors.updated")
}

// DefaultPublisherConfig returns default configuration
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		KeyPrefix:     "factor:",
		TTL:           24 * time.Hour,
		UpdateChannel: "factors.updated",
	}
}

// resultPayload is the stored form of a FactorResult. NaN has no JSON
// representation, so missing values are encoded as null.
type resultPayload struct {
	RunID   string                `json:"run_id,omitempty"`
	Factor  string                `json:"factor"`
	Date    string                `json:"date"`
	Assets  []string              `json:"assets"`
	Outputs []string              `json:"outputs"`
	Values  map[string][]*float64 `json:"values"`
}

// updateMessage is sent on the update channel after a result is stored
type updateMessage struct {
	RunID  string `json:"run_id,omitempty"`
	Factor string `json:"factor"`
	Date   string `json:"date"`
	Key    string `json:"key"`
}

// NewPublisher creates a new result publisher
func NewPublisher(rdb redis.Cmdable, config PublisherConfig) *Publisher {
	return &Publisher{
		redis:  rdb,
		config: config,
	}
}

// Key returns the Redis key holding factor's result for date
func (p *Publisher) Key(factor string, date time.Time) string {
	return fmt.Sprintf("%s%s:%s", p.config.KeyPrefix, factor, date.UTC().Format(models.DateLayout))
}

// Publish stores result and notifies subscribers.
// A failed notification is logged, not returned.
func (p *Publisher) Publish(ctx context.Context, result *models.FactorResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	key := p.Key(result.Factor, result.Date)
	body, err := json.Marshal(encodeResult(result))
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := p.redis.Set(ctx, key, body, p.config.TTL).Err(); err != nil {
		p.failed.Add(1)
		factorPublishTotal.WithLabelValues("set", statusError).Inc()
		logger.Error("Failed to publish factor result",
			logger.ErrorField(err),
			logger.String("factor", result.Factor),
			logger.String("key", key),
		)
		return fmt.Errorf("failed to publish factor result: %w", err)
	}
	factorPublishTotal.WithLabelValues("set", statusOK).Inc()

	msg, err := json.Marshal(updateMessage{
		RunID:  result.RunID,
		Factor: result.Factor,
		Date:   result.Date.UTC().Format(models.DateLayout),
		Key:    key,
	})
	if err == nil {
		err = p.redis.Publish(ctx, p.config.UpdateChannel, msg).Err()
	}
	if err != nil {
		factorPublishTotal.WithLabelValues("notify", statusError).Inc()
		logger.Warn("Failed to publish factor update",
			logger.ErrorField(err),
			logger.String("factor", result.Factor),
			logger.String("channel", p.config.UpdateChannel),
		)
	} else {
		factorPublishTotal.WithLabelValues("notify", statusOK).Inc()
	}

	p.published.Add(1)
	logger.Debug("Published factor result",
		logger.String("factor", result.Factor),
		logger.String("key", key),
		logger.Int("assets", len(result.Assets)),
	)
	return nil
}

// PublishAll publishes results in order and stops at the first failure
func (p *Publisher) PublishAll(ctx context.Context, results []*models.FactorResult) error {
	for _, r := range results {
		if err := p.Publish(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Fetch reads a stored result back, restoring nulls to NaN
func (p *Publisher) Fetch(ctx context.Context, factor string, date time.Time) (*models.FactorResult, error) {
	key := p.Key(factor, date)
	body, err := p.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrResultNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch factor result: %w", err)
	}

	var payload resultPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal factor result %s: %w", key, err)
	}
	return decodeResult(&payload)
}

// Stats returns the number of stored and failed publications
func (p *Publisher) Stats() map[string]int64 {
	return map[string]int64{
		"published": p.published.Load(),
		"failed":    p.failed.Load(),
	}
}

func encodeResult(r *models.FactorResult) *resultPayload {
	values := make(map[string][]*float64, len(r.Values))
	for name, col := range r.Values {
		encoded := make([]*float64, len(col))
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			v := v
			encoded[i] = &v
		}
		values[name] = encoded
	}
	return &resultPayload{
		RunID:   r.RunID,
		Factor:  r.Factor,
		Date:    r.Date.UTC().Format(models.DateLayout),
		Assets:  r.Assets,
		Outputs: r.Outputs,
		Values:  values,
	}
}

func decodeResult(p *resultPayload) (*models.FactorResult, error) {
	date, err := time.Parse(models.DateLayout, p.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidDate, err)
	}

	values := make(map[string][]float64, len(p.Values))
	for name, col := range p.Values {
		decoded := make([]float64, len(col))
		for i, v := range col {
			if v == nil {
				decoded[i] = math.NaN()
				continue
			}
			decoded[i] = *v
		}
		values[name] = decoded
	}

	r := &models.FactorResult{
		RunID:   p.RunID,
		Factor:  p.Factor,
		Date:    date,
		Assets:  p.Assets,
		Outputs: p.Outputs,
		Values:  values,
	}
	return r, r.Validate()
}
