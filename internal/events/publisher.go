// Package events publishes user lifecycle events to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/enroll/enroll/internal/auth"
	"github.com/enroll/enroll/internal/metrics"
	"github.com/enroll/enroll/internal/model"
)

const (
	// StreamKey is the Redis stream for registration events.
	StreamKey = "stream:user_registered"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// UserRegistered is the compact event payload written to the stream.
// The email is carried as a hash only.
type UserRegistered struct {
	EventID      string `json:"eid"`
	UserID       string `json:"uid"`
	EmailHash    string `json:"eh"`
	RegisteredAt int64  `json:"t"` // Unix milliseconds
}

// NewUserRegistered builds the event for a freshly created user.
func NewUserRegistered(user *model.UserSummary) UserRegistered {
	return UserRegistered{
		EventID:      ulid.Make().String(),
		UserID:       user.ID,
		EmailHash:    auth.QuickHash(user.Email),
		RegisteredAt: user.CreatedAt.UnixMilli(),
	}
}

// Publisher emits registration events without blocking the caller.
type Publisher interface {
	PublishAsync(event UserRegistered)
}

// NoopPublisher drops every event. Used when Redis is not configured.
type NoopPublisher struct{}

// PublishAsync does nothing.
func (NoopPublisher) PublishAsync(UserRegistered) {}

// StreamPublisher appends events to a Redis stream.
type StreamPublisher struct {
	redis    *redis.Client
	logger   *slog.Logger
	metrics  metrics.Recorder
	inflight sync.WaitGroup
}

// NewStreamPublisher creates a publisher writing to StreamKey.
func NewStreamPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *StreamPublisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &StreamPublisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// Publish adds an event to the stream synchronously.
func (p *StreamPublisher) Publish(ctx context.Context, event UserRegistered) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	id, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"type":    "user.registered",
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return id, nil
}

// PublishAsync publishes on a separate goroutine.
// Errors are logged and counted, never returned.
func (p *StreamPublisher) PublishAsync(event UserRegistered) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish registration event",
				"event_id", event.EventID,
				"error", err,
			)
			p.metrics.IncEventPublished(metrics.PublishDropped)
			return
		}

		p.logger.Debug("registration event published",
			"event_id", event.EventID,
			"stream_id", streamID,
		)
		p.metrics.IncEventPublished(metrics.PublishSuccess)
	}()
}

// Drain waits for in-flight publishes or until ctx is done.
func (p *StreamPublisher) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
