package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mtl-infra/capworks-backend/internal/logger"
	"github.com/mtl-infra/capworks-backend/internal/utils"
)

// Event types published on the planning channel.
const (
	EventDecisionApplied     = "decisionApplied"
	EventProgramBookOutdated = "programBookOutdated"
)

// Event is a fire-and-forget notification for downstream consumers
// (planning UI refresh, reporting). Publish failures are logged, never
// surfaced to the mutating request.
type Event struct {
	Type     string                 `json:"type"`
	ObjectID string                 `json:"object_id"`
	Payload  map[string]interface{} `json:"payload,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

// NewRedisBus connects to redis using REDIS_ADDR / REDIS_CHANNEL. Returns an
// error when the address is unset; callers fall back to NewNopBus.
func NewRedisBus(log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel := strings.TrimSpace(utils.GetEnv("REDIS_CHANNEL", "planning", log))

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisBus{
		log:     log.With("service", "RedisBus"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		b.log.Warn("Failed to marshal event", "error", err, "type", event.Type)
		return
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		b.log.Warn("Failed to publish event", "error", err, "type", event.Type, "object_id", event.ObjectID)
	}
}

func (b *redisBus) Close() error {
	return b.rdb.Close()
}

type nopBus struct{}

// NewNopBus is used when redis is not configured.
func NewNopBus() Bus { return nopBus{} }

func (nopBus) Publish(ctx context.Context, event Event) {}
func (nopBus) Close() error                             { return nil }
