// Package broadcast fans board snapshots out over Redis pub/sub so other
// console instances can mirror the board.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Krimson/vitals-console/console/internal/render"
)

// RedisPublisher publishes board snapshots on a channel. Snapshots queue
// without blocking; when the queue is full the oldest pending one is dropped.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	queue   chan render.Snapshot
	logger  *zap.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
		queue:   make(chan render.Snapshot, 16),
		logger:  logger,
	}
}

// Publish sends one snapshot and returns the number of receivers
func (p *RedisPublisher) Publish(ctx context.Context, snap render.Snapshot) (int64, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish to %s: %w", p.channel, err)
	}
	return receivers, nil
}

// Enqueue is the board observer. It never blocks.
func (p *RedisPublisher) Enqueue(snap render.Snapshot) {
	for {
		select {
		case p.queue <- snap:
			return
		default:
		}
		select {
		case <-p.queue:
			p.logger.Debug("Publish queue full, dropping oldest snapshot")
		default:
		}
	}
}

// Run publishes queued snapshots until ctx is done
func (p *RedisPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-p.queue:
			if _, err := p.Publish(ctx, snap); err != nil {
				p.logger.Warn("Failed to publish board snapshot", zap.Error(err))
			}
		}
	}
}

// Listen subscribes to channel and calls handle for each snapshot until ctx
// is done. Malformed payloads are logged and skipped.
func Listen(ctx context.Context, client *redis.Client, channel string, logger *zap.Logger, handle func(render.Snapshot)) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var snap render.Snapshot
			if err := json.Unmarshal([]byte(msg.Payload), &snap); err != nil {
				logger.Warn("Skipping malformed board snapshot", zap.Error(err))
				continue
			}
			handle(snap)
		}
	}
}
