package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"taskflow-server/internal/infrastructure/metrics"
)

// RedisPublisher publishes events over redis pub/sub.
type RedisPublisher struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher wraps an already-connected client.
func NewRedisPublisher(client redis.UniversalClient, logger zerolog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

// Publish marshals the payload and publishes it to the topic. Failures are
// logged and dropped.
func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("event payload marshal failed")
		return
	}
	if err := p.client.Publish(ctx, topic, data).Err(); err != nil {
		p.logger.Warn().Err(err).Str("topic", topic).Msg("event publish failed")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic).Inc()
	p.logger.Debug().Str("topic", topic).Msg("event published")
}

// RedisSubscriber consumes topics over redis pub/sub. Each topic gets its
// own goroutine; a handler is invoked at most once per received message.
type RedisSubscriber struct {
	client redis.UniversalClient
	logger zerolog.Logger
}

// NewRedisSubscriber wraps an already-connected client.
func NewRedisSubscriber(client redis.UniversalClient, logger zerolog.Logger) *RedisSubscriber {
	return &RedisSubscriber{client: client, logger: logger}
}

// Subscribe starts consuming the topic until ctx is cancelled. Handler
// panics are contained so one bad event does not stop the stream.
func (s *RedisSubscriber) Subscribe(ctx context.Context, topic string, handler Handler) {
	sub := s.client.Subscribe(ctx, topic)
	s.logger.Info().Str("topic", topic).Msg("subscribed")

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				s.deliver(ctx, topic, handler, []byte(msg.Payload))
			}
		}
	}()
}

func (s *RedisSubscriber) deliver(ctx context.Context, topic string, handler Handler, payload []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error().Interface("panic", rec).Str("topic", topic).Msg("event handler panicked")
		}
	}()
	handler(ctx, payload)
}
