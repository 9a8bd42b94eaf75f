package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis carries notifications over Redis pub/sub so every server instance
// sees writes made by the others.
type Redis struct {
	rdb *redis.Client
}

var _ Bus = (*Redis)(nil)

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := r.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

func (r *Redis) Subscribe(ctx context.Context, topic string, h Handler) (func(), error) {
	ps := r.rdb.Subscribe(ctx, topic)
	// wait for the subscription to be confirmed before returning
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ps.Channel() {
			h([]byte(msg.Payload))
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := ps.Close(); err != nil {
				log.Warn().Err(err).Str("topic", topic).Msg("failed to close redis subscription")
			}
			<-done
		})
	}, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
