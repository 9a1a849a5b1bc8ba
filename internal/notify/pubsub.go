package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSubProvider определяет интерфейс для провайдеров публикации/подписки
type PubSubProvider interface {
	// Publish публикует сообщение в указанный канал
	Publish(ctx context.Context, channel string, message []byte) error

	// Subscribe подписывается на канал. Канал сообщений закрывается, когда ctx отменён
	// или подписка оборвалась.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// NoOpPubSub используется, когда Redis недоступен: публикации теряются, подписки пустые
type NoOpPubSub struct{}

// Publish ничего не делает
func (NoOpPubSub) Publish(context.Context, string, []byte) error { return nil }

// Subscribe возвращает канал, закрывающийся вместе с ctx
func (NoOpPubSub) Subscribe(ctx context.Context, _ string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// RedisPubSub реализует PubSubProvider на Redis Pub/Sub
type RedisPubSub struct {
	client redis.UniversalClient
	logger *zap.Logger
	buffer int
}

// NewRedisPubSub создает Redis Pub/Sub провайдер поверх существующего клиента
func NewRedisPubSub(client redis.UniversalClient, logger *zap.Logger) (*RedisPubSub, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil for RedisPubSub")
	}
	return &RedisPubSub{client: client, logger: logger.Named("RedisPubSub"), buffer: 32}, nil
}

// Publish публикует сообщение в указанный канал
func (p *RedisPubSub) Publish(ctx context.Context, channel string, message []byte) error {
	if err := p.client.Publish(ctx, channel, message).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe подписывается на канал Redis. Каждый подписчик получает свою подписку.
func (p *RedisPubSub) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	pubsub := p.client.Subscribe(ctx, channel)

	// Ждем подтверждения подписки
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to Redis channel %s: %w", channel, err)
	}

	out := make(chan []byte, p.buffer)
	go func() {
		defer func() {
			_ = pubsub.Close()
			close(out)
		}()

		redisCh := pubsub.Channel()
		for {
			select {
			case msg, ok := <-redisCh:
				if !ok {
					p.logger.Debug("redis channel closed", zap.String("channel", channel))
					return
				}
				select {
				case out <- []byte(msg.Payload):
				default:
					p.logger.Warn("subscriber buffer full, dropping message", zap.String("channel", channel))
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
