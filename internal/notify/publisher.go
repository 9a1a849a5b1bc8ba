package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Типы событий движка геймификации
const (
	EventAttemptRecorded     = "attempt:recorded"
	EventAchievementUnlocked = "achievement:unlocked"
	EventAvatarUnlocked      = "avatar:unlocked"
	EventLevelUp             = "profile:level_up"
)

// Event - событие для внешних подписчиков (UI, рассылки). Доставка не гарантируется.
type Event struct {
	Type       string      `json:"type"`
	UserID     uint        `json:"user_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

// Publisher публикует события пользователя после фиксации транзакции
type Publisher interface {
	Publish(ctx context.Context, userID uint, events ...Event)
}

// Subscriber отдаёт поток событий пользователя
type Subscriber interface {
	SubscribeUser(ctx context.Context, userID uint) (<-chan []byte, error)
}

// ChannelPublisher раскладывает события по каналам вида <prefix><user_id>
type ChannelPublisher struct {
	provider PubSubProvider
	prefix   string
	logger   *zap.Logger
}

// NewChannelPublisher создаёт публикатор событий
func NewChannelPublisher(provider PubSubProvider, prefix string, logger *zap.Logger) *ChannelPublisher {
	return &ChannelPublisher{provider: provider, prefix: prefix, logger: logger.Named("EventPublisher")}
}

// Channel возвращает имя канала пользователя
func (p *ChannelPublisher) Channel(userID uint) string {
	return fmt.Sprintf("%s%d", p.prefix, userID)
}

// Publish отправляет события. Ошибки только логируются: к этому моменту
// изменения уже зафиксированы и откатывать нечего.
func (p *ChannelPublisher) Publish(ctx context.Context, userID uint, events ...Event) {
	channel := p.Channel(userID)
	for _, ev := range events {
		ev.UserID = userID
		payload, err := json.Marshal(ev)
		if err != nil {
			p.logger.Error("failed to marshal event", zap.String("type", ev.Type), zap.Error(err))
			continue
		}
		if err := p.provider.Publish(ctx, channel, payload); err != nil {
			p.logger.Warn("failed to publish event",
				zap.String("type", ev.Type),
				zap.Uint("user_id", userID),
				zap.Error(err))
		}
	}
}

// SubscribeUser подписывается на канал пользователя
func (p *ChannelPublisher) SubscribeUser(ctx context.Context, userID uint) (<-chan []byte, error) {
	return p.provider.Subscribe(ctx, p.Channel(userID))
}
