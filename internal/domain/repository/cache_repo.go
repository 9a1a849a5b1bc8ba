package repository

import (
	"context"
	"time"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	// GetJSON возвращает ErrNotFound, если ключа нет
	GetJSON(ctx context.Context, key string, dest interface{}) error
	// IncrementWindow увеличивает счётчик и при первом увеличении ставит срок жизни окна
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}
