package postgres

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
)

const retryBaseDelay = 20 * time.Millisecond

// Transactor реализует repository.Transactor.
// При взаимоблокировке или конфликте сериализации транзакция повторяется целиком
// не более maxRetries раз.
type Transactor struct {
	db         *gorm.DB
	maxRetries int
	logger     *zap.Logger
}

// NewTransactor создаёт Transactor
func NewTransactor(db *gorm.DB, maxRetries int, logger *zap.Logger) *Transactor {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Transactor{db: db, maxRetries: maxRetries, logger: logger.Named("Transactor")}
}

// WithinTx выполняет fn в транзакции
func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) error {
	for attempt := 0; ; attempt++ {
		err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(ctx, NewStore(tx))
		})
		if err == nil || !isRetryable(err) || attempt >= t.maxRetries {
			return err
		}

		delay := retryBaseDelay * time.Duration(1<<attempt)
		t.logger.Warn("transaction conflict, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
