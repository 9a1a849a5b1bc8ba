package repository

import (
	"context"
	"time"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// LeaderboardFilter - параметры построения рейтинга
type LeaderboardFilter struct {
	Board       entity.LeaderboardBoard
	Since       *time.Time // nil - за всё время
	ExamType    string
	MinAttempts int
	Limit       int
}

// LeaderboardRepository строит рейтинги. Только чтение, без блокировок.
type LeaderboardRepository interface {
	Top(ctx context.Context, f LeaderboardFilter) ([]entity.LeaderboardEntry, error)
	// UserEntry возвращает позицию пользователя по тому же правилу ранжирования.
	// ErrNotFound, если пользователь не попадает в рейтинг.
	UserEntry(ctx context.Context, f LeaderboardFilter, userID uint) (*entity.LeaderboardEntry, error)
}
