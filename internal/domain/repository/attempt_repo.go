package repository

import (
	"context"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// AttemptStats - агрегаты по сохранённым попыткам пользователя
type AttemptStats struct {
	TotalAttempts       int64
	PerfectAttempts     int64
	HighScoreAttempts   int64
	TotalCorrectAnswers int64
	AttemptsByExamType  map[string]int64
}

// AttemptRepository определяет методы для работы с попытками
type AttemptRepository interface {
	// Create сохраняет попытку вместе с attempt.Answers
	Create(ctx context.Context, attempt *entity.Attempt) error
	StatsForUser(ctx context.Context, userID uint) (*AttemptStats, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]entity.Attempt, int64, error)
	// GetByUser возвращает попытку пользователя с ответами; чужая попытка - ErrNotFound
	GetByUser(ctx context.Context, userID uint, attemptID uint) (*entity.Attempt, error)
}
