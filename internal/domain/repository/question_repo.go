package repository

import (
	"context"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// QuestionRepository - доступ на чтение к банку вопросов
type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*entity.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]entity.Question, error)
	// RandomIDs выбирает до limit случайных вопросов экзамена (и домена, если задан)
	RandomIDs(ctx context.Context, examType string, domain *string, limit int) ([]uint, error)
}
