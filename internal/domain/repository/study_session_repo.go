package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// StudySessionRepository определяет методы для работы с сессиями обучения
type StudySessionRepository interface {
	// Create сохраняет новую сессию. Вторая активная сессия - ErrActiveSessionExists.
	Create(ctx context.Context, session *entity.StudySession) error
	GetActiveByUser(ctx context.Context, userID uint) (*entity.StudySession, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.StudySession, error)
	// AdvanceIndex сдвигает current_index с from на from+1 только если сессия активна
	// и индекс не изменился. false - кто-то успел раньше.
	AdvanceIndex(ctx context.Context, id uuid.UUID, from int) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, attemptID uint, completedAt time.Time) error
	// Abandon переводит активную сессию в abandoned. false - сессия уже не активна.
	Abandon(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SaveAnswer(ctx context.Context, answer *entity.StudyAnswer) error
	ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]entity.StudyAnswer, error)
	DeleteAnswers(ctx context.Context, sessionID uuid.UUID) error
}
