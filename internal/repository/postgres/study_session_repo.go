package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// StudySessionRepo реализует repository.StudySessionRepository
type StudySessionRepo struct {
	db *gorm.DB
}

// NewStudySessionRepo создает новый репозиторий сессий обучения
func NewStudySessionRepo(db *gorm.DB) *StudySessionRepo {
	return &StudySessionRepo{db: db}
}

// Create сохраняет сессию. Частичный уникальный индекс idx_study_sessions_one_active
// не даёт создать вторую активную сессию: 23505 → ErrActiveSessionExists.
func (r *StudySessionRepo) Create(ctx context.Context, session *entity.StudySession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user #%d", apperrors.ErrActiveSessionExists, session.UserID)
		}
		return err
	}
	return nil
}

// GetActiveByUser возвращает активную сессию пользователя
func (r *StudySessionRepo) GetActiveByUser(ctx context.Context, userID uint) (*entity.StudySession, error) {
	var session entity.StudySession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, entity.StudySessionActive).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetForUpdate читает сессию с блокировкой строки
func (r *StudySessionRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*entity.StudySession, error) {
	var session entity.StudySession
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// AdvanceIndex - compare-and-set по current_index
func (r *StudySessionRepo) AdvanceIndex(ctx context.Context, id uuid.UUID, from int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.StudySession{}).
		Where("id = ? AND status = ? AND current_index = ?", id, entity.StudySessionActive, from).
		Update("current_index", from+1)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Complete переводит активную сессию в completed и привязывает попытку
func (r *StudySessionRepo) Complete(ctx context.Context, id uuid.UUID, attemptID uint, completedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.StudySession{}).
		Where("id = ? AND status = ?", id, entity.StudySessionActive).
		Updates(map[string]interface{}{
			"status":       entity.StudySessionCompleted,
			"completed_at": completedAt,
			"attempt_id":   attemptID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: session %s", apperrors.ErrSessionCompleted, id)
	}
	return nil
}

// Abandon переводит активную сессию в abandoned
func (r *StudySessionRepo) Abandon(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.StudySession{}).
		Where("id = ? AND status = ?", id, entity.StudySessionActive).
		Updates(map[string]interface{}{
			"status":       entity.StudySessionAbandoned,
			"completed_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SaveAnswer сохраняет ответ на позиции. Повтор позиции - ErrQuestionMismatch.
func (r *StudySessionRepo) SaveAnswer(ctx context.Context, answer *entity.StudyAnswer) error {
	if err := r.db.WithContext(ctx).Create(answer).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: position %d already answered", apperrors.ErrQuestionMismatch, answer.Position)
		}
		return err
	}
	return nil
}

// ListAnswers возвращает ответы сессии по порядку позиций
func (r *StudySessionRepo) ListAnswers(ctx context.Context, sessionID uuid.UUID) ([]entity.StudyAnswer, error) {
	var answers []entity.StudyAnswer
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&answers).Error
	return answers, err
}

// DeleteAnswers удаляет ответы сессии
func (r *StudySessionRepo) DeleteAnswers(ctx context.Context, sessionID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&entity.StudyAnswer{}).Error
}
