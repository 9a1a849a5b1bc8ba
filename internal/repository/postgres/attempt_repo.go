package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create сохраняет попытку и её ответы атомарно
func (r *AttemptRepo) Create(ctx context.Context, attempt *entity.Attempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		if len(attempt.Answers) == 0 {
			return nil
		}
		for i := range attempt.Answers {
			attempt.Answers[i].AttemptID = attempt.ID
		}
		return tx.CreateInBatches(attempt.Answers, 100).Error
	})
}

// StatsForUser считает агрегаты по всем сохранённым попыткам пользователя.
// Высокий результат - не меньше 90%: сравнение в целых числах, как в подсчёте опыта.
func (r *AttemptRepo) StatsForUser(ctx context.Context, userID uint) (*repository.AttemptStats, error) {
	var totals struct {
		Total     int64
		Perfect   int64
		HighScore int64
		Correct   int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN correct_answers = total_questions THEN 1 ELSE 0 END), 0) AS perfect,
			COALESCE(SUM(CASE WHEN correct_answers * 10 >= total_questions * 9 THEN 1 ELSE 0 END), 0) AS high_score,
			COALESCE(SUM(correct_answers), 0) AS correct`).
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	var perExam []struct {
		ExamType string
		Cnt      int64
	}
	err = r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Select("exam_type, COUNT(*) AS cnt").
		Where("user_id = ?", userID).
		Group("exam_type").
		Scan(&perExam).Error
	if err != nil {
		return nil, err
	}

	stats := &repository.AttemptStats{
		TotalAttempts:       totals.Total,
		PerfectAttempts:     totals.Perfect,
		HighScoreAttempts:   totals.HighScore,
		TotalCorrectAnswers: totals.Correct,
		AttemptsByExamType:  make(map[string]int64, len(perExam)),
	}
	for _, e := range perExam {
		stats.AttemptsByExamType[e.ExamType] = e.Cnt
	}
	return stats, nil
}

// ListByUser возвращает страницу истории попыток (новые первыми) и общее количество
func (r *AttemptRepo) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]entity.Attempt, int64, error) {
	var (
		attempts []entity.Attempt
		total    int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&entity.Attempt{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Where("user_id = ?", userID).
		Order("completed_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}

// GetByUser возвращает попытку с ответами
func (r *AttemptRepo) GetByUser(ctx context.Context, userID uint, attemptID uint) (*entity.Attempt, error) {
	var attempt entity.Attempt
	db := r.db.WithContext(ctx)
	err := db.Where("id = ? AND user_id = ?", attemptID, userID).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	if err := db.Where("attempt_id = ?", attempt.ID).Order("id ASC").Find(&attempt.Answers).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}
