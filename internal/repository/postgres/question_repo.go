package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository (только чтение)
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	var question entity.Question
	if err := r.db.WithContext(ctx).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// GetByIDs возвращает найденные вопросы; отсутствующие ID просто не попадают в результат
func (r *QuestionRepo) GetByIDs(ctx context.Context, ids []uint) ([]entity.Question, error) {
	var questions []entity.Question
	if len(ids) == 0 {
		return questions, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// RandomIDs выбирает случайные вопросы через ORDER BY RANDOM()
func (r *QuestionRepo) RandomIDs(ctx context.Context, examType string, domain *string, limit int) ([]uint, error) {
	var ids []uint
	query := r.db.WithContext(ctx).Model(&entity.Question{}).Where("exam_type = ?", examType)
	if domain != nil && *domain != "" {
		query = query.Where("domain = ?", *domain)
	}
	err := query.Order("RANDOM()").Limit(limit).Pluck("id", &ids).Error
	return ids, err
}
