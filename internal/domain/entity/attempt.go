package entity

import (
	"time"
)

// Attempt - завершённая попытка (тест или сессия обучения). После записи не меняется.
type Attempt struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index:idx_attempts_user_completed,priority:1" json:"user_id"`
	ExamType         string         `gorm:"size:50;not null;index" json:"exam_type"`
	TotalQuestions   int            `gorm:"not null" json:"total_questions"`
	CorrectAnswers   int            `gorm:"not null" json:"correct_answers"`
	ScorePercentage  float64        `gorm:"not null" json:"score_percentage"`
	TimeTakenSeconds *int           `json:"time_taken_seconds,omitempty"`
	XPEarned         int64          `gorm:"not null;default:0" json:"xp_earned"`
	IsStudyMode      bool           `gorm:"not null;default:false" json:"is_study_mode"`
	CompletedAt      time.Time      `gorm:"not null;index:idx_attempts_user_completed,priority:2;index" json:"completed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	Answers          []AnswerRecord `gorm:"-" json:"answers,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// AnswerRecord - ответ на один вопрос в рамках попытки
type AnswerRecord struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AttemptID     uint   `gorm:"not null;index" json:"attempt_id"`
	QuestionID    uint   `gorm:"not null;index" json:"question_id"`
	UserAnswer    string `gorm:"size:1;not null" json:"user_answer"`
	CorrectAnswer string `gorm:"size:1;not null" json:"correct_answer"`
	IsCorrect     bool   `gorm:"not null" json:"is_correct"`
}

// TableName определяет имя таблицы для GORM
func (AnswerRecord) TableName() string {
	return "attempt_answers"
}
