package entity

import (
	"time"

	"github.com/google/uuid"
)

// Статусы сессии обучения. completed и abandoned - конечные.
const (
	StudySessionActive    = "active"
	StudySessionCompleted = "completed"
	StudySessionAbandoned = "abandoned"
)

// StudySession - сессия режима обучения: вопросы по одному с мгновенной обратной связью.
// У пользователя не больше одной активной сессии (частичный уникальный индекс).
type StudySession struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index;uniqueIndex:idx_study_sessions_one_active,where:status = 'active'" json:"user_id"`
	ExamType     string     `gorm:"size:50;not null" json:"exam_type"`
	Domain       *string    `gorm:"size:100" json:"domain,omitempty"`
	QuestionIDs  IDArray    `gorm:"type:jsonb;not null" json:"question_ids"`
	CurrentIndex int        `gorm:"not null;default:0" json:"current_index"`
	Status       string     `gorm:"size:20;not null;default:'active';index" json:"status"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	AttemptID    *uint      `json:"attempt_id,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (StudySession) TableName() string {
	return "study_sessions"
}

// IsActive сообщает, принимает ли сессия ответы
func (s *StudySession) IsActive() bool {
	return s.Status == StudySessionActive
}

// TotalQuestions - число вопросов, зафиксированное при старте
func (s *StudySession) TotalQuestions() int {
	return len(s.QuestionIDs)
}

// CurrentQuestionID возвращает вопрос на текущей позиции
func (s *StudySession) CurrentQuestionID() (uint, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.QuestionIDs) {
		return 0, false
	}
	return s.QuestionIDs[s.CurrentIndex], true
}

// IsLastPosition сообщает, что текущий вопрос последний
func (s *StudySession) IsLastPosition() bool {
	return s.CurrentIndex == len(s.QuestionIDs)-1
}

// StudyAnswer - ответ внутри сессии обучения, из них собирается попытка при завершении
type StudyAnswer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SessionID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_study_answers_position,priority:1" json:"session_id"`
	Position      int       `gorm:"not null;uniqueIndex:idx_study_answers_position,priority:2" json:"position"`
	QuestionID    uint      `gorm:"not null" json:"question_id"`
	UserAnswer    string    `gorm:"size:1;not null" json:"user_answer"`
	CorrectAnswer string    `gorm:"size:1;not null" json:"correct_answer"`
	IsCorrect     bool      `gorm:"not null" json:"is_correct"`
	AnsweredAt    time.Time `gorm:"not null" json:"answered_at"`
}

// TableName определяет имя таблицы для GORM
func (StudyAnswer) TableName() string {
	return "study_answers"
}
