package dto

import (
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service"
)

// AnswerRequest - ответ на один вопрос теста
type AnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	UserAnswer string `json:"user_answer" binding:"required,max=1"`
}

// RecordAttemptRequest - завершённый тест
type RecordAttemptRequest struct {
	ExamType         string          `json:"exam_type" binding:"required,max=50"`
	Answers          []AnswerRequest `json:"answers" binding:"required,min=1,dive"`
	TimeTakenSeconds *int            `json:"time_taken_seconds" binding:"omitempty,min=0"`
	IsStudyMode      bool            `json:"is_study_mode"`
}

// ToInput переводит запрос во входные данные регистратора
func (r RecordAttemptRequest) ToInput(userID uint, displayName string) service.RecordAttemptInput {
	answers := make([]service.AnswerInput, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, service.AnswerInput{QuestionID: a.QuestionID, UserAnswer: a.UserAnswer})
	}
	return service.RecordAttemptInput{
		UserID:           userID,
		DisplayName:      displayName,
		ExamType:         r.ExamType,
		Answers:          answers,
		TimeTakenSeconds: r.TimeTakenSeconds,
		IsStudyMode:      r.IsStudyMode,
	}
}

// StartStudyRequest - запуск сессии обучения
type StartStudyRequest struct {
	ExamType string  `json:"exam_type" binding:"required,max=50"`
	Count    int     `json:"count" binding:"omitempty,min=1"`
	Domain   *string `json:"domain" binding:"omitempty,max=100"`
}

// StudyAnswerRequest - ответ на текущий вопрос сессии
type StudyAnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	UserAnswer string `json:"user_answer" binding:"required,max=1"`
}

// SelectAvatarRequest - выбор аватара
type SelectAvatarRequest struct {
	AvatarID uint `json:"avatar_id" binding:"required"`
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
}
