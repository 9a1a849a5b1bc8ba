package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// QuestionOption - вариант ответа без признака правильности
type QuestionOption struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// QuestionPrompt - вопрос в том виде, в котором его видит пользователь до ответа
type QuestionPrompt struct {
	ID       uint             `json:"id"`
	ExamType string           `json:"exam_type"`
	Domain   string           `json:"domain"`
	Text     string           `json:"text"`
	Options  []QuestionOption `json:"options"`
}

// OptionFeedback - вариант ответа с пояснением после ответа
type OptionFeedback struct {
	Letter      string `json:"letter"`
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
	IsCorrect   bool   `json:"is_correct"`
}

// StudySessionState - текущее состояние сессии обучения
type StudySessionState struct {
	Session  *entity.StudySession `json:"session"`
	Position int                  `json:"position"`
	Total    int                  `json:"total"`
	Question *QuestionPrompt      `json:"question,omitempty"`
}

// AnswerFeedback - мгновенная обратная связь на ответ
type AnswerFeedback struct {
	SessionID     uuid.UUID        `json:"session_id"`
	QuestionID    uint             `json:"question_id"`
	UserAnswer    string           `json:"user_answer"`
	CorrectAnswer string           `json:"correct_answer"`
	IsCorrect     bool             `json:"is_correct"`
	Options       []OptionFeedback `json:"options"`
	Position      int              `json:"position"`
	Total         int              `json:"total"`
	Completed     bool             `json:"completed"`
	NextQuestion  *QuestionPrompt  `json:"next_question,omitempty"`
	Result        *AttemptResult   `json:"result,omitempty"`
}

// StartStudyInput - параметры новой сессии обучения
type StartStudyInput struct {
	UserID   uint
	ExamType string
	Count    int
	Domain   *string
}

// StudyAnswerInput - ответ на текущий вопрос сессии
type StudyAnswerInput struct {
	UserID      uint
	DisplayName string
	SessionID   uuid.UUID
	QuestionID  uint
	UserAnswer  string
}

// StudyService - конечный автомат сессий обучения: active → completed | abandoned
type StudyService struct {
	tx           repository.Transactor
	store        repository.Store
	attempts     *AttemptService
	defaultCount int
	maxCount     int
	logger       *zap.Logger
	now          func() time.Time
}

// NewStudyService создает сервис сессий обучения
func NewStudyService(tx repository.Transactor, store repository.Store, attempts *AttemptService, defaultCount, maxCount int, logger *zap.Logger) *StudyService {
	if defaultCount <= 0 {
		defaultCount = 10
	}
	if maxCount < defaultCount {
		maxCount = defaultCount
	}
	return &StudyService{
		tx:           tx,
		store:        store,
		attempts:     attempts,
		defaultCount: defaultCount,
		maxCount:     maxCount,
		logger:       logger.Named("StudyService"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock подменяет источник времени
func (s *StudyService) SetClock(now func() time.Time) {
	s.now = now
}

// Start открывает сессию с фиксированным случайным набором вопросов
func (s *StudyService) Start(ctx context.Context, in StartStudyInput) (*StudySessionState, error) {
	if strings.TrimSpace(in.ExamType) == "" {
		return nil, fmt.Errorf("%w: exam_type is required", apperrors.ErrInvalidAttempt)
	}
	count := in.Count
	if count <= 0 {
		count = s.defaultCount
	}
	if count > s.maxCount {
		count = s.maxCount
	}

	var state *StudySessionState
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		_, err := store.StudySessions().GetActiveByUser(ctx, in.UserID)
		switch {
		case err == nil:
			return fmt.Errorf("%w: user #%d", apperrors.ErrActiveSessionExists, in.UserID)
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}

		ids, err := store.Questions().RandomIDs(ctx, in.ExamType, in.Domain, count)
		if err != nil {
			return fmt.Errorf("pick questions for %s: %w", in.ExamType, err)
		}
		if len(ids) == 0 {
			return fmt.Errorf("%w: exam %s", apperrors.ErrNoQuestionsAvailable, in.ExamType)
		}

		session := &entity.StudySession{
			UserID:      in.UserID,
			ExamType:    in.ExamType,
			Domain:      in.Domain,
			QuestionIDs: entity.IDArray(ids),
			Status:      entity.StudySessionActive,
			StartedAt:   s.now(),
		}
		if err := store.StudySessions().Create(ctx, session); err != nil {
			return err
		}

		state, err = sessionState(ctx, store, session)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("study session started",
		zap.Uint("user_id", in.UserID),
		zap.String("session_id", state.Session.ID.String()),
		zap.Int("questions", state.Total))
	return state, nil
}

// GetActive возвращает активную сессию и текущий вопрос. Ничего не меняет.
func (s *StudyService) GetActive(ctx context.Context, userID uint) (*StudySessionState, error) {
	session, err := s.store.StudySessions().GetActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNoActiveSession
		}
		return nil, err
	}
	return sessionState(ctx, s.store, session)
}

// Answer принимает ответ на текущий вопрос. На последнем вопросе сессия
// завершается и в той же транзакции регистрируется попытка режима обучения.
func (s *StudyService) Answer(ctx context.Context, in StudyAnswerInput) (*AnswerFeedback, error) {
	var feedback *AnswerFeedback
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		session, err := store.StudySessions().GetForUpdate(ctx, in.SessionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrSessionNotFound
			}
			return err
		}
		if session.UserID != in.UserID {
			return apperrors.ErrSessionNotFound
		}
		if !session.IsActive() {
			return fmt.Errorf("%w: session %s is %s", apperrors.ErrSessionCompleted, session.ID, session.Status)
		}
		currentID, ok := session.CurrentQuestionID()
		if !ok {
			return fmt.Errorf("%w: session %s has no current question", apperrors.ErrSessionCompleted, session.ID)
		}
		if in.QuestionID != currentID {
			return fmt.Errorf("%w: expected question #%d, got #%d", apperrors.ErrQuestionMismatch, currentID, in.QuestionID)
		}
		letter := entity.NormalizeAnswerLetter(in.UserAnswer)
		if !entity.IsValidAnswerLetter(letter) {
			return fmt.Errorf("%w: answer %q", apperrors.ErrInvalidAttempt, in.UserAnswer)
		}

		question, err := store.Questions().GetByID(ctx, currentID)
		if err != nil {
			return fmt.Errorf("load question #%d: %w", currentID, err)
		}

		position := session.CurrentIndex
		last := session.IsLastPosition()
		if err := store.StudySessions().SaveAnswer(ctx, &entity.StudyAnswer{
			SessionID:     session.ID,
			Position:      position,
			QuestionID:    question.ID,
			UserAnswer:    letter,
			CorrectAnswer: question.CorrectAnswer,
			IsCorrect:     question.IsCorrect(letter),
			AnsweredAt:    s.now(),
		}); err != nil {
			return err
		}
		advanced, err := store.StudySessions().AdvanceIndex(ctx, session.ID, position)
		if err != nil {
			return err
		}
		if !advanced {
			return fmt.Errorf("%w: position %d already answered", apperrors.ErrQuestionMismatch, position)
		}

		feedback = buildFeedback(session, question, letter)

		if last {
			result, err := s.complete(ctx, store, session, in.DisplayName)
			if err != nil {
				return err
			}
			feedback.Completed = true
			feedback.Result = result
			return nil
		}

		next, err := store.Questions().GetByID(ctx, session.QuestionIDs[position+1])
		if err != nil {
			return fmt.Errorf("load question #%d: %w", session.QuestionIDs[position+1], err)
		}
		feedback.NextQuestion = newQuestionPrompt(next)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if feedback.Result != nil {
		s.attempts.PublishResult(ctx, in.UserID, feedback.Result)
	}
	return feedback, nil
}

// complete собирает попытку из ответов сессии и закрывает сессию
func (s *StudyService) complete(ctx context.Context, store repository.Store, session *entity.StudySession, displayName string) (*AttemptResult, error) {
	answers, err := store.StudySessions().ListAnswers(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	records := make([]entity.AnswerRecord, 0, len(answers))
	for _, a := range answers {
		records = append(records, entity.AnswerRecord{
			QuestionID:    a.QuestionID,
			UserAnswer:    a.UserAnswer,
			CorrectAnswer: a.CorrectAnswer,
			IsCorrect:     a.IsCorrect,
		})
	}

	var elapsed *int
	if !session.StartedAt.IsZero() {
		secs := int(s.now().Sub(session.StartedAt).Seconds())
		if secs >= 0 {
			elapsed = &secs
		}
	}

	result, err := s.attempts.RecordGraded(ctx, store, GradedAttempt{
		UserID:           session.UserID,
		DisplayName:      displayName,
		ExamType:         session.ExamType,
		Answers:          records,
		TimeTakenSeconds: elapsed,
		IsStudyMode:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := store.StudySessions().Complete(ctx, session.ID, result.Attempt.ID, s.now()); err != nil {
		return nil, err
	}

	s.logger.Info("study session completed",
		zap.Uint("user_id", session.UserID),
		zap.String("session_id", session.ID.String()),
		zap.Uint("attempt_id", result.Attempt.ID))
	return result, nil
}

// Abandon прерывает активную сессию. Попытка не создаётся, ответы удаляются.
func (s *StudyService) Abandon(ctx context.Context, userID uint) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		session, err := store.StudySessions().GetActiveByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.ErrNoActiveSession
			}
			return err
		}
		ok, err := store.StudySessions().Abandon(ctx, session.ID, s.now())
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.ErrNoActiveSession
		}
		if err := store.StudySessions().DeleteAnswers(ctx, session.ID); err != nil {
			return err
		}
		s.logger.Info("study session abandoned",
			zap.Uint("user_id", userID),
			zap.String("session_id", session.ID.String()),
			zap.Int("position", session.CurrentIndex))
		return nil
	})
}

func sessionState(ctx context.Context, store repository.Store, session *entity.StudySession) (*StudySessionState, error) {
	state := &StudySessionState{Session: session, Position: session.CurrentIndex, Total: session.TotalQuestions()}
	if id, ok := session.CurrentQuestionID(); ok {
		q, err := store.Questions().GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load question #%d: %w", id, err)
		}
		state.Question = newQuestionPrompt(q)
	}
	return state, nil
}

func newQuestionPrompt(q *entity.Question) *QuestionPrompt {
	p := &QuestionPrompt{ID: q.ID, ExamType: q.ExamType, Domain: q.Domain, Text: q.Text}
	for _, letter := range entity.AnswerLetters {
		p.Options = append(p.Options, QuestionOption{Letter: letter, Text: q.OptionText(letter)})
	}
	return p
}

func buildFeedback(session *entity.StudySession, q *entity.Question, letter string) *AnswerFeedback {
	fb := &AnswerFeedback{
		SessionID:     session.ID,
		QuestionID:    q.ID,
		UserAnswer:    letter,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     q.IsCorrect(letter),
		Position:      session.CurrentIndex + 1,
		Total:         session.TotalQuestions(),
	}
	for _, l := range entity.AnswerLetters {
		fb.Options = append(fb.Options, OptionFeedback{
			Letter:      l,
			Text:        q.OptionText(l),
			Explanation: q.Explanation(l),
			IsCorrect:   l == q.CorrectAnswer,
		})
	}
	return fb
}
