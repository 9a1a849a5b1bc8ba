package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/notify"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service/gamification"
)

// AnswerInput - ответ пользователя на один вопрос
type AnswerInput struct {
	QuestionID uint   `json:"question_id"`
	UserAnswer string `json:"user_answer"`
}

// RecordAttemptInput - завершённый тест, присланный клиентом
type RecordAttemptInput struct {
	UserID           uint
	DisplayName      string
	ExamType         string
	Answers          []AnswerInput
	TimeTakenSeconds *int
	IsStudyMode      bool
}

// GradedAttempt - попытка с уже проверенными ответами
type GradedAttempt struct {
	UserID           uint
	DisplayName      string
	ExamType         string
	Answers          []entity.AnswerRecord
	TimeTakenSeconds *int
	IsStudyMode      bool
}

// AttemptResult - итог регистрации попытки. Форма JSON стабильна.
type AttemptResult struct {
	Attempt              *entity.Attempt      `json:"attempt"`
	XPEarned             int64                `json:"xp_earned"`
	TotalXP              int64                `json:"total_xp"`
	NewLevel             int                  `json:"new_level"`
	PreviousLevel        int                  `json:"previous_level"`
	LevelUp              bool                 `json:"level_up"`
	XPToNextLevel        int64                `json:"xp_to_next_level"`
	AchievementsUnlocked []entity.Achievement `json:"achievements_unlocked"`
	AvatarsUnlocked      []entity.Avatar      `json:"avatars_unlocked"`
}

// AttemptPage - страница истории попыток
type AttemptPage struct {
	Attempts []entity.Attempt `json:"attempts"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// AttemptService - единственный писатель опыта, уровней, достижений и аватаров
type AttemptService struct {
	tx           repository.Transactor
	store        repository.Store
	achievements *AchievementService
	avatars      *AvatarService
	publisher    notify.Publisher
	loc          *time.Location
	logger       *zap.Logger
	now          func() time.Time
}

// NewAttemptService создает регистратор попыток
func NewAttemptService(
	tx repository.Transactor,
	store repository.Store,
	achievements *AchievementService,
	avatars *AvatarService,
	publisher notify.Publisher,
	loc *time.Location,
	logger *zap.Logger,
) *AttemptService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttemptService{
		tx:           tx,
		store:        store,
		achievements: achievements,
		avatars:      avatars,
		publisher:    publisher,
		loc:          loc,
		logger:       logger.Named("AttemptService"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock подменяет источник времени для сервиса и зависимых оценщиков
func (s *AttemptService) SetClock(now func() time.Time) {
	s.now = now
	s.achievements.SetClock(now)
	s.avatars.SetClock(now)
}

// RecordAttempt проверяет ответы по банку вопросов и регистрирует попытку в одной транзакции
func (s *AttemptService) RecordAttempt(ctx context.Context, in RecordAttemptInput) (*AttemptResult, error) {
	if err := validateAttemptInput(in); err != nil {
		return nil, err
	}

	var result *AttemptResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, store repository.Store) error {
		answers, err := gradeAnswers(ctx, store, in.ExamType, in.Answers)
		if err != nil {
			return err
		}
		result, err = s.RecordGraded(ctx, store, GradedAttempt{
			UserID:           in.UserID,
			DisplayName:      in.DisplayName,
			ExamType:         in.ExamType,
			Answers:          answers,
			TimeTakenSeconds: in.TimeTakenSeconds,
			IsStudyMode:      in.IsStudyMode,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.PublishResult(ctx, in.UserID, result)
	return result, nil
}

// RecordGraded выполняет шаги регистрации на store текущей транзакции.
// Публикацию событий вызывающий делает сам, после фиксации.
func (s *AttemptService) RecordGraded(ctx context.Context, store repository.Store, g GradedAttempt) (*AttemptResult, error) {
	correct := 0
	for _, a := range g.Answers {
		if a.IsCorrect {
			correct++
		}
	}
	score, err := gamification.Score(correct, len(g.Answers), g.IsStudyMode)
	if err != nil {
		return nil, err
	}

	if err := store.Profiles().EnsureExists(ctx, g.UserID, g.DisplayName); err != nil {
		return nil, fmt.Errorf("ensure profile for user #%d: %w", g.UserID, err)
	}
	profile, err := store.Profiles().GetForUpdate(ctx, g.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock profile for user #%d: %w", g.UserID, err)
	}

	now := s.now()
	attempt := &entity.Attempt{
		UserID:           g.UserID,
		ExamType:         g.ExamType,
		TotalQuestions:   score.TotalQuestions,
		CorrectAnswers:   score.CorrectAnswers,
		ScorePercentage:  score.ScorePercentage,
		TimeTakenSeconds: g.TimeTakenSeconds,
		XPEarned:         score.XPEarned,
		IsStudyMode:      g.IsStudyMode,
		CompletedAt:      now,
		Answers:          g.Answers,
	}
	if err := store.Attempts().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt for user #%d: %w", g.UserID, err)
	}

	previousLevel := profile.Level
	if _, err := profile.ApplyXP(score.XPEarned); err != nil {
		return nil, err
	}
	profile.TotalAttemptsTaken++
	profile.TotalQuestionsAnswered += int64(score.TotalQuestions)
	profile.RecordActivity(now, s.loc)

	stats, err := store.Attempts().StatsForUser(ctx, g.UserID)
	if err != nil {
		return nil, fmt.Errorf("load attempt stats for user #%d: %w", g.UserID, err)
	}
	snap := buildSnapshot(stats, profile)

	// Награды за достижения могут поднять уровень и открыть level_reached,
	// поэтому оценка повторяется, пока уровень меняется.
	var unlocked []entity.Achievement
	for {
		batch, err := s.achievements.Evaluate(ctx, store, g.UserID, snap)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		unlocked = append(unlocked, batch...)

		levelBefore := profile.Level
		for _, a := range batch {
			if _, err := profile.ApplyXP(a.XPReward); err != nil {
				return nil, err
			}
		}
		if profile.Level == levelBefore {
			break
		}
		snap.Level = profile.Level
	}

	avatars, err := s.avatars.UnlockAvatarsFor(ctx, store, g.UserID, unlocked)
	if err != nil {
		return nil, err
	}

	if err := store.Profiles().Save(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile for user #%d: %w", g.UserID, err)
	}

	toNext, err := gamification.XPToNextLevel(profile.XP)
	if err != nil {
		return nil, err
	}

	if unlocked == nil {
		unlocked = []entity.Achievement{}
	}
	if avatars == nil {
		avatars = []entity.Avatar{}
	}

	s.logger.Info("attempt recorded",
		zap.Uint("user_id", g.UserID),
		zap.Uint("attempt_id", attempt.ID),
		zap.String("exam_type", g.ExamType),
		zap.Int64("xp_earned", score.XPEarned),
		zap.Bool("perfect", score.IsPerfect()),
		zap.Int("level", profile.Level),
		zap.Int("achievements", len(unlocked)),
		zap.Bool("study_mode", g.IsStudyMode))

	return &AttemptResult{
		Attempt:              attempt,
		XPEarned:             score.XPEarned,
		TotalXP:              profile.XP,
		NewLevel:             profile.Level,
		PreviousLevel:        previousLevel,
		LevelUp:              profile.Level > previousLevel,
		XPToNextLevel:        toNext,
		AchievementsUnlocked: unlocked,
		AvatarsUnlocked:      avatars,
	}, nil
}

// PublishResult рассылает события по итогам зафиксированной попытки
func (s *AttemptService) PublishResult(ctx context.Context, userID uint, r *AttemptResult) {
	if s.publisher == nil || r == nil {
		return
	}
	now := s.now()
	events := []notify.Event{{
		Type:       notify.EventAttemptRecorded,
		OccurredAt: now,
		Data: map[string]interface{}{
			"attempt_id":       r.Attempt.ID,
			"exam_type":        r.Attempt.ExamType,
			"score_percentage": r.Attempt.ScorePercentage,
			"high_score":       gamification.IsHighScore(r.Attempt.CorrectAnswers, r.Attempt.TotalQuestions),
			"xp_earned":        r.XPEarned,
			"total_xp":         r.TotalXP,
		},
	}}
	if r.LevelUp {
		events = append(events, notify.Event{
			Type:       notify.EventLevelUp,
			OccurredAt: now,
			Data:       map[string]int{"previous_level": r.PreviousLevel, "new_level": r.NewLevel},
		})
	}
	for _, a := range r.AchievementsUnlocked {
		events = append(events, notify.Event{Type: notify.EventAchievementUnlocked, OccurredAt: now, Data: a})
	}
	for _, av := range r.AvatarsUnlocked {
		events = append(events, notify.Event{Type: notify.EventAvatarUnlocked, OccurredAt: now, Data: av})
	}
	s.publisher.Publish(ctx, userID, events...)
}

// ListAttempts возвращает историю попыток, новые первыми
func (s *AttemptService) ListAttempts(ctx context.Context, userID uint, page, pageSize int) (*AttemptPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	attempts, total, err := s.store.Attempts().ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	return &AttemptPage{Attempts: attempts, Total: total, Page: page, PageSize: pageSize}, nil
}

// GetAttempt возвращает попытку пользователя вместе с ответами
func (s *AttemptService) GetAttempt(ctx context.Context, userID, attemptID uint) (*entity.Attempt, error) {
	return s.store.Attempts().GetByUser(ctx, userID, attemptID)
}

func validateAttemptInput(in RecordAttemptInput) error {
	if strings.TrimSpace(in.ExamType) == "" {
		return fmt.Errorf("%w: exam_type is required", apperrors.ErrInvalidAttempt)
	}
	if len(in.Answers) == 0 {
		return fmt.Errorf("%w: answers are empty", apperrors.ErrInvalidAttempt)
	}
	if in.TimeTakenSeconds != nil && *in.TimeTakenSeconds < 0 {
		return fmt.Errorf("%w: negative time_taken_seconds", apperrors.ErrInvalidAttempt)
	}
	seen := make(map[uint]struct{}, len(in.Answers))
	for _, a := range in.Answers {
		if !entity.IsValidAnswerLetter(entity.NormalizeAnswerLetter(a.UserAnswer)) {
			return fmt.Errorf("%w: answer %q for question #%d", apperrors.ErrInvalidAttempt, a.UserAnswer, a.QuestionID)
		}
		if _, dup := seen[a.QuestionID]; dup {
			return fmt.Errorf("%w: duplicate question #%d", apperrors.ErrInvalidAttempt, a.QuestionID)
		}
		seen[a.QuestionID] = struct{}{}
	}
	return nil
}

// gradeAnswers сверяет ответы с банком вопросов. Неизвестный вопрос или вопрос
// другого экзамена - ErrInvalidAttempt.
func gradeAnswers(ctx context.Context, store repository.Store, examType string, answers []AnswerInput) ([]entity.AnswerRecord, error) {
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	questions, err := store.Questions().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	byID := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	records := make([]entity.AnswerRecord, 0, len(answers))
	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown question #%d", apperrors.ErrInvalidAttempt, a.QuestionID)
		}
		if q.ExamType != examType {
			return nil, fmt.Errorf("%w: question #%d belongs to exam %q, not %q",
				apperrors.ErrInvalidAttempt, q.ID, q.ExamType, examType)
		}
		letter := entity.NormalizeAnswerLetter(a.UserAnswer)
		records = append(records, entity.AnswerRecord{
			QuestionID:    q.ID,
			UserAnswer:    letter,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     q.IsCorrect(letter),
		})
	}
	return records, nil
}
