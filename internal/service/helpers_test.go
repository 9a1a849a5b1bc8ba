package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/notify"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/repository/postgres"
)

// recordingPublisher запоминает опубликованные события
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (p *recordingPublisher) Publish(_ context.Context, userID uint, events ...notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ev := range events {
		ev.UserID = userID
		p.events = append(p.events, ev)
	}
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type testEnv struct {
	db           *gorm.DB
	store        repository.Store
	tx           repository.Transactor
	publisher    *recordingPublisher
	achievements *AchievementService
	avatars      *AvatarService
	attempts     *AttemptService
	study        *StudyService
	profiles     *ProfileService
	now          time.Time
}

// newTestEnv собирает сервисы поверх SQLite в памяти с фиксированными часами
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.Profile{},
		&entity.Attempt{},
		&entity.AnswerRecord{},
		&entity.Achievement{},
		&entity.UserAchievement{},
		&entity.Avatar{},
		&entity.UserAvatar{},
		&entity.StudySession{},
		&entity.StudyAnswer{},
		&entity.Question{},
	))

	log := zap.NewNop()
	store := postgres.NewStore(db)
	tx := postgres.NewTransactor(db, 0, log)
	pub := &recordingPublisher{}

	env := &testEnv{
		db:        db,
		store:     store,
		tx:        tx,
		publisher: pub,
		now:       time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	env.achievements = NewAchievementService(store, log)
	env.avatars = NewAvatarService(store, log)
	env.attempts = NewAttemptService(tx, store, env.achievements, env.avatars, pub, time.UTC, log)
	env.study = NewStudyService(tx, store, env.attempts, 10, 50, log)
	env.profiles = NewProfileService(store, env.avatars, log)

	clock := func() time.Time { return env.now }
	env.attempts.SetClock(clock)
	env.study.SetClock(clock)
	return env
}

// seedQuestions создаёт n вопросов экзамена; правильный ответ всегда A
func (e *testEnv) seedQuestions(t *testing.T, exam string, n int) []entity.Question {
	t.Helper()
	questions := make([]entity.Question, 0, n)
	for i := 0; i < n; i++ {
		q := entity.Question{
			ExamType:      exam,
			Domain:        "networking",
			Text:          fmt.Sprintf("%s question %d", exam, i+1),
			OptionA:       "right",
			OptionB:       "wrong b",
			OptionC:       "wrong c",
			OptionD:       "wrong d",
			ExplanationA:  "because",
			ExplanationB:  "no",
			ExplanationC:  "no",
			ExplanationD:  "no",
			CorrectAnswer: entity.AnswerA,
		}
		require.NoError(t, e.db.Create(&q).Error)
		questions = append(questions, q)
	}
	return questions
}

func (e *testEnv) seedAchievement(t *testing.T, a entity.Achievement) entity.Achievement {
	t.Helper()
	require.NoError(t, e.db.Create(&a).Error)
	return a
}

func (e *testEnv) seedAvatar(t *testing.T, a entity.Avatar) entity.Avatar {
	t.Helper()
	require.NoError(t, e.db.Create(&a).Error)
	return a
}

// allCorrect строит ответы: первые correct верные (A), остальные неверные (B)
func allCorrect(questions []entity.Question, correct int) []AnswerInput {
	answers := make([]AnswerInput, 0, len(questions))
	for i, q := range questions {
		letter := entity.AnswerB
		if i < correct {
			letter = entity.AnswerA
		}
		answers = append(answers, AnswerInput{QuestionID: q.ID, UserAnswer: letter})
	}
	return answers
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
