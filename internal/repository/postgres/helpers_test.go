package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// newTestDB поднимает SQLite в памяти с той же схемой, что и миграции
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// у каждого соединения своя база в памяти
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
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, p entity.Profile) {
	t.Helper()
	if p.Level == 0 {
		p.Level = 1
	}
	require.NoError(t, db.Create(&p).Error)
}

func seedAttempt(t *testing.T, db *gorm.DB, userID uint, exam string, correct, total int, xp int64, at time.Time) {
	t.Helper()
	a := entity.Attempt{
		UserID:          userID,
		ExamType:        exam,
		TotalQuestions:  total,
		CorrectAnswers:  correct,
		ScorePercentage: float64(100*correct) / float64(total),
		XPEarned:        xp,
		CompletedAt:     at.UTC(),
	}
	require.NoError(t, db.Create(&a).Error)
}
