package entity

import "time"

// LeaderboardBoard - вид рейтинга
type LeaderboardBoard string

const (
	BoardXP        LeaderboardBoard = "xp"
	BoardQuizCount LeaderboardBoard = "quiz_count"
	BoardAccuracy  LeaderboardBoard = "accuracy"
	BoardStreak    LeaderboardBoard = "streak"
	BoardExam      LeaderboardBoard = "exam"
)

// AllBoards - доступные рейтинги в порядке отображения
var AllBoards = []LeaderboardBoard{BoardXP, BoardQuizCount, BoardAccuracy, BoardStreak, BoardExam}

// Valid сообщает, известен ли рейтинг
func (b LeaderboardBoard) Valid() bool {
	for _, known := range AllBoards {
		if b == known {
			return true
		}
	}
	return false
}

// LeaderboardPeriod - окно времени, в котором учитываются попытки
type LeaderboardPeriod string

const (
	PeriodAllTime LeaderboardPeriod = "all_time"
	PeriodMonthly LeaderboardPeriod = "monthly"
	PeriodWeekly  LeaderboardPeriod = "weekly"
)

// Valid сообщает, известен ли период
func (p LeaderboardPeriod) Valid() bool {
	switch p {
	case PeriodAllTime, PeriodMonthly, PeriodWeekly:
		return true
	}
	return false
}

// Since возвращает начало окна для момента now; для all_time - nil.
// Окна скользящие: 7 и 30 суток назад.
func (p LeaderboardPeriod) Since(now time.Time) *time.Time {
	var since time.Time
	switch p {
	case PeriodWeekly:
		since = now.AddDate(0, 0, -7)
	case PeriodMonthly:
		since = now.AddDate(0, 0, -30)
	default:
		return nil
	}
	return &since
}

// LeaderboardEntry - строка рейтинга. Rank - соревновательный (1,1,3).
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       uint    `json:"user_id"`
	DisplayName  string  `json:"display_name"`
	Level        int     `json:"level"`
	Value        float64 `json:"value"`
	AttemptCount int64   `json:"attempt_count"`
}
