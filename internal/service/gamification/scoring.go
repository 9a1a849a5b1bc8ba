package gamification

import (
	"fmt"

	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
)

// XPPerCorrectAnswer - базовый опыт за один правильный ответ
const XPPerCorrectAnswer = 10

// Пороги бонуса за точность (включительные нижние границы, в процентах)
const (
	HighScorePercent = 90
	GoodScorePercent = 80
	FairScorePercent = 70
)

// Multiplier - множитель опыта в виде дроби, чтобы floor считался точно в целых числах
type Multiplier struct {
	Num int64
	Den int64
}

var (
	multiplierHigh  = Multiplier{Num: 3, Den: 2}   // 1.5
	multiplierGood  = Multiplier{Num: 5, Den: 4}   // 1.25
	multiplierFair  = Multiplier{Num: 11, Den: 10} // 1.10
	multiplierNone  = Multiplier{Num: 1, Den: 1}
	multiplierStudy = Multiplier{Num: 3, Den: 4} // 0.75, режим обучения
)

// Float возвращает множитель как число с плавающей точкой (для ответа клиенту)
func (m Multiplier) Float() float64 {
	return float64(m.Num) / float64(m.Den)
}

// apply возвращает floor(value * m) для неотрицательных value
func (m Multiplier) apply(value int64) int64 {
	return value * m.Num / m.Den
}

// ScoreResult - результат подсчёта попытки
type ScoreResult struct {
	CorrectAnswers  int
	TotalQuestions  int
	ScorePercentage float64
	BaseXP          int64
	Multiplier      float64
	StudyMode       bool
	XPEarned        int64
}

// IsPerfect сообщает, все ли ответы верны
func (r ScoreResult) IsPerfect() bool {
	return r.CorrectAnswers == r.TotalQuestions
}

// Score подсчитывает процент и опыт за попытку.
// Чистая функция: без побочных эффектов.
func Score(correctAnswers, totalQuestions int, studyMode bool) (ScoreResult, error) {
	if totalQuestions <= 0 {
		return ScoreResult{}, fmt.Errorf("%w: total questions must be positive, got %d", apperrors.ErrInvalidAttempt, totalQuestions)
	}
	if correctAnswers < 0 || correctAnswers > totalQuestions {
		return ScoreResult{}, fmt.Errorf("%w: correct answers %d out of range 0..%d", apperrors.ErrInvalidAttempt, correctAnswers, totalQuestions)
	}

	base := int64(correctAnswers) * XPPerCorrectAnswer
	m := AccuracyMultiplier(correctAnswers, totalQuestions)
	xp := m.apply(base)
	if studyMode {
		xp = multiplierStudy.apply(xp)
	}

	return ScoreResult{
		CorrectAnswers:  correctAnswers,
		TotalQuestions:  totalQuestions,
		ScorePercentage: ScorePercentage(correctAnswers, totalQuestions),
		BaseXP:          base,
		Multiplier:      m.Float(),
		StudyMode:       studyMode,
		XPEarned:        xp,
	}, nil
}

// ScorePercentage возвращает 100*correct/total без округления.
// Округление - забота слоя отображения.
func ScorePercentage(correctAnswers, totalQuestions int) float64 {
	if totalQuestions <= 0 {
		return 0
	}
	return float64(100*correctAnswers) / float64(totalQuestions)
}

// AccuracyMultiplier выбирает бонус за точность. Сравнение идёт в целых
// числах (100*correct >= threshold*total), чтобы 27/30 ровно попадало в 90%.
func AccuracyMultiplier(correctAnswers, totalQuestions int) Multiplier {
	scaled := int64(correctAnswers) * 100
	total := int64(totalQuestions)
	switch {
	case scaled >= HighScorePercent*total:
		return multiplierHigh
	case scaled >= GoodScorePercent*total:
		return multiplierGood
	case scaled >= FairScorePercent*total:
		return multiplierFair
	default:
		return multiplierNone
	}
}

// IsHighScore - попытка с результатом не ниже 90%
func IsHighScore(correctAnswers, totalQuestions int) bool {
	return totalQuestions > 0 && int64(correctAnswers)*100 >= HighScorePercent*int64(totalQuestions)
}
