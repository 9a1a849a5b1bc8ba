package gamification

// CriteriaType - вид условия получения достижения
type CriteriaType string

const (
	CriteriaQuizCount             CriteriaType = "quiz_count"
	CriteriaPerfectQuizCount      CriteriaType = "perfect_quiz_count"
	CriteriaHighScoreQuizCount    CriteriaType = "high_score_quiz_count"
	CriteriaCorrectAnswersTotal   CriteriaType = "correct_answers_total"
	CriteriaStudyStreak           CriteriaType = "study_streak"
	CriteriaLevelReached          CriteriaType = "level_reached"
	CriteriaExamSpecificQuizCount CriteriaType = "exam_specific_quiz_count"
)

// Valid сообщает, известен ли тип условия
func (t CriteriaType) Valid() bool {
	switch t {
	case CriteriaQuizCount, CriteriaPerfectQuizCount, CriteriaHighScoreQuizCount,
		CriteriaCorrectAnswersTotal, CriteriaStudyStreak, CriteriaLevelReached,
		CriteriaExamSpecificQuizCount:
		return true
	}
	return false
}

// StatsSnapshot - агрегированная статистика пользователя на момент оценки.
// Счётчики попыток берутся из сохранённых попыток, серия и уровень из профиля.
type StatsSnapshot struct {
	TotalAttempts       int64
	PerfectAttempts     int64
	HighScoreAttempts   int64
	TotalCorrectAnswers int64
	StudyStreakCurrent  int
	Level               int
	AttemptsByExamType  map[string]int64
}

// Criteria - условие достижения: тип, порог и (для экзаменных) тип экзамена
type Criteria struct {
	Type     CriteriaType
	Value    int64
	ExamType string
}

// Current возвращает текущее значение метрики, с которой сравнивается порог
func (c Criteria) Current(s StatsSnapshot) int64 {
	switch c.Type {
	case CriteriaQuizCount:
		return s.TotalAttempts
	case CriteriaPerfectQuizCount:
		return s.PerfectAttempts
	case CriteriaHighScoreQuizCount:
		return s.HighScoreAttempts
	case CriteriaCorrectAnswersTotal:
		return s.TotalCorrectAnswers
	case CriteriaStudyStreak:
		return int64(s.StudyStreakCurrent)
	case CriteriaLevelReached:
		return int64(s.Level)
	case CriteriaExamSpecificQuizCount:
		if c.ExamType == "" {
			return 0
		}
		return s.AttemptsByExamType[c.ExamType]
	}
	return 0
}

// Satisfied проверяет условие. Неизвестный тип и неположительный порог
// никогда не выполняются.
func (c Criteria) Satisfied(s StatsSnapshot) bool {
	if !c.Type.Valid() || c.Value <= 0 {
		return false
	}
	if c.Type == CriteriaExamSpecificQuizCount && c.ExamType == "" {
		return false
	}
	return c.Current(s) >= c.Value
}

// Progress возвращает прогресс к порогу, не превышающий сам порог
func (c Criteria) Progress(s StatsSnapshot) int64 {
	cur := c.Current(s)
	if cur > c.Value {
		return c.Value
	}
	return cur
}
