package entity

import (
	"fmt"
	"time"

	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service/gamification"
)

// Profile - игровой профиль пользователя: опыт, уровень, серия, счётчики.
// Пишет в него только регистратор попыток.
type Profile struct {
	UserID                 uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	DisplayName            string     `gorm:"size:100;not null;default:''" json:"display_name"`
	XP                     int64      `gorm:"not null;default:0;index:idx_profiles_xp" json:"xp"`
	Level                  int        `gorm:"not null;default:1" json:"level"`
	StudyStreakCurrent     int        `gorm:"not null;default:0;index:idx_profiles_streak" json:"study_streak_current"`
	StudyStreakLongest     int        `gorm:"not null;default:0" json:"study_streak_longest"`
	TotalAttemptsTaken     int64      `gorm:"not null;default:0" json:"total_attempts_taken"`
	TotalQuestionsAnswered int64      `gorm:"not null;default:0" json:"total_questions_answered"`
	LastActivityDate       *time.Time `gorm:"type:date" json:"last_activity_date,omitempty"`
	SelectedAvatarID       *uint      `json:"selected_avatar_id,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Profile) TableName() string {
	return "profiles"
}

// NewProfile создаёт профиль первого уровня с нулевым опытом
func NewProfile(userID uint, displayName string) *Profile {
	return &Profile{UserID: userID, DisplayName: displayName, Level: 1}
}

// ApplyXP начисляет опыт и пересчитывает кешированный уровень.
// Опыт никогда не уменьшается, поэтому отрицательная дельта - ошибка.
// Возвращает true, если уровень вырос.
func (p *Profile) ApplyXP(delta int64) (bool, error) {
	if delta < 0 {
		return false, fmt.Errorf("%w: negative xp delta %d", apperrors.ErrInvalidXP, delta)
	}
	newLevel, err := gamification.LevelFromXP(p.XP + delta)
	if err != nil {
		return false, err
	}
	old := p.Level
	p.XP += delta
	p.Level = newLevel
	return newLevel > old, nil
}

// RecomputeLevel выравнивает кешированный уровень по опыту.
// Возвращает true, если значение пришлось исправить.
func (p *Profile) RecomputeLevel() (bool, error) {
	level, err := gamification.LevelFromXP(p.XP)
	if err != nil {
		return false, err
	}
	if level == p.Level {
		return false, nil
	}
	p.Level = level
	return true, nil
}

// RecordActivity обновляет серию учебных дней на момент now в поясе loc
func (p *Profile) RecordActivity(now time.Time, loc *time.Location) {
	upd := gamification.NextStreak(p.StudyStreakCurrent, p.StudyStreakLongest, p.LastActivityDate, now, loc)
	p.StudyStreakCurrent = upd.Current
	p.StudyStreakLongest = upd.Longest
	day := upd.ActivityDate
	p.LastActivityDate = &day
}
