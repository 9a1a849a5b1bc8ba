package entity

import (
	"time"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service/gamification"
)

// Achievement - запись статического каталога достижений
type Achievement struct {
	ID               uint                      `gorm:"primaryKey" json:"id"`
	Code             string                    `gorm:"size:64;not null;uniqueIndex" json:"code"`
	Name             string                    `gorm:"size:100;not null" json:"name"`
	Description      string                    `gorm:"size:500;not null;default:''" json:"description"`
	IconURL          string                    `gorm:"size:255;not null;default:''" json:"icon_url"`
	CriteriaType     gamification.CriteriaType `gorm:"size:40;not null" json:"criteria_type"`
	CriteriaValue    int64                     `gorm:"not null" json:"criteria_value"`
	CriteriaExamType *string                   `gorm:"size:50" json:"criteria_exam_type,omitempty"`
	XPReward         int64                     `gorm:"not null;default:0" json:"xp_reward"`
	IsHidden         bool                      `gorm:"not null;default:false" json:"is_hidden"`
	UnlocksAvatarID  *uint                     `json:"unlocks_avatar_id,omitempty"`
	DisplayOrder     int                       `gorm:"not null;default:0;index" json:"display_order"`
	CreatedAt        time.Time                 `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Achievement) TableName() string {
	return "achievements"
}

// Criteria возвращает условие достижения в виде вычислимого значения
func (a *Achievement) Criteria() gamification.Criteria {
	c := gamification.Criteria{Type: a.CriteriaType, Value: a.CriteriaValue}
	if a.CriteriaExamType != nil {
		c.ExamType = *a.CriteriaExamType
	}
	return c
}

// UserAchievement - факт получения достижения. Пара (user_id, achievement_id) уникальна.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievements_unique,priority:1" json:"user_id"`
	AchievementID uint      `gorm:"not null;uniqueIndex:idx_user_achievements_unique,priority:2;index" json:"achievement_id"`
	EarnedAt      time.Time `gorm:"not null" json:"earned_at"`
}

// TableName определяет имя таблицы для GORM
func (UserAchievement) TableName() string {
	return "user_achievements"
}
