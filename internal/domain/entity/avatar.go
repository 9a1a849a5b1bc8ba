package entity

import "time"

// Avatar - аватар из каталога. Стандартные доступны всем, остальные открываются достижениями.
type Avatar struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Name                  string    `gorm:"size:100;not null" json:"name"`
	ImageURL              string    `gorm:"size:255;not null" json:"image_url"`
	IsDefault             bool      `gorm:"not null;default:false" json:"is_default"`
	RequiredAchievementID *uint     `json:"required_achievement_id,omitempty"`
	DisplayOrder          int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt             time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Avatar) TableName() string {
	return "avatars"
}

// UserAvatar - открытый пользователем аватар
type UserAvatar struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_avatars_unique,priority:1" json:"user_id"`
	AvatarID   uint      `gorm:"not null;uniqueIndex:idx_user_avatars_unique,priority:2" json:"avatar_id"`
	UnlockedAt time.Time `gorm:"not null" json:"unlocked_at"`
}

// TableName определяет имя таблицы для GORM
func (UserAvatar) TableName() string {
	return "user_avatars"
}
