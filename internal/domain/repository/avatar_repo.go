package repository

import (
	"context"
	"time"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
)

// AvatarRepository определяет методы для работы с аватарами
type AvatarRepository interface {
	ListCatalog(ctx context.Context) ([]entity.Avatar, error)
	GetByID(ctx context.Context, id uint) (*entity.Avatar, error)
	GetByIDs(ctx context.Context, ids []uint) ([]entity.Avatar, error)
	ListUnlocked(ctx context.Context, userID uint) ([]entity.UserAvatar, error)
	IsUnlocked(ctx context.Context, userID, avatarID uint) (bool, error)
	// Unlock открывает аватар. false, если он уже был открыт.
	Unlock(ctx context.Context, userID, avatarID uint, unlockedAt time.Time) (bool, error)
}
