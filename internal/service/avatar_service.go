package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
)

// AvatarStatus - аватар каталога с признаками владения и выбора
type AvatarStatus struct {
	entity.Avatar
	Owned      bool       `json:"owned"`
	Selected   bool       `json:"selected"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}

// AvatarService открывает аватары за достижения и показывает каталог
type AvatarService struct {
	store  repository.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewAvatarService создает сервис аватаров
func NewAvatarService(store repository.Store, logger *zap.Logger) *AvatarService {
	return &AvatarService{
		store:  store,
		logger: logger.Named("AvatarService"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock подменяет источник времени
func (s *AvatarService) SetClock(now func() time.Time) {
	s.now = now
}

// UnlockAvatarsFor открывает аватары, привязанные к только что полученным достижениям.
// Опыта не даёт и дальше не каскадирует. Возвращает только новые аватары.
func (s *AvatarService) UnlockAvatarsFor(ctx context.Context, store repository.Store, userID uint, achievements []entity.Achievement) ([]entity.Avatar, error) {
	now := s.now()
	var ids []uint
	seen := make(map[uint]struct{})
	for _, a := range achievements {
		if a.UnlocksAvatarID == nil {
			continue
		}
		avatarID := *a.UnlocksAvatarID
		if _, dup := seen[avatarID]; dup {
			continue
		}
		seen[avatarID] = struct{}{}

		inserted, err := store.Avatars().Unlock(ctx, userID, avatarID, now)
		if err != nil {
			return nil, fmt.Errorf("unlock avatar #%d for user #%d: %w", avatarID, userID, err)
		}
		if inserted {
			ids = append(ids, avatarID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return store.Avatars().GetByIDs(ctx, ids)
}

// ListForUser возвращает каталог с отметками. Стандартные аватары принадлежат всем.
func (s *AvatarService) ListForUser(ctx context.Context, userID uint, selectedID *uint) ([]AvatarStatus, error) {
	catalog, err := s.store.Avatars().ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.store.Avatars().ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	unlockedAt := make(map[uint]time.Time, len(unlocked))
	for _, ua := range unlocked {
		unlockedAt[ua.AvatarID] = ua.UnlockedAt
	}

	result := make([]AvatarStatus, 0, len(catalog))
	for _, av := range catalog {
		st := AvatarStatus{Avatar: av, Owned: av.IsDefault}
		if at, ok := unlockedAt[av.ID]; ok {
			st.Owned = true
			st.UnlockedAt = &at
		}
		st.Selected = selectedID != nil && *selectedID == av.ID
		result = append(result, st)
	}
	return result, nil
}

// owns проверяет владение аватаром
func (s *AvatarService) owns(ctx context.Context, userID uint, avatar *entity.Avatar) (bool, error) {
	if avatar.IsDefault {
		return true, nil
	}
	return s.store.Avatars().IsUnlocked(ctx, userID, avatar.ID)
}
