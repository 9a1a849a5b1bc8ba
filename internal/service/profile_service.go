package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/entity"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
	apperrors "github.com/ConnorBoetig-dev/morepractice-sub001/internal/pkg/errors"
	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/service/gamification"
)

// ProfileView - профиль с производными значениями для UI
type ProfileView struct {
	entity.Profile
	XPToNextLevel     int64   `json:"xp_to_next_level"`
	CurrentLevelXP    int64   `json:"current_level_xp"`
	NextLevelXP       int64   `json:"next_level_xp"`
	LevelProgress     float64 `json:"level_progress"`
	AchievementsCount int     `json:"achievements_count"`
}

// ProfileService отдаёт игровой профиль и меняет выбранный аватар
type ProfileService struct {
	store   repository.Store
	avatars *AvatarService
	logger  *zap.Logger
}

// NewProfileService создает сервис профилей
func NewProfileService(store repository.Store, avatars *AvatarService, logger *zap.Logger) *ProfileService {
	return &ProfileService{store: store, avatars: avatars, logger: logger.Named("ProfileService")}
}

// GetProfile возвращает профиль. Отсутствующий профиль показывается как новый, без записи в базу.
func (s *ProfileService) GetProfile(ctx context.Context, userID uint) (*ProfileView, error) {
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		profile = entity.NewProfile(userID, "")
	}

	toNext, err := gamification.XPToNextLevel(profile.XP)
	if err != nil {
		return nil, err
	}
	earned, err := s.store.Achievements().ListEarned(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		Profile:           *profile,
		XPToNextLevel:     toNext,
		CurrentLevelXP:    gamification.XPFloorForLevel(profile.Level),
		NextLevelXP:       gamification.XPFloorForLevel(profile.Level + 1),
		LevelProgress:     gamification.LevelProgress(profile.XP),
		AchievementsCount: len(earned),
	}, nil
}

// SelectAvatar делает аватар текущим. Чужой (не открытый) аватар - ErrAvatarNotOwned.
func (s *ProfileService) SelectAvatar(ctx context.Context, userID uint, displayName string, avatarID uint) error {
	avatar, err := s.store.Avatars().GetByID(ctx, avatarID)
	if err != nil {
		return err
	}
	owned, err := s.avatars.owns(ctx, userID, avatar)
	if err != nil {
		return err
	}
	if !owned {
		return fmt.Errorf("%w: avatar #%d", apperrors.ErrAvatarNotOwned, avatarID)
	}

	if err := s.store.Profiles().EnsureExists(ctx, userID, displayName); err != nil {
		return err
	}
	if err := s.store.Profiles().UpdateSelectedAvatar(ctx, userID, avatarID); err != nil {
		return err
	}
	s.logger.Info("avatar selected", zap.Uint("user_id", userID), zap.Uint("avatar_id", avatarID))
	return nil
}

// ListAvatars возвращает каталог аватаров с отметкой выбранного
func (s *ProfileService) ListAvatars(ctx context.Context, userID uint) ([]AvatarStatus, error) {
	var selected *uint
	profile, err := s.store.Profiles().GetByUserID(ctx, userID)
	switch {
	case err == nil:
		selected = profile.SelectedAvatarID
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return s.avatars.ListForUser(ctx, userID, selected)
}
