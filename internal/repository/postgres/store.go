package postgres

import (
	"gorm.io/gorm"

	"github.com/ConnorBoetig-dev/morepractice-sub001/internal/domain/repository"
)

// Store реализует repository.Store поверх одного *gorm.DB (соединения или транзакции)
type Store struct {
	db *gorm.DB
}

// NewStore создаёт набор репозиториев на переданном *gorm.DB
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Profiles() repository.ProfileRepository           { return NewProfileRepo(s.db) }
func (s *Store) Attempts() repository.AttemptRepository           { return NewAttemptRepo(s.db) }
func (s *Store) Achievements() repository.AchievementRepository   { return NewAchievementRepo(s.db) }
func (s *Store) Avatars() repository.AvatarRepository             { return NewAvatarRepo(s.db) }
func (s *Store) StudySessions() repository.StudySessionRepository { return NewStudySessionRepo(s.db) }
func (s *Store) Questions() repository.QuestionRepository         { return NewQuestionRepo(s.db) }
