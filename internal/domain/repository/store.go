package repository

import "context"

// Store объединяет репозитории, работающие на одном соединении или в одной транзакции
type Store interface {
	Profiles() ProfileRepository
	Attempts() AttemptRepository
	Achievements() AchievementRepository
	Avatars() AvatarRepository
	StudySessions() StudySessionRepository
	Questions() QuestionRepository
}

// Transactor выполняет fn в одной транзакции базы данных.
// Store внутри fn привязан к транзакции; ошибка из fn откатывает всё.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}
