package errors

import (
	"errors"
	"fmt"
)

// Общие категории ошибок приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, уже есть активная сессия).
	ErrConflict = errors.New("resource state conflict")
)

// Ошибки движка геймификации. Каждая оборачивает одну из категорий выше,
// поэтому errors.Is работает и по конкретной ошибке, и по категории.
var (
	ErrInvalidAttempt       = fmt.Errorf("%w: invalid attempt", ErrValidation)
	ErrInvalidXP            = fmt.Errorf("%w: invalid xp", ErrValidation)
	ErrNoQuestionsAvailable = fmt.Errorf("%w: no questions available", ErrValidation)
	ErrInvalidLeaderboard   = fmt.Errorf("%w: invalid leaderboard query", ErrValidation)
	ErrAvatarNotOwned       = fmt.Errorf("%w: avatar not owned", ErrForbidden)

	ErrActiveSessionExists = fmt.Errorf("%w: active study session already exists", ErrConflict)
	ErrSessionCompleted    = fmt.Errorf("%w: study session is not active", ErrConflict)
	ErrQuestionMismatch    = fmt.Errorf("%w: question does not match current position", ErrConflict)

	ErrSessionNotFound = fmt.Errorf("%w: study session not found", ErrNotFound)
	ErrNoActiveSession = fmt.Errorf("%w: no active study session", ErrNotFound)
)

// Code возвращает машиночитаемый код ошибки для ответа клиенту.
// Для ошибок вне таксономии возвращается пустая строка.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAttempt):
		return "invalid_attempt"
	case errors.Is(err, ErrInvalidXP):
		return "invalid_xp"
	case errors.Is(err, ErrNoQuestionsAvailable):
		return "no_questions_available"
	case errors.Is(err, ErrInvalidLeaderboard):
		return "invalid_leaderboard"
	case errors.Is(err, ErrAvatarNotOwned):
		return "avatar_not_owned"
	case errors.Is(err, ErrActiveSessionExists):
		return "active_session_exists"
	case errors.Is(err, ErrSessionCompleted):
		return "session_completed"
	case errors.Is(err, ErrQuestionMismatch):
		return "question_mismatch"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrNoActiveSession):
		return "no_active_session"
	case errors.Is(err, ErrValidation):
		return "validation_failed"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	}
	return ""
}
