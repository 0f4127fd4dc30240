package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrRegistrationNotFound = errors.New("registration not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrInvalidRosterSize       = errors.New("participant count does not match tournament mode")
	ErrTeamNameRequired        = errors.New("team name is required for duo and squad modes")
	ErrInvalidIdempotencyKey   = errors.New("idempotency key must be a valid UUID")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")

	// Ошибки вместимости и состояния турнира
	ErrTournamentFull      = errors.New("tournament registration is full")
	ErrTournamentNotActive = errors.New("tournament is not open for registration")

	// Переходы статусов
	ErrInvalidStatusTransition = errors.New("registration status can only change from pending")
	ErrInvalidTargetStatus     = errors.New("target status must be approved or rejected")

	// Ошибки аутентификации и авторизации
	ErrUnauthorized           = errors.New("operation requires administrator privileges")
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
)
