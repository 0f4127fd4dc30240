package models

import "time"

// RegistrationStatus представляет статусы заявки, соответствующие ENUM в БД.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationRejected:
		return true
	}
	return false
}

// Occupying сообщает, удерживает ли заявка слот турнира.
// Отклонённые заявки слот освобождают.
func (s RegistrationStatus) Occupying() bool {
	return s == RegistrationPending || s == RegistrationApproved
}

// Registration — одна попытка регистрации в турнире.
// Записи никогда не удаляются: реестр образует аудиторский след.
type Registration struct {
	ID              int                `json:"id" db:"id"`
	TournamentID    int                `json:"tournament_id" db:"tournament_id"`
	Status          RegistrationStatus `json:"status" db:"status"`
	TeamName        *string            `json:"team_name,omitempty" db:"team_name"`
	LeaderName      string             `json:"leader_name" db:"leader_name"`
	LeaderGameID    string             `json:"leader_game_id" db:"leader_game_id"`
	LeaderWhatsApp  string             `json:"leader_whatsapp" db:"leader_whatsapp"`
	TransactionRef  string             `json:"transaction_id" db:"transaction_ref"`
	PaymentProofKey *string            `json:"-" db:"payment_proof_key"`
	PaymentProofURL *string            `json:"payment_proof_url,omitempty" db:"-"`
	RejectionReason *string            `json:"rejection_reason,omitempty" db:"rejection_reason"`
	IdempotencyKey  *string            `json:"-" db:"idempotency_key"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`

	// Опциональный состав (не мапится напрямую)
	Participants []Participant `json:"participants,omitempty" db:"-"`
}

// Participant — один член состава заявки. Лидер всегда на позиции 1.
// Создаётся атомарно вместе с заявкой и далее не изменяется.
type Participant struct {
	ID             int    `json:"id" db:"id"`
	RegistrationID int    `json:"registration_id" db:"registration_id"`
	PlayerName     string `json:"player_name" db:"player_name"`
	GameID         string `json:"game_id" db:"game_id"`
	SlotPosition   int    `json:"slot_position" db:"slot_position"`
}
