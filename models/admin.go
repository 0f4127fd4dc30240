package models

import "time"

// Admin — учётная запись администратора панели модерации.
type Admin struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// AdminActionType — действие, зафиксированное в журнале модерации.
type AdminActionType string

const (
	ActionApprove AdminActionType = "approve"
	ActionReject  AdminActionType = "reject"
)

// AdminAction — запись аудита одного перехода статуса заявки.
// Журнал только дописывается и ни на что не ссылается обратно.
type AdminAction struct {
	ID             int             `json:"id" db:"id"`
	RegistrationID int             `json:"registration_id" db:"registration_id"`
	AdminID        int             `json:"admin_id" db:"admin_id"`
	Action         AdminActionType `json:"action" db:"action"`
	Reason         *string         `json:"reason,omitempty" db:"reason"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}
