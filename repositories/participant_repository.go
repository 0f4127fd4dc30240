package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenastack/tournament-registration/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantSlotConflict   = errors.New("participant slot position conflict")
	ErrParticipantRegistrationFK = errors.New("participant references unknown registration")
)

type ParticipantRepository interface {
	// CreateBatch inserts the whole roster of one registration. Callers run
	// it inside the admission transaction so a registration never exists
	// with a partial roster.
	CreateBatch(ctx context.Context, exec SQLExecutor, participants []*models.Participant) error
	ListByRegistration(ctx context.Context, exec SQLExecutor, registrationID int) ([]models.Participant, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

func (r *postgresParticipantRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipantRepository) CreateBatch(ctx context.Context, exec SQLExecutor, participants []*models.Participant) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO participants (registration_id, player_name, game_id, slot_position)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for _, p := range participants {
		err := executor.QueryRowContext(ctx, query,
			p.RegistrationID, p.PlayerName, p.GameID, p.SlotPosition,
		).Scan(&p.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				switch pqErr.Code {
				case "23505": // unique_violation
					if pqErr.Constraint == "participants_registration_id_slot_position_key" {
						return ErrParticipantSlotConflict
					}
				case "23503": // foreign_key_violation
					if pqErr.Constraint == "participants_registration_id_fkey" {
						return ErrParticipantRegistrationFK
					}
				}
			}
			return fmt.Errorf("failed to create participant (slot %d): %w", p.SlotPosition, err)
		}
	}
	return nil
}

func (r *postgresParticipantRepository) ListByRegistration(ctx context.Context, exec SQLExecutor, registrationID int) ([]models.Participant, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, registration_id, player_name, game_id, slot_position
		FROM participants
		WHERE registration_id = $1
		ORDER BY slot_position ASC`

	rows, err := executor.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(&p.ID, &p.RegistrationID, &p.PlayerName, &p.GameID, &p.SlotPosition); scanErr != nil {
			return nil, scanErr
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
