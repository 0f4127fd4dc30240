package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arenastack/tournament-registration/models"
)

type AdminActionRepository interface {
	// Create appends one audit row. Runs inside the same transaction as the
	// status update it records, so the two never diverge.
	Create(ctx context.Context, exec SQLExecutor, action *models.AdminAction) error
	ListByRegistration(ctx context.Context, registrationID int) ([]models.AdminAction, error)
}

type postgresAdminActionRepository struct {
	db *sql.DB
}

func NewPostgresAdminActionRepository(db *sql.DB) AdminActionRepository {
	return &postgresAdminActionRepository{db: db}
}

func (r *postgresAdminActionRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAdminActionRepository) Create(ctx context.Context, exec SQLExecutor, action *models.AdminAction) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO admin_actions (registration_id, admin_id, action, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		action.RegistrationID, action.AdminID, action.Action, action.Reason,
	).Scan(&action.ID, &action.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create admin action: %w", err)
	}
	return nil
}

func (r *postgresAdminActionRepository) ListByRegistration(ctx context.Context, registrationID int) ([]models.AdminAction, error) {
	query := `
		SELECT id, registration_id, admin_id, action, reason, created_at
		FROM admin_actions
		WHERE registration_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin actions: %w", err)
	}
	defer rows.Close()

	actions := make([]models.AdminAction, 0)
	for rows.Next() {
		var a models.AdminAction
		if scanErr := rows.Scan(&a.ID, &a.RegistrationID, &a.AdminID, &a.Action, &a.Reason, &a.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
