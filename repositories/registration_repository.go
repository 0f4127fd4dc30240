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
	ErrRegistrationNotFound       = errors.New("registration not found")
	ErrRegistrationTournamentFK   = errors.New("registration references unknown tournament")
	ErrIdempotencyKeyConflict     = errors.New("idempotency key already used")
	ErrRegistrationStatusConflict = errors.New("registration status conflict")
)

type ListRegistrationsFilter struct {
	TournamentID *int
	Status       *models.RegistrationStatus
	Limit        int
	Offset       int
}

type RegistrationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error)
	// GetForUpdate locks the registration row for the duration of a status
	// transition so the status write and its audit row stay consistent.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error)
	FindByIdempotencyKey(ctx context.Context, exec SQLExecutor, key string) (*models.Registration, error)
	// CountOccupying counts registrations holding a slot (pending or
	// approved). Admission calls this under the tournament row lock.
	CountOccupying(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error)
	CountByStatus(ctx context.Context, tournamentID int) (map[models.RegistrationStatus]int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus, rejectionReason *string) error
	List(ctx context.Context, filter ListRegistrationsFilter) ([]models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const registrationColumns = `
	id, tournament_id, status, team_name, leader_name, leader_game_id,
	leader_whatsapp, transaction_ref, payment_proof_key, rejection_reason,
	idempotency_key, created_at, updated_at`

func (r *postgresRegistrationRepository) Create(ctx context.Context, exec SQLExecutor, reg *models.Registration) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO registrations (
			tournament_id, status, team_name, leader_name, leader_game_id,
			leader_whatsapp, transaction_ref, payment_proof_key, idempotency_key
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := executor.QueryRowContext(ctx, query,
		reg.TournamentID, reg.Status, reg.TeamName, reg.LeaderName,
		reg.LeaderGameID, reg.LeaderWhatsApp, reg.TransactionRef,
		reg.PaymentProofKey, reg.IdempotencyKey,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "registrations_idempotency_key_key" {
					return ErrIdempotencyKeyConflict
				}
			case "23503": // foreign_key_violation
				if pqErr.Constraint == "registrations_tournament_id_fkey" {
					return ErrRegistrationTournamentFK
				}
			}
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *postgresRegistrationRepository) findOne(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (*models.Registration, error) {
	reg := &models.Registration{}
	row := r.getExecutor(exec).QueryRowContext(ctx, query, args...)
	err := row.Scan(
		&reg.ID, &reg.TournamentID, &reg.Status, &reg.TeamName, &reg.LeaderName,
		&reg.LeaderGameID, &reg.LeaderWhatsApp, &reg.TransactionRef,
		&reg.PaymentProofKey, &reg.RejectionReason, &reg.IdempotencyKey,
		&reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE id = $1`
	return r.findOne(ctx, exec, query, id)
}

func (r *postgresRegistrationRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE id = $1 FOR UPDATE`
	return r.findOne(ctx, exec, query, id)
}

func (r *postgresRegistrationRepository) FindByIdempotencyKey(ctx context.Context, exec SQLExecutor, key string) (*models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE idempotency_key = $1`
	return r.findOne(ctx, exec, query, key)
}

func (r *postgresRegistrationRepository) CountOccupying(ctx context.Context, exec SQLExecutor, tournamentID int) (int, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT COUNT(*)
		FROM registrations
		WHERE tournament_id = $1 AND status IN ($2, $3)`

	var count int
	err := executor.QueryRowContext(ctx, query,
		tournamentID, models.RegistrationPending, models.RegistrationApproved,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count occupying registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) CountByStatus(ctx context.Context, tournamentID int) (map[models.RegistrationStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM registrations
		WHERE tournament_id = $1
		GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.RegistrationStatus]int)
	for rows.Next() {
		var status models.RegistrationStatus
		var count int
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, scanErr
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *postgresRegistrationRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RegistrationStatus, rejectionReason *string) error {
	executor := r.getExecutor(exec)
	// rejection_reason is set iff the target status is rejected, cleared otherwise.
	query := `
		UPDATE registrations
		SET status = $1, rejection_reason = $2, updated_at = NOW()
		WHERE id = $3`

	var reason *string
	if status == models.RegistrationRejected {
		reason = rejectionReason
	}
	result, err := executor.ExecContext(ctx, query, status, reason, id)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}
	return checkAffectedRows(result, ErrRegistrationNotFound)
}

func (r *postgresRegistrationRepository) List(ctx context.Context, filter ListRegistrationsFilter) ([]models.Registration, error) {
	query := `SELECT` + registrationColumns + ` FROM registrations WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.TournamentID != nil {
		query += fmt.Sprintf(" AND tournament_id = $%d", argID)
		args = append(args, *filter.TournamentID)
		argID++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	registrations := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if scanErr := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.Status, &reg.TeamName, &reg.LeaderName,
			&reg.LeaderGameID, &reg.LeaderWhatsApp, &reg.TransactionRef,
			&reg.PaymentProofKey, &reg.RejectionReason, &reg.IdempotencyKey,
			&reg.CreatedAt, &reg.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		registrations = append(registrations, reg)
	}
	return registrations, rows.Err()
}
