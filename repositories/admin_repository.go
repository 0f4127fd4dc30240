package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arenastack/tournament-registration/models"
)

var ErrAdminNotFound = errors.New("admin not found")

type AdminRepository interface {
	GetByID(ctx context.Context, id int) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	Upsert(ctx context.Context, email, displayName, passwordHash string) error
}

type postgresAdminRepository struct {
	db *sql.DB
}

func NewPostgresAdminRepository(db *sql.DB) AdminRepository {
	return &postgresAdminRepository{db: db}
}

func (r *postgresAdminRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Admin, error) {
	a := &models.Admin{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return a, nil
}

func (r *postgresAdminRepository) GetByID(ctx context.Context, id int) (*models.Admin, error) {
	query := `SELECT id, email, display_name, password_hash, created_at FROM admins WHERE id = $1`
	return r.findOne(ctx, query, id)
}

func (r *postgresAdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	query := `SELECT id, email, display_name, password_hash, created_at FROM admins WHERE email = $1`
	return r.findOne(ctx, query, email)
}

// Upsert используется при старте для начального администратора из окружения.
func (r *postgresAdminRepository) Upsert(ctx context.Context, email, displayName, passwordHash string) error {
	query := `
		INSERT INTO admins (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET display_name = EXCLUDED.display_name, password_hash = EXCLUDED.password_hash`
	if _, err := r.db.ExecContext(ctx, query, email, displayName, passwordHash); err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}
	return nil
}
