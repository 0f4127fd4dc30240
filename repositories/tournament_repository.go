package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arenastack/tournament-registration/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetForUpdate reads the tournament row with SELECT ... FOR UPDATE.
	// Admission holds this row lock across the count and the insert, so
	// concurrent admissions for one tournament are serialized while other
	// tournaments proceed in parallel. Must be called inside a transaction.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, onlyActive bool) ([]models.Tournament, error)
	SetActive(ctx context.Context, id int, active bool) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `
	id, game, mode, entry_fee, prize_first, prize_second, prize_third,
	max_capacity, active, created_at`

func scanTournament(row *sql.Row, t *models.Tournament) error {
	return row.Scan(
		&t.ID, &t.Game, &t.Mode, &t.EntryFee, &t.PrizeFirst, &t.PrizeSecond,
		&t.PrizeThird, &t.MaxCapacity, &t.Active, &t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	t := &models.Tournament{}
	err := scanTournament(executor.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	executor := r.getExecutor(exec)
	query := `SELECT` + tournamentColumns + ` FROM tournaments WHERE id = $1 FOR UPDATE`

	t := &models.Tournament{}
	err := scanTournament(executor.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, onlyActive bool) ([]models.Tournament, error) {
	query := `SELECT` + tournamentColumns + ` FROM tournaments`
	if onlyActive {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY game, mode`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.Game, &t.Mode, &t.EntryFee, &t.PrizeFirst, &t.PrizeSecond,
			&t.PrizeThird, &t.MaxCapacity, &t.Active, &t.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) SetActive(ctx context.Context, id int, active bool) error {
	query := `UPDATE tournaments SET active = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, active, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}
