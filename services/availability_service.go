package services

import (
	"context"
	"errors"
	"sort"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/repositories"
	"golang.org/x/sync/errgroup"
)

type AvailabilityService interface {
	GetSlotAvailability(ctx context.Context, tournamentID int) (*models.SlotAvailability, error)
	GetTournamentStats(ctx context.Context, tournamentID int) (*models.TournamentStats, error)
	GetDashboard(ctx context.Context) (*models.DashboardStats, error)
}

type availabilityService struct {
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
}

func NewAvailabilityService(
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
) AvailabilityService {
	return &availabilityService{
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
	}
}

// GetSlotAvailability пересчитывает занятость из реестра при каждом вызове.
// Счётчик нигде не кэшируется, поэтому расхождение с реестром невозможно.
func (s *availabilityService) GetSlotAvailability(ctx context.Context, tournamentID int) (*models.SlotAvailability, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	filled, err := s.registrationRepo.CountOccupying(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}

	return &models.SlotAvailability{
		TournamentID: tournament.ID,
		Capacity:     tournament.MaxCapacity,
		Filled:       filled,
		Remaining:    clampRemaining(tournament.MaxCapacity, filled),
	}, nil
}

func (s *availabilityService) GetTournamentStats(ctx context.Context, tournamentID int) (*models.TournamentStats, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return s.statsFor(ctx, tournament)
}

func (s *availabilityService) statsFor(ctx context.Context, tournament *models.Tournament) (*models.TournamentStats, error) {
	counts, err := s.registrationRepo.CountByStatus(ctx, tournament.ID)
	if err != nil {
		return nil, err
	}

	pending := counts[models.RegistrationPending]
	approved := counts[models.RegistrationApproved]

	return &models.TournamentStats{
		TournamentID:   tournament.ID,
		Game:           tournament.Game,
		Mode:           tournament.Mode,
		Capacity:       tournament.MaxCapacity,
		PendingCount:   pending,
		ApprovedCount:  approved,
		RejectedCount:  counts[models.RegistrationRejected],
		RemainingSlots: clampRemaining(tournament.MaxCapacity, pending+approved),
	}, nil
}

// GetDashboard собирает статистику всех турниров каталога параллельно.
func (s *availabilityService) GetDashboard(ctx context.Context) (*models.DashboardStats, error) {
	tournaments, err := s.tournamentRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	stats := make([]models.TournamentStats, len(tournaments))
	g, gCtx := errgroup.WithContext(ctx)
	for i := range tournaments {
		i := i
		g.Go(func() error {
			st, statErr := s.statsFor(gCtx, &tournaments[i])
			if statErr != nil {
				return statErr
			}
			stats[i] = *st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Game != stats[j].Game {
			return stats[i].Game < stats[j].Game
		}
		return stats[i].Mode < stats[j].Mode
	})

	dashboard := &models.DashboardStats{Tournaments: stats}
	for _, st := range stats {
		dashboard.TotalPending += st.PendingCount
		dashboard.TotalApproved += st.ApprovedCount
		dashboard.TotalRejected += st.RejectedCount
	}
	return dashboard, nil
}
