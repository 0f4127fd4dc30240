package services

import (
	"context"
	"errors"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/repositories"
)

// CatalogService — доступ к справочнику турниров. Каталог для ядра
// read-only; единственная мутация — деактивация администратором.
type CatalogService interface {
	ListTournaments(ctx context.Context, onlyActive bool) ([]models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	SetTournamentActive(ctx context.Context, id int, active bool) error
}

type catalogService struct {
	tournamentRepo repositories.TournamentRepository
}

func NewCatalogService(tournamentRepo repositories.TournamentRepository) CatalogService {
	return &catalogService{tournamentRepo: tournamentRepo}
}

func (s *catalogService) ListTournaments(ctx context.Context, onlyActive bool) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, onlyActive)
}

func (s *catalogService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *catalogService) SetTournamentActive(ctx context.Context, id int, active bool) error {
	err := s.tournamentRepo.SetActive(ctx, id, active)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}
