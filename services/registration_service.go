package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/repositories"
	"github.com/google/uuid"
)

// TeammateInput — один дополнительный участник состава (слоты 2..N).
type TeammateInput struct {
	PlayerName string `json:"player_name"`
	GameID     string `json:"game_id"`
}

// RegistrationInput — полезная нагрузка попытки регистрации.
type RegistrationInput struct {
	TeamName        *string         `json:"team_name"`
	LeaderName      string          `json:"leader_name"`
	LeaderGameID    string          `json:"leader_game_id"`
	LeaderWhatsApp  string          `json:"leader_whatsapp"`
	TransactionRef  string          `json:"transaction_id"`
	PaymentProofKey *string         `json:"payment_proof_key"`
	IdempotencyKey  *string         `json:"idempotency_key"`
	Teammates       []TeammateInput `json:"participants"`
}

// AdmissionResult — результат успешной (или воспроизведённой) регистрации.
type AdmissionResult struct {
	RegistrationID int  `json:"registration_id"`
	SlotsRemaining int  `json:"slots_remaining"`
	Replayed       bool `json:"replayed,omitempty"`
}

type RegistrationService interface {
	Register(ctx context.Context, tournamentID int, input RegistrationInput) (*AdmissionResult, error)
	GetRegistration(ctx context.Context, id int) (*models.Registration, error)
	ListRegistrations(ctx context.Context, filter repositories.ListRegistrationsFilter) ([]models.Registration, error)
}

type registrationService struct {
	tx               repositories.TxRunner
	tournamentRepo   repositories.TournamentRepository
	registrationRepo repositories.RegistrationRepository
	participantRepo  repositories.ParticipantRepository
	logger           *slog.Logger
}

func NewRegistrationService(
	tx repositories.TxRunner,
	tournamentRepo repositories.TournamentRepository,
	registrationRepo repositories.RegistrationRepository,
	participantRepo repositories.ParticipantRepository,
	logger *slog.Logger,
) RegistrationService {
	return &registrationService{
		tx:               tx,
		tournamentRepo:   tournamentRepo,
		registrationRepo: registrationRepo,
		participantRepo:  participantRepo,
		logger:           logger,
	}
}

// Register проводит транзакцию допуска: проверка вместимости и вставка
// заявки с составом под одной блокировкой строки турнира.
//
// Две конкурирующие попытки на последний слот дают ровно один успех и один
// отказ ErrTournamentFull: блокировка удерживается от чтения счётчика до
// вставки. Разные турниры не блокируют друг друга.
func (s *registrationService) Register(ctx context.Context, tournamentID int, input RegistrationInput) (*AdmissionResult, error) {
	if err := validateRegistrationInput(input); err != nil {
		return nil, err
	}

	var result AdmissionResult

	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		tournament, err := s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to lock tournament %d: %w", tournamentID, err)
		}
		if !tournament.Active {
			return ErrTournamentNotActive
		}

		rosterSize := tournament.Mode.RosterSize()
		if len(input.Teammates)+1 != rosterSize {
			return fmt.Errorf("%w: mode %s expects %d, got %d",
				ErrInvalidRosterSize, tournament.Mode, rosterSize, len(input.Teammates)+1)
		}
		if tournament.Mode != models.ModeSolo && derefTrimmed(input.TeamName) == "" {
			return ErrTeamNameRequired
		}

		// Повтор с тем же ключом идемпотентности возвращает исходный
		// результат и ничего не вставляет.
		if input.IdempotencyKey != nil {
			existing, findErr := s.registrationRepo.FindByIdempotencyKey(ctx, exec, *input.IdempotencyKey)
			if findErr == nil {
				filled, countErr := s.registrationRepo.CountOccupying(ctx, exec, tournamentID)
				if countErr != nil {
					return countErr
				}
				result = AdmissionResult{
					RegistrationID: existing.ID,
					SlotsRemaining: clampRemaining(tournament.MaxCapacity, filled),
					Replayed:       true,
				}
				return nil
			}
			if !errors.Is(findErr, repositories.ErrRegistrationNotFound) {
				return findErr
			}
		}

		filled, err := s.registrationRepo.CountOccupying(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if filled >= tournament.MaxCapacity {
			return ErrTournamentFull
		}

		reg := &models.Registration{
			TournamentID:    tournamentID,
			Status:          models.RegistrationPending,
			LeaderName:      strings.TrimSpace(input.LeaderName),
			LeaderGameID:    strings.TrimSpace(input.LeaderGameID),
			LeaderWhatsApp:  strings.TrimSpace(input.LeaderWhatsApp),
			TransactionRef:  strings.TrimSpace(input.TransactionRef),
			PaymentProofKey: input.PaymentProofKey,
			IdempotencyKey:  input.IdempotencyKey,
		}
		if tournament.Mode != models.ModeSolo {
			name := derefTrimmed(input.TeamName)
			reg.TeamName = &name
		}

		if err := s.registrationRepo.Create(ctx, exec, reg); err != nil {
			return err
		}

		roster := make([]*models.Participant, 0, rosterSize)
		roster = append(roster, &models.Participant{
			RegistrationID: reg.ID,
			PlayerName:     reg.LeaderName,
			GameID:         reg.LeaderGameID,
			SlotPosition:   1,
		})
		for i, mate := range input.Teammates {
			roster = append(roster, &models.Participant{
				RegistrationID: reg.ID,
				PlayerName:     strings.TrimSpace(mate.PlayerName),
				GameID:         strings.TrimSpace(mate.GameID),
				SlotPosition:   i + 2,
			})
		}
		if err := s.participantRepo.CreateBatch(ctx, exec, roster); err != nil {
			return err
		}

		result = AdmissionResult{
			RegistrationID: reg.ID,
			SlotsRemaining: clampRemaining(tournament.MaxCapacity, filled+1),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registration admitted",
		slog.Int("tournament_id", tournamentID),
		slog.Int("registration_id", result.RegistrationID),
		slog.Int("slots_remaining", result.SlotsRemaining),
		slog.Bool("replayed", result.Replayed),
	)
	return &result, nil
}

func (s *registrationService) GetRegistration(ctx context.Context, id int) (*models.Registration, error) {
	reg, err := s.registrationRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, err
	}
	roster, err := s.participantRepo.ListByRegistration(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	reg.Participants = roster
	return reg, nil
}

func (s *registrationService) ListRegistrations(ctx context.Context, filter repositories.ListRegistrationsFilter) ([]models.Registration, error) {
	return s.registrationRepo.List(ctx, filter)
}

func validateRegistrationInput(input RegistrationInput) error {
	if strings.TrimSpace(input.LeaderName) == "" {
		return fmt.Errorf("%w: leader_name is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.LeaderGameID) == "" {
		return fmt.Errorf("%w: leader_game_id is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.LeaderWhatsApp) == "" {
		return fmt.Errorf("%w: leader_whatsapp is required", ErrValidationFailed)
	}
	if strings.TrimSpace(input.TransactionRef) == "" {
		return fmt.Errorf("%w: transaction_id is required", ErrValidationFailed)
	}
	for i, mate := range input.Teammates {
		if strings.TrimSpace(mate.PlayerName) == "" || strings.TrimSpace(mate.GameID) == "" {
			return fmt.Errorf("%w: participant %d is missing name or game id", ErrValidationFailed, i+1)
		}
	}
	if input.IdempotencyKey != nil {
		if _, err := uuid.Parse(*input.IdempotencyKey); err != nil {
			return ErrInvalidIdempotencyKey
		}
	}
	return nil
}

func clampRemaining(capacity, filled int) int {
	remaining := capacity - filled
	if remaining < 0 {
		return 0
	}
	return remaining
}

func derefTrimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
