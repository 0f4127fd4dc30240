package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/repositories"
)

// Authorizer — единственная точка проверки административных прав в ядре.
type Authorizer interface {
	IsAdmin(ctx context.Context, adminID int) (bool, error)
}

// StatusUpdateResult возвращает прежний и новый статус заявки.
type StatusUpdateResult struct {
	RegistrationID int                       `json:"registration_id"`
	TournamentID   int                       `json:"tournament_id"`
	OldStatus      models.RegistrationStatus `json:"old_status"`
	NewStatus      models.RegistrationStatus `json:"new_status"`
}

type ModerationService interface {
	UpdateRegistrationStatus(ctx context.Context, registrationID int, target models.RegistrationStatus, adminID int, reason *string) (*StatusUpdateResult, error)
	GetAuditTrail(ctx context.Context, registrationID int) ([]models.AdminAction, error)
}

type moderationService struct {
	tx               repositories.TxRunner
	registrationRepo repositories.RegistrationRepository
	actionRepo       repositories.AdminActionRepository
	authorizer       Authorizer
	logger           *slog.Logger
}

func NewModerationService(
	tx repositories.TxRunner,
	registrationRepo repositories.RegistrationRepository,
	actionRepo repositories.AdminActionRepository,
	authorizer Authorizer,
	logger *slog.Logger,
) ModerationService {
	return &moderationService{
		tx:               tx,
		registrationRepo: registrationRepo,
		actionRepo:       actionRepo,
		authorizer:       authorizer,
		logger:           logger,
	}
}

// UpdateRegistrationStatus переводит заявку pending→approved или
// pending→rejected. Обновление статуса и строка аудита пишутся в одной
// транзакции: либо фиксируются обе, либо ни одна.
//
// Авторизация проверяется до поиска заявки, чтобы не раскрывать посторонним
// сам факт её существования.
func (s *moderationService) UpdateRegistrationStatus(ctx context.Context, registrationID int, target models.RegistrationStatus, adminID int, reason *string) (*StatusUpdateResult, error) {
	ok, err := s.authorizer.IsAdmin(ctx, adminID)
	if err != nil {
		return nil, fmt.Errorf("authorization check failed: %w", err)
	}
	if !ok {
		return nil, ErrUnauthorized
	}

	if target != models.RegistrationApproved && target != models.RegistrationRejected {
		return nil, ErrInvalidTargetStatus
	}
	if target == models.RegistrationRejected && derefTrimmed(reason) == "" {
		return nil, ErrRejectionReasonRequired
	}

	var result StatusUpdateResult

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		reg, err := s.registrationRepo.GetForUpdate(ctx, exec, registrationID)
		if err != nil {
			if errors.Is(err, repositories.ErrRegistrationNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if reg.Status != models.RegistrationPending {
			return fmt.Errorf("%w: current status is %s", ErrInvalidStatusTransition, reg.Status)
		}

		if err := s.registrationRepo.UpdateStatus(ctx, exec, registrationID, target, reason); err != nil {
			return err
		}

		action := &models.AdminAction{
			RegistrationID: registrationID,
			AdminID:        adminID,
			Action:         actionFor(target),
			Reason:         trimmedOrNil(reason),
		}
		if err := s.actionRepo.Create(ctx, exec, action); err != nil {
			return err
		}

		result = StatusUpdateResult{
			RegistrationID: registrationID,
			TournamentID:   reg.TournamentID,
			OldStatus:      reg.Status,
			NewStatus:      target,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "registration status updated",
		slog.Int("registration_id", registrationID),
		slog.Int("admin_id", adminID),
		slog.String("old_status", string(result.OldStatus)),
		slog.String("new_status", string(result.NewStatus)),
	)
	return &result, nil
}

func (s *moderationService) GetAuditTrail(ctx context.Context, registrationID int) ([]models.AdminAction, error) {
	return s.actionRepo.ListByRegistration(ctx, registrationID)
}

func actionFor(status models.RegistrationStatus) models.AdminActionType {
	if status == models.RegistrationApproved {
		return models.ActionApprove
	}
	return models.ActionReject
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// adminAuthorizer реализует Authorizer поверх таблицы администраторов.
type adminAuthorizer struct {
	adminRepo repositories.AdminRepository
}

func NewAdminAuthorizer(adminRepo repositories.AdminRepository) Authorizer {
	return &adminAuthorizer{adminRepo: adminRepo}
}

func (a *adminAuthorizer) IsAdmin(ctx context.Context, adminID int) (bool, error) {
	_, err := a.adminRepo.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
