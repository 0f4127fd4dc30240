package services

import (
	"context"
	"errors"

	"github.com/arenastack/tournament-registration/models"
	"github.com/arenastack/tournament-registration/repositories"
	"github.com/arenastack/tournament-registration/utils"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*models.Admin, error)
}

type authService struct {
	adminRepo repositories.AdminRepository
}

func NewAuthService(adminRepo repositories.AdminRepository) AuthService {
	return &authService{adminRepo: adminRepo}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Admin, error) {
	admin, err := s.adminRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrAdminNotFound) {
			// Одинаковый ответ для неизвестного email и неверного пароля.
			return nil, ErrAuthInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(input.Password, admin.PasswordHash) {
		return nil, ErrAuthInvalidCredentials
	}
	return admin, nil
}
