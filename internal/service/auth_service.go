package service

import (
	"context"
	"errors"
	"strings"

	"questline/internal/domain"
	"questline/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// AuthService issues credentials; everything past login is JWT-only.
type AuthService struct {
	users *repository.UserRepository
}

func NewAuthService(users *repository.UserRepository) *AuthService {
	return &AuthService{users: users}
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	Zone        string
	IsPublic    bool
}

// Register creates a user with a bcrypt-hashed password and returns it with
// an access token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(strings.ToLower(in.Email)),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		IsActive:     true,
		Profile: domain.Profile{
			DisplayName: in.DisplayName,
			IsPublic:    in.IsPublic,
			Zone:        in.Zone,
		},
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := GenerateJWT(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the password and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}
