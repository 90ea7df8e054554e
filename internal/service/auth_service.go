package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"dare_webapp/internal/domain"
	"dare_webapp/internal/logger"
	"dare_webapp/internal/repository"
)

// AuthService is the minimal identity surface: register, login, and
// caller lookup for the auth middleware. Anything heavier (OAuth,
// password reset, account recovery) lives outside this service.
type AuthService struct {
	users *repository.UserRepository
}

func NewAuthService(db *pgxpool.Pool) *AuthService {
	return &AuthService{users: repository.NewUserRepository(db)}
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return nil, "", fmt.Errorf("%w: username must be at least 3 characters", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &domain.User{
		Username:     username,
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := IssueJWT(u.ID)
	if err != nil {
		return nil, "", err
	}
	logger.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, token, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", domain.ErrForbidden)
	}

	token, err := IssueJWT(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetUser resolves a caller id to its user record.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
