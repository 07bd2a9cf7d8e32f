package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
)

// UserService registers and authenticates accounts.
type UserService struct {
	users     db.UserStore
	passwords *config.PasswordConfig
}

// NewUserService creates a UserService.
func NewUserService(users db.UserStore, passwords *config.PasswordConfig) *UserService {
	return &UserService{users: users, passwords: passwords}
}

// Register creates an account. It returns db.ErrEmailTaken when the email is
// already registered.
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*db.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, db.ErrEmailTaken
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// A concurrent registration can still win the unique index; the store
	// reports that as ErrEmailTaken too.
	user, err := s.users.CreateUser(ctx, strings.TrimSpace(req.Name), email, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login returns the account for valid credentials and ErrInvalidCredentials
// otherwise, without revealing which part was wrong.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*db.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil || !s.passwords.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
