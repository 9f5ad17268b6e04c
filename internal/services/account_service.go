package services

import (
	"context"
	"fmt"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// AccountService handles registration and login.
type AccountService struct {
	users  ports.UserStore
	hasher auth.Hasher
}

// NewAccountService creates a new AccountService.
func NewAccountService(users ports.UserStore, hasher auth.Hasher) *AccountService {
	return &AccountService{users: users, hasher: hasher}
}

// Register creates a user and returns its id, or core.ErrDuplicateUsername.
func (s *AccountService) Register(ctx context.Context, username, password string) (int64, error) {
	if err := core.ValidateUsername(username); err != nil {
		return 0, err
	}

	stored, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("register: %w", err)
	}

	id, err := s.users.CreateUser(ctx, username, stored)
	if err != nil {
		return 0, err
	}

	log.For(ctx, log.ComponentAccount).InfoContext(ctx, "User registered",
		log.FieldOperation, log.OpRegister,
		log.FieldUserID, id,
		log.FieldUsername, username)
	return id, nil
}

// Authenticate returns the user id when username and password match.
// An unknown user and a wrong password are indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (int64, bool, error) {
	u, found, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		return 0, false, fmt.Errorf("authenticate: %w", err)
	}
	if !found || !s.hasher.Matches(u.Password, password) {
		log.For(ctx, log.ComponentAccount).InfoContext(ctx, "Login rejected",
			log.FieldOperation, log.OpLogin,
			log.FieldUsername, username)
		return 0, false, nil
	}
	return u.ID, true, nil
}
