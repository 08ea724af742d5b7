package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/event-registration/internal/clock"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/google/uuid"
)

// UserService creates users.
type UserService struct {
	users UserStore
	clock clock.Clock
}

// NewUserService stamps new users with times from clk.
func NewUserService(users UserStore, clk clock.Clock) *UserService {
	return &UserService{users: users, clock: clk}
}

// CreateUser normalises the email to lower case and stores the user. A
// duplicate email yields model.ErrEmailTaken.
func (s *UserService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
