package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agendaly/backend/internal/models"
	"github.com/agendaly/backend/internal/store"
	"github.com/agendaly/backend/pkg/utils"
)

var (
	// ErrMissingFields is returned when email, password, or name is absent.
	ErrMissingFields = errors.New("email, password and name are required")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidCredentials is returned when login does not match a user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned when no user has the requested ID.
	ErrUserNotFound = errors.New("user not found")
)

// Service applies account operations against the users collection. Each call
// reloads the collection from the store; nothing is cached across requests.
type Service struct {
	store      store.Store
	logger     *zap.Logger
	bcryptCost int
}

// NewService creates an auth service.
func NewService(s store.Store, logger *zap.Logger, bcryptCost int) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger, bcryptCost: bcryptCost}
}

// Signup creates a new account. Email uniqueness is checked and the record
// appended under the collection lock, so two concurrent signups with the same
// email cannot both succeed.
func (s *Service) Signup(ctx context.Context, email, password, name string) (models.UserPublic, error) {
	if email == "" || password == "" || name == "" {
		return models.UserPublic{}, ErrMissingFields
	}

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return models.UserPublic{}, fmt.Errorf("hash password: %w", err)
	}

	var user models.User
	err = s.store.Update(ctx, store.Users, func(tx store.Txn) error {
		var users []models.User
		if err := tx.Load(&users); err != nil {
			return err
		}
		for _, u := range users {
			if u.Email == email {
				return ErrEmailTaken
			}
		}
		user = models.User{
			ID:           models.NewID(),
			Email:        email,
			PasswordHash: hash,
			Name:         name,
			CreatedAt:    time.Now().UTC(),
		}
		return tx.Save(append(users, user))
	})
	if err != nil {
		return models.UserPublic{}, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID))
	return user.Public(), nil
}

// Login returns the user whose email matches and whose credential verifies.
func (s *Service) Login(ctx context.Context, email, password string) (models.UserPublic, error) {
	var users []models.User
	if err := s.store.Load(ctx, store.Users, &users); err != nil {
		return models.UserPublic{}, err
	}
	for i := range users {
		u := &users[i]
		if u.Email == email && utils.CheckPassword(password, u.PasswordHash) {
			return u.Public(), nil
		}
	}
	return models.UserPublic{}, ErrInvalidCredentials
}

// GetByID returns the public user with the given ID.
func (s *Service) GetByID(ctx context.Context, id string) (models.UserPublic, error) {
	var users []models.User
	if err := s.store.Load(ctx, store.Users, &users); err != nil {
		return models.UserPublic{}, err
	}
	for i := range users {
		if users[i].ID == id {
			return users[i].Public(), nil
		}
	}
	return models.UserPublic{}, ErrUserNotFound
}
