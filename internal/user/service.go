package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"product_api/internal/auth"
	"product_api/internal/queue"

	"github.com/sirupsen/logrus"
)

type UserServiceInterface interface {
	ListUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, in CreateInput) (*User, error)
	UpdateUser(ctx context.Context, id string, in UpdateInput) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	Login(ctx context.Context, email, password string) (string, error)
}

type UserService struct {
	repo      Repository
	publisher queue.Publisher
	jwtSecret string
	tokenTTL  time.Duration
}

func NewUserService(repo Repository, publisher queue.Publisher, jwtSecret string, tokenTTL time.Duration) *UserService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &UserService{
		repo:      repo,
		publisher: publisher,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *UserService) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) CreateUser(ctx context.Context, in CreateInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := auth.GeneratePasswordHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.publish(ctx, queue.UserCreated, u.ID)
	return u, nil
}

// UpdateUser merges the supplied fields into the stored record. A new
// password is hashed before the record is locked.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateInput) (*User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var hash string
	if in.Password != nil {
		h, err := auth.GeneratePasswordHash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	u, err := s.repo.Update(ctx, id, func(u *User) error {
		if in.Name != nil {
			u.Name = *in.Name
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.Password != nil {
			u.Password = hash
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, queue.UserUpdated, u.ID)
	return u, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, queue.UserDeleted, id)
	return nil
}

// Login checks the credentials and issues a bearer token for the user.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := auth.ComparePasswordHash([]byte(u.Password), password); err != nil {
		logrus.WithField("user_id", u.ID).Warn("Login failed: password mismatch")
		return "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(u.ID, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func (s *UserService) publish(ctx context.Context, t queue.EventType, id string) {
	event := queue.NewEvent(t, id, auth.ActorID(ctx))
	if err := s.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event":   t,
			"user_id": id,
		}).Warn("Failed to publish user event")
	}
}
