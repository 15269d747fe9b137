package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stockroom-app/stockroom/internal/models"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stockroom-app/stockroom/pkg/hash"
	"github.com/stockroom-app/stockroom/pkg/logging"
	"github.com/stockroom-app/stockroom/pkg/tokens"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

// Signup onboards a customer account. Admin accounts are provisioned out of
// band, never through this endpoint.
func (s *AuthService) Signup(ctx context.Context, req transport.SignupRequest) (*transport.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if req.FirstName == "" {
		return nil, fmt.Errorf("%w: first name is required", ErrValidation)
	}

	if _, err := s.Repo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: User already exists", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: pwHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         models.RoleCustomer,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: User already exists", ErrConflict)
		}
		return nil, err
	}

	logging.FromContext(ctx).Info("user_signed_up", "user_id", user.ID)
	return s.issueToken(user)
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*transport.LoginResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: User not found", ErrNotFound)
		}
		return nil, err
	}

	if !user.IsActive {
		l.Warn("login_failed", "reason", "account not active", "user_id", user.ID)
		return nil, fmt.Errorf("%w: Account is not active", ErrUnauthorized)
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "reason", "invalid credentials", "user_id", user.ID)
		return nil, fmt.Errorf("%w: Invalid credentials supplied", ErrUnauthorized)
	}

	l.Info("login_success", "user_id", user.ID)
	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *models.User) (*transport.LoginResponse, error) {
	exp := time.Now().Add(tokenTTL)
	token, err := tokens.SignAccessToken(user.ID.String(), user.Role, exp, s.JWTSecret)
	if err != nil {
		return nil, err
	}
	return &transport.LoginResponse{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: exp,
	}, nil
}
