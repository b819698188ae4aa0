package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"library-gateway/internal/domains/auth/model"
	"library-gateway/internal/infrastructure/backend"
)

// ErrMissingUser means the backend accepted the credentials but sent no user.
var ErrMissingUser = errors.New("authenticated response carried no user")

type ServiceInterface interface {
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
}

// AuthService forwards credentials to the backend; it never sees password hashes.
type AuthService struct {
	backend backend.Library
}

var _ ServiceInterface = (*AuthService)(nil)

func NewAuthService(lib backend.Library) *AuthService {
	return &AuthService{backend: lib}
}

func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	resp, err := s.backend.AuthenticateUser(ctx, backend.AuthenticateUserRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if _, rejected := backend.RejectionMessage(err); rejected {
			log.Info().Str("username", req.Username).Msg("Login rejected")
		}
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrMissingUser
	}

	log.Info().
		Int64("user_id", resp.User.UserID).
		Str("role", resp.User.Role).
		Msg("User logged in")

	return &model.LoginResponse{
		UserID:   resp.User.UserID,
		Username: resp.User.Username,
		Email:    resp.User.Email,
		Role:     resp.User.Role,
		Message:  resp.Message,
	}, nil
}
