package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"library-gateway/internal/domains/user/model"
	"library-gateway/internal/infrastructure/backend"
)

type ServiceInterface interface {
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, req model.CreateRequest) (*model.CreateResponse, error)
	Update(ctx context.Context, userID int64, req model.UpdateRequest) (string, error)
	Stats(ctx context.Context, userID int64) (*model.Stats, error)
}

type UserService struct {
	backend backend.Library
}

var _ ServiceInterface = (*UserService)(nil)

func NewUserService(lib backend.Library) *UserService {
	return &UserService{backend: lib}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	resp, err := s.backend.GetUsers(ctx, backend.GetUsersRequest{})
	if err != nil {
		return nil, err
	}

	users := make([]model.User, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, model.User{
			UserID:   u.UserID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
			IsActive: u.IsActive,
		})
	}
	return users, nil
}

func (s *UserService) Create(ctx context.Context, req model.CreateRequest) (*model.CreateResponse, error) {
	resp, err := s.backend.CreateUser(ctx, backend.CreateUserRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return nil, err
	}

	out := &model.CreateResponse{Message: resp.Message}
	if resp.User != nil {
		out.UserID = resp.User.UserID
	}
	log.Info().Int64("user_id", out.UserID).Str("role", req.Role).Msg("User created")
	return out, nil
}

func (s *UserService) Update(ctx context.Context, userID int64, req model.UpdateRequest) (string, error) {
	if userID <= 0 {
		return "", model.ErrInvalidUserID
	}

	resp, err := s.backend.UpdateUser(ctx, backend.UpdateUserRequest{
		UserID:   userID,
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		return "", err
	}

	log.Info().Int64("user_id", userID).Bool("is_active", req.IsActive).Msg("User updated")
	return resp.Message, nil
}

func (s *UserService) Stats(ctx context.Context, userID int64) (*model.Stats, error) {
	if userID <= 0 {
		return nil, model.ErrInvalidUserID
	}

	resp, err := s.backend.GetUserStats(ctx, backend.GetUserStatsRequest{UserID: userID})
	if err != nil {
		return nil, err
	}

	return &model.Stats{
		TotalBooksTaken:   resp.TotalBooksTaken,
		CurrentlyBorrowed: resp.CurrentlyBorrowed,
		OverdueBooks:      resp.OverdueBooks,
		TotalFine:         resp.TotalFine,
	}, nil
}
