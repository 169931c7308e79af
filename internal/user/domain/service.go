package domain

import (
	"context"
	"errors"

	"github.com/cinetrack/cinetrack/pkg/db/pagination"
)

type RegisterUserRequest struct {
	Name     string
	Email    string
	Password string
}

type UpdateUserRequest struct {
	ID   string
	Name *string
}

type ListUsersRequest struct {
	Page pagination.Page
}

type ListUsersResponse struct {
	pagination.PageInfo
	Users []User `json:"users"`
}

type Service interface {
	Register(ctx context.Context, req RegisterUserRequest) (User, error)
	Authenticate(ctx context.Context, email, password string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context, req ListUsersRequest) (ListUsersResponse, error)
	Update(ctx context.Context, req UpdateUserRequest) (User, error)
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	RatingProfile(ctx context.Context, id string) (RatingProfile, error)
}

var (
	ErrNotFound           = errors.New("user_not_found")
	ErrEmailExists        = errors.New("user_email_exists")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidID          = errors.New("invalid_user_id")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
)
