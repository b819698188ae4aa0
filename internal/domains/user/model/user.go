package model

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"
)

// Roles
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

var ErrInvalidUserID = errors.New("invalid user id")

// ========================================
// VIEWS
// ========================================

type User struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type Stats struct {
	TotalBooksTaken   int32           `json:"total_books_taken"`
	CurrentlyBorrowed int32           `json:"currently_borrowed"`
	OverdueBooks      int32           `json:"overdue_books"`
	TotalFine         decimal.Decimal `json:"total_fine"`
}

// ========================================
// DTOs
// ========================================

// CreateRequest - POST /admin/users
type CreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("username is required"), validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.Email.Error("invalid email format")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			validation.In(RoleAdmin, RoleUser).Error("role must be ADMIN or USER"),
		),
	)
}

// UpdateRequest - PUT /admin/users/:user_id. An empty password keeps the current one.
type UpdateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	Password string `json:"password"`
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("username is required"), validation.Length(3, 50)),
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.Email.Error("invalid email format")),
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			validation.In(RoleAdmin, RoleUser).Error("role must be ADMIN or USER"),
		),
	)
}

// Normalize trims identity fields and upper-cases the role.
func (r *CreateRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
}

func (r *UpdateRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToUpper(strings.TrimSpace(r.Role))
}

type CreateResponse struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}
