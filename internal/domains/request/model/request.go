package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Request types
const (
	TypeIssue  = "ISSUE"
	TypeReturn = "RETURN"
)

// Request statuses. PENDING moves to APPROVED or REJECTED exactly once.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Unknown is shown for a book that cannot be resolved.
const Unknown = "Unknown"

// ========================================
// VIEWS
// ========================================

// AdminRequestView is one row of the admin pending-requests screen.
type AdminRequestView struct {
	RequestID       int64  `json:"request_id"`
	UserID          int64  `json:"user_id"`
	UserName        string `json:"user_name"`
	BookID          int64  `json:"book_id"`
	BookTitle       string `json:"book_title"`
	BookAuthor      string `json:"book_author"`
	AvailableCopies int32  `json:"available_copies"`
	RequestType     string `json:"request_type"`
	Status          string `json:"status"`
	RequestDate     string `json:"request_date"`
	Notes           string `json:"notes"`
	TransactionID   int64  `json:"transaction_id"`
}

// UserRequestView is one row of a user's own request history.
type UserRequestView struct {
	RequestID     int64  `json:"request_id"`
	UserID        int64  `json:"user_id"`
	BookID        int64  `json:"book_id"`
	BookTitle     string `json:"book_title"`
	BookAuthor    string `json:"book_author"`
	RequestType   string `json:"request_type"`
	Status        string `json:"status"`
	RequestDate   string `json:"request_date"`
	Notes         string `json:"notes"`
	TransactionID int64  `json:"transaction_id"`
}

// ========================================
// DTOs
// ========================================

// CreateRequest - POST /user/book-request
type CreateRequest struct {
	UserID        int64  `json:"user_id"`
	BookID        int64  `json:"book_id"`
	RequestType   string `json:"request_type"`
	TransactionID int64  `json:"transaction_id"`
	Notes         string `json:"notes"`
}

func (r CreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required.Error("user_id is required"), validation.Min(int64(1))),
		validation.Field(&r.RequestType,
			validation.Required.Error("request_type is required"),
			validation.In(TypeIssue, TypeReturn).Error("request_type must be ISSUE or RETURN"),
		),
		validation.Field(&r.BookID,
			validation.When(r.RequestType == TypeIssue, validation.Required.Error("book_id is required for ISSUE requests")),
			validation.Min(int64(0)),
		),
		validation.Field(&r.TransactionID,
			validation.When(r.RequestType == TypeReturn, validation.Required.Error("transaction_id is required for RETURN requests")),
			validation.Min(int64(0)),
		),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

type CreateResponse struct {
	RequestID int64  `json:"request_id"`
	Message   string `json:"message"`
	Status    string `json:"status"`
}

// RejectRequest - POST /admin/book-requests/:request_id/reject. The body is optional.
type RejectRequest struct {
	Notes string `json:"notes"`
}

func (r RejectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}
