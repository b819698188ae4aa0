package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// Transaction statuses
const (
	StatusBorrowed = "BORROWED"
	StatusReturned = "RETURNED"
	StatusOverdue  = "OVERDUE"
)

// UnknownBook is shown when a transaction's book cannot be resolved.
const UnknownBook = "Unknown Book"

// ========================================
// VIEWS
// ========================================

// AdminTransactionView is a transaction decorated with borrower and book names.
type AdminTransactionView struct {
	TransactionID   int64           `json:"transaction_id"`
	UserID          int64           `json:"user_id"`
	Username        string          `json:"username"`
	BookID          int64           `json:"book_id"`
	BookTitle       string          `json:"book_title"`
	TransactionType string          `json:"transaction_type"`
	TransactionDate string          `json:"transaction_date"`
	DueDate         string          `json:"due_date"`
	ReturnDate      string          `json:"return_date"`
	Status          string          `json:"status"`
	FineAmount      decimal.Decimal `json:"fine_amount"`
}

// TransactionPage is one page of the joined admin view.
type TransactionPage struct {
	Transactions []AdminTransactionView `json:"transactions"`
	TotalCount   int                    `json:"total_count"`
	Page         int                    `json:"page"`
	Limit        int                    `json:"limit"`
	TotalPages   int                    `json:"total_pages"`
}

// UserTransactionView is one row of a user's borrowing history.
type UserTransactionView struct {
	TransactionID   int64           `json:"transaction_id"`
	BookID          int64           `json:"book_id"`
	BookTitle       string          `json:"book_title"`
	BookAuthor      string          `json:"book_author"`
	TransactionType string          `json:"transaction_type"`
	TransactionDate string          `json:"transaction_date"`
	DueDate         string          `json:"due_date"`
	ReturnDate      string          `json:"return_date"`
	Status          string          `json:"status"`
	FineAmount      decimal.Decimal `json:"fine_amount"`
}

// AdminStats counts open loans across all users.
type AdminStats struct {
	BorrowedBooks int `json:"borrowed_books"`
	OverdueBooks  int `json:"overdue_books"`
}

// ========================================
// FILTERS & DTOs
// ========================================

// ListFilter narrows the admin view. Zero UserID and empty Status mean no filter.
type ListFilter struct {
	UserID int64
	Status string
	Page   int
	Limit  int
}

// IssueRequest - POST /admin/issue-book
type IssueRequest struct {
	BookID int64 `json:"book_id"`
	UserID int64 `json:"user_id"`
}

func (r IssueRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required.Error("book_id is required"), validation.Min(int64(1))),
		validation.Field(&r.UserID, validation.Required.Error("user_id is required"), validation.Min(int64(1))),
	)
}

type IssueResponse struct {
	TransactionID int64  `json:"transaction_id"`
	Message       string `json:"message"`
}

// ReturnRequest - POST /admin/return-book
type ReturnRequest struct {
	TransactionID int64 `json:"transaction_id"`
}

func (r ReturnRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TransactionID, validation.Required.Error("transaction_id is required"), validation.Min(int64(1))),
	)
}

type ReturnResponse struct {
	TransactionID int64           `json:"transaction_id"`
	FineAmount    decimal.Decimal `json:"fine_amount"`
	Message       string          `json:"message"`
}
