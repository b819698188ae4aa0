package backend

import "github.com/shopspring/decimal"

// ================================================
// ENTITIES
// ================================================

type Book struct {
	BookID          int64  `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublishedYear   int32  `json:"published_year"`
	AvailableCopies int32  `json:"available_copies"`
}

type User struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Transaction references its borrower as member_id on the wire.
type Transaction struct {
	TransactionID   int64           `json:"transaction_id"`
	MemberID        int64           `json:"member_id"`
	BookID          int64           `json:"book_id"`
	BookTitle       string          `json:"book_title,omitempty"`
	BookAuthor      string          `json:"book_author,omitempty"`
	TransactionType string          `json:"transaction_type"`
	TransactionDate string          `json:"transaction_date"`
	DueDate         string          `json:"due_date"`
	ReturnDate      string          `json:"return_date"`
	Status          string          `json:"status"`
	FineAmount      decimal.Decimal `json:"fine_amount"`
}

// BookRequest.BookID is usually zero for RETURN requests; TransactionID points at the loan instead.
type BookRequest struct {
	RequestID     int64  `json:"request_id"`
	UserID        int64  `json:"user_id"`
	BookID        int64  `json:"book_id"`
	RequestType   string `json:"request_type"`
	Status        string `json:"status"`
	RequestDate   string `json:"request_date"`
	Notes         string `json:"notes"`
	TransactionID int64  `json:"transaction_id"`
}

// ================================================
// AUTH
// ================================================

type AuthenticateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthenticateUserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// ================================================
// BOOKS
// ================================================

type GetBooksRequest struct {
	SearchQuery string `json:"search_query"`
}

type GetBooksResponse struct {
	Books []Book `json:"books"`
}

type CreateBookRequest struct {
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublishedYear   int32  `json:"published_year"`
	AvailableCopies int32  `json:"available_copies"`
}

type UpdateBookRequest struct {
	BookID          int64  `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Genre           string `json:"genre"`
	PublishedYear   int32  `json:"published_year"`
	AvailableCopies int32  `json:"available_copies"`
}

type DeleteBookRequest struct {
	BookID int64 `json:"book_id"`
}

type BookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Book    *Book  `json:"book,omitempty"`
}

// ================================================
// USERS
// ================================================

type GetUsersRequest struct{}

type GetUsersResponse struct {
	Users []User `json:"users"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateUserRequest struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	Password string `json:"password"`
}

type UserResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

type GetUserStatsRequest struct {
	UserID int64 `json:"user_id"`
}

type GetUserStatsResponse struct {
	TotalBooksTaken   int32           `json:"total_books_taken"`
	CurrentlyBorrowed int32           `json:"currently_borrowed"`
	OverdueBooks      int32           `json:"overdue_books"`
	TotalFine         decimal.Decimal `json:"total_fine"`
}

// ================================================
// TRANSACTIONS
// ================================================

// GetTransactionsRequest: zero UserID and empty Status mean "no filter".
type GetTransactionsRequest struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

type GetTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type GetUserTransactionsRequest struct {
	UserID int64  `json:"user_id"`
	Status string `json:"status"`
}

type IssueBookRequest struct {
	BookID   int64 `json:"book_id"`
	MemberID int64 `json:"member_id"`
	AdminID  int64 `json:"admin_id"`
}

type ReturnBookRequest struct {
	TransactionID int64 `json:"transaction_id"`
	AdminID       int64 `json:"admin_id"`
}

type TransactionResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	Transaction *Transaction `json:"transaction,omitempty"`
}

// ================================================
// BOOK REQUESTS
// ================================================

type CreateUserBookRequestRequest struct {
	UserID        int64  `json:"user_id"`
	BookID        int64  `json:"book_id"`
	RequestType   string `json:"request_type"`
	TransactionID int64  `json:"transaction_id"`
	Notes         string `json:"notes"`
}

// GetBookRequestsRequest: empty Status returns every request.
type GetBookRequestsRequest struct {
	Status string `json:"status"`
}

type GetBookRequestsResponse struct {
	Requests []BookRequest `json:"requests"`
}

type BookRequestResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Request *BookRequest `json:"request,omitempty"`
}

type ApproveBookRequestRequest struct {
	RequestID int64 `json:"request_id"`
	AdminID   int64 `json:"admin_id"`
}

type RejectBookRequestRequest struct {
	RequestID int64  `json:"request_id"`
	AdminID   int64  `json:"admin_id"`
	Notes     string `json:"notes"`
}

// StatusResponse is the reply of mutations that carry no entity.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
