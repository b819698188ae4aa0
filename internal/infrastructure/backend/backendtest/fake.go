// Package backendtest provides an in-memory stand-in for the library backend.
package backendtest

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"library-gateway/internal/infrastructure/backend"
)

// Fake implements backend.Library over in-memory slices.
// Set Errors[method] to make a call fail with that error.
type Fake struct {
	mu sync.Mutex

	Books        []backend.Book
	Users        []backend.User
	Transactions []backend.Transaction
	Requests     []backend.BookRequest

	Errors map[string]error
	Calls  map[string]int

	// Credentials maps username to password for AuthenticateUser.
	Credentials map[string]string
	Stats       map[int64]backend.GetUserStatsResponse

	nextID int64
}

var _ backend.Library = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		Errors:      map[string]error{},
		Calls:       map[string]int{},
		Credentials: map[string]string{},
		Stats:       map[int64]backend.GetUserStatsResponse{},
		nextID:      1000,
	}
}

// FailWith makes every call of method fail with err until cleared.
func (f *Fake) FailWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[method] = err
}

func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// Unavailable builds the error a real client returns on transport failure.
func Unavailable(method string) error {
	return &backend.Error{Method: method, Kind: backend.KindUnavailable, Err: context.DeadlineExceeded}
}

// Rejected builds the error a real client returns on success=false.
func Rejected(method, message string) error {
	return &backend.Error{Method: method, Kind: backend.KindRejected, Message: message}
}

func (f *Fake) enter(method string) error {
	f.mu.Lock()
	f.Calls[method]++
	return f.Errors[method]
}

func (f *Fake) id() int64 {
	f.nextID++
	return f.nextID
}

// ================================================
// AUTH
// ================================================

func (f *Fake) AuthenticateUser(_ context.Context, req backend.AuthenticateUserRequest) (*backend.AuthenticateUserResponse, error) {
	err := f.enter("AuthenticateUser")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if pw, ok := f.Credentials[req.Username]; !ok || pw != req.Password {
		return nil, Rejected("AuthenticateUser", "Invalid username or password")
	}
	for _, u := range f.Users {
		if u.Username == req.Username {
			u := u
			return &backend.AuthenticateUserResponse{Success: true, Message: "Login successful", User: &u}, nil
		}
	}
	return nil, Rejected("AuthenticateUser", "User not found")
}

// ================================================
// BOOKS
// ================================================

func (f *Fake) GetBooks(_ context.Context, req backend.GetBooksRequest) (*backend.GetBooksResponse, error) {
	err := f.enter("GetBooks")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(req.SearchQuery)
	out := []backend.Book{}
	for _, b := range f.Books {
		if q == "" || strings.Contains(strings.ToLower(b.Title), q) || strings.Contains(strings.ToLower(b.Author), q) {
			out = append(out, b)
		}
	}
	return &backend.GetBooksResponse{Books: out}, nil
}

func (f *Fake) CreateBook(_ context.Context, req backend.CreateBookRequest) (*backend.BookResponse, error) {
	err := f.enter("CreateBook")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	b := backend.Book{
		BookID:          f.id(),
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		PublishedYear:   req.PublishedYear,
		AvailableCopies: req.AvailableCopies,
	}
	f.Books = append(f.Books, b)
	return &backend.BookResponse{Success: true, Message: "Book created successfully", Book: &b}, nil
}

func (f *Fake) UpdateBook(_ context.Context, req backend.UpdateBookRequest) (*backend.StatusResponse, error) {
	err := f.enter("UpdateBook")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range f.Books {
		if f.Books[i].BookID == req.BookID {
			f.Books[i] = backend.Book{
				BookID:          req.BookID,
				Title:           req.Title,
				Author:          req.Author,
				Genre:           req.Genre,
				PublishedYear:   req.PublishedYear,
				AvailableCopies: req.AvailableCopies,
			}
			return &backend.StatusResponse{Success: true, Message: "Book updated successfully"}, nil
		}
	}
	return nil, Rejected("UpdateBook", "Book not found")
}

func (f *Fake) DeleteBook(_ context.Context, req backend.DeleteBookRequest) (*backend.StatusResponse, error) {
	err := f.enter("DeleteBook")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range f.Books {
		if f.Books[i].BookID == req.BookID {
			f.Books = append(f.Books[:i], f.Books[i+1:]...)
			return &backend.StatusResponse{Success: true, Message: "Book deleted successfully"}, nil
		}
	}
	return nil, Rejected("DeleteBook", "Book not found")
}

// ================================================
// USERS
// ================================================

func (f *Fake) GetUsers(_ context.Context, _ backend.GetUsersRequest) (*backend.GetUsersResponse, error) {
	err := f.enter("GetUsers")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &backend.GetUsersResponse{Users: append([]backend.User(nil), f.Users...)}, nil
}

func (f *Fake) CreateUser(_ context.Context, req backend.CreateUserRequest) (*backend.UserResponse, error) {
	err := f.enter("CreateUser")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for _, u := range f.Users {
		if u.Username == req.Username {
			return nil, Rejected("CreateUser", "Username already exists")
		}
	}
	u := backend.User{UserID: f.id(), Username: req.Username, Email: req.Email, Role: req.Role, IsActive: true}
	f.Users = append(f.Users, u)
	return &backend.UserResponse{Success: true, Message: "User created successfully", User: &u}, nil
}

func (f *Fake) UpdateUser(_ context.Context, req backend.UpdateUserRequest) (*backend.StatusResponse, error) {
	err := f.enter("UpdateUser")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range f.Users {
		if f.Users[i].UserID == req.UserID {
			f.Users[i] = backend.User{
				UserID:   req.UserID,
				Username: req.Username,
				Email:    req.Email,
				Role:     req.Role,
				IsActive: req.IsActive,
			}
			return &backend.StatusResponse{Success: true, Message: "User updated successfully"}, nil
		}
	}
	return nil, Rejected("UpdateUser", "User not found")
}

func (f *Fake) GetUserStats(_ context.Context, req backend.GetUserStatsRequest) (*backend.GetUserStatsResponse, error) {
	err := f.enter("GetUserStats")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	stats := f.Stats[req.UserID]
	return &stats, nil
}

// ================================================
// TRANSACTIONS
// ================================================

func (f *Fake) GetTransactions(_ context.Context, req backend.GetTransactionsRequest) (*backend.GetTransactionsResponse, error) {
	err := f.enter("GetTransactions")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return &backend.GetTransactionsResponse{Transactions: f.filterTransactions(req.UserID, req.Status)}, nil
}

func (f *Fake) GetUserTransactions(_ context.Context, req backend.GetUserTransactionsRequest) (*backend.GetTransactionsResponse, error) {
	err := f.enter("GetUserTransactions")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	txns := f.filterTransactions(req.UserID, req.Status)
	for i := range txns {
		for _, b := range f.Books {
			if b.BookID == txns[i].BookID {
				txns[i].BookTitle = b.Title
				txns[i].BookAuthor = b.Author
			}
		}
	}
	return &backend.GetTransactionsResponse{Transactions: txns}, nil
}

func (f *Fake) filterTransactions(userID int64, status string) []backend.Transaction {
	out := []backend.Transaction{}
	for _, t := range f.Transactions {
		if userID != 0 && t.MemberID != userID {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (f *Fake) IssueBook(_ context.Context, req backend.IssueBookRequest) (*backend.TransactionResponse, error) {
	err := f.enter("IssueBook")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range f.Books {
		if f.Books[i].BookID != req.BookID {
			continue
		}
		if f.Books[i].AvailableCopies <= 0 {
			return nil, Rejected("IssueBook", "Book not available")
		}
		f.Books[i].AvailableCopies--
		t := backend.Transaction{
			TransactionID:   f.id(),
			MemberID:        req.MemberID,
			BookID:          req.BookID,
			TransactionType: "BORROW",
			Status:          "BORROWED",
			FineAmount:      decimal.Zero,
		}
		f.Transactions = append(f.Transactions, t)
		return &backend.TransactionResponse{Success: true, Message: "Book issued successfully", Transaction: &t}, nil
	}
	return nil, Rejected("IssueBook", "Book not found")
}

func (f *Fake) ReturnBook(_ context.Context, req backend.ReturnBookRequest) (*backend.TransactionResponse, error) {
	err := f.enter("ReturnBook")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	for i := range f.Transactions {
		t := &f.Transactions[i]
		if t.TransactionID != req.TransactionID {
			continue
		}
		if t.Status == "RETURNED" {
			return nil, Rejected("ReturnBook", "Book already returned")
		}
		t.Status = "RETURNED"
		for j := range f.Books {
			if f.Books[j].BookID == t.BookID {
				f.Books[j].AvailableCopies++
			}
		}
		out := backend.Transaction{
			TransactionID:   t.TransactionID,
			BookID:          t.BookID,
			TransactionType: "RETURN",
			Status:          "RETURNED",
			FineAmount:      t.FineAmount,
		}
		return &backend.TransactionResponse{Success: true, Message: "Book returned successfully", Transaction: &out}, nil
	}
	return nil, Rejected("ReturnBook", "Transaction not found")
}

// ================================================
// BOOK REQUESTS
// ================================================

func (f *Fake) CreateUserBookRequest(_ context.Context, req backend.CreateUserBookRequestRequest) (*backend.BookRequestResponse, error) {
	err := f.enter("CreateUserBookRequest")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r := backend.BookRequest{
		RequestID:     f.id(),
		UserID:        req.UserID,
		BookID:        req.BookID,
		RequestType:   req.RequestType,
		Status:        "PENDING",
		Notes:         req.Notes,
		TransactionID: req.TransactionID,
	}
	f.Requests = append(f.Requests, r)
	return &backend.BookRequestResponse{Success: true, Message: "Request created successfully", Request: &r}, nil
}

func (f *Fake) GetBookRequests(_ context.Context, req backend.GetBookRequestsRequest) (*backend.GetBookRequestsResponse, error) {
	err := f.enter("GetBookRequests")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := []backend.BookRequest{}
	for _, r := range f.Requests {
		if req.Status == "" || r.Status == req.Status {
			out = append(out, r)
		}
	}
	return &backend.GetBookRequestsResponse{Requests: out}, nil
}

func (f *Fake) ApproveBookRequest(_ context.Context, req backend.ApproveBookRequestRequest) (*backend.StatusResponse, error) {
	err := f.enter("ApproveBookRequest")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.decide("ApproveBookRequest", req.RequestID, "APPROVED", "")
}

func (f *Fake) RejectBookRequest(_ context.Context, req backend.RejectBookRequestRequest) (*backend.StatusResponse, error) {
	err := f.enter("RejectBookRequest")
	defer f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.decide("RejectBookRequest", req.RequestID, "REJECTED", req.Notes)
}

func (f *Fake) decide(method string, requestID int64, status, notes string) (*backend.StatusResponse, error) {
	for i := range f.Requests {
		r := &f.Requests[i]
		if r.RequestID != requestID {
			continue
		}
		if r.Status != "PENDING" {
			return nil, Rejected(method, "Request already processed")
		}
		r.Status = status
		if notes != "" {
			r.Notes = notes
		}
		return &backend.StatusResponse{Success: true, Message: "Request " + strings.ToLower(status) + " successfully"}, nil
	}
	return nil, Rejected(method, "Request not found")
}
