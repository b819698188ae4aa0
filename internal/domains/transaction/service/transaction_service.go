package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"library-gateway/internal/domains/transaction/model"
	"library-gateway/internal/infrastructure/backend"
	"library-gateway/internal/shared/utils"
)

type ServiceInterface interface {
	Issue(ctx context.Context, req model.IssueRequest) (*model.IssueResponse, error)
	Return(ctx context.Context, req model.ReturnRequest) (*model.ReturnResponse, error)
	ListAdmin(ctx context.Context, filter model.ListFilter) (*model.TransactionPage, error)
	ListForUser(ctx context.Context, userID int64, status string) ([]model.UserTransactionView, error)
	Stats(ctx context.Context) (*model.AdminStats, error)
}

type TransactionService struct {
	backend backend.Library
	adminID int64
	now     func() time.Time
}

var _ ServiceInterface = (*TransactionService)(nil)

func NewTransactionService(lib backend.Library, adminID int64) *TransactionService {
	return &TransactionService{
		backend: lib,
		adminID: adminID,
		now:     time.Now,
	}
}

// =====================================================
// ISSUE / RETURN
// =====================================================

func (s *TransactionService) Issue(ctx context.Context, req model.IssueRequest) (*model.IssueResponse, error) {
	resp, err := s.backend.IssueBook(ctx, backend.IssueBookRequest{
		BookID:   req.BookID,
		MemberID: req.UserID,
		AdminID:  s.adminID,
	})
	if err != nil {
		return nil, err
	}

	out := &model.IssueResponse{Message: resp.Message}
	if resp.Transaction != nil {
		out.TransactionID = resp.Transaction.TransactionID
	}

	log.Info().
		Int64("book_id", req.BookID).
		Int64("user_id", req.UserID).
		Int64("transaction_id", out.TransactionID).
		Msg("Book issued")
	return out, nil
}

func (s *TransactionService) Return(ctx context.Context, req model.ReturnRequest) (*model.ReturnResponse, error) {
	resp, err := s.backend.ReturnBook(ctx, backend.ReturnBookRequest{
		TransactionID: req.TransactionID,
		AdminID:       s.adminID,
	})
	if err != nil {
		return nil, err
	}

	out := &model.ReturnResponse{TransactionID: req.TransactionID, FineAmount: decimal.Zero, Message: resp.Message}
	if resp.Transaction != nil {
		out.TransactionID = resp.Transaction.TransactionID
		out.FineAmount = resp.Transaction.FineAmount
	}

	log.Info().
		Int64("transaction_id", out.TransactionID).
		Str("fine_amount", out.FineAmount.StringFixed(2)).
		Msg("Book returned")
	return out, nil
}

// =====================================================
// ADMIN VIEW
// =====================================================

// ListAdmin joins transactions with users and books, then paginates the
// joined result. total_count always reflects the whole joined collection.
func (s *TransactionService) ListAdmin(ctx context.Context, filter model.ListFilter) (*model.TransactionPage, error) {
	status, err := normalizeStatus(filter.Status)
	if err != nil {
		return nil, err
	}

	var (
		txns  *backend.GetTransactionsResponse
		users *backend.GetUsersResponse
		books *backend.GetBooksResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txns, err = s.backend.GetTransactions(gctx, backend.GetTransactionsRequest{UserID: filter.UserID, Status: status})
		return err
	})
	g.Go(func() (err error) {
		users, err = s.backend.GetUsers(gctx, backend.GetUsersRequest{})
		return err
	})
	g.Go(func() (err error) {
		books, err = s.backend.GetBooks(gctx, backend.GetBooksRequest{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	usersByID := utils.IndexBy(users.Users, func(u backend.User) int64 { return u.UserID })
	booksByID := utils.IndexBy(books.Books, func(b backend.Book) int64 { return b.BookID })

	joined := make([]model.AdminTransactionView, 0, len(txns.Transactions))
	for _, t := range txns.Transactions {
		view := model.AdminTransactionView{
			TransactionID:   t.TransactionID,
			UserID:          t.MemberID,
			Username:        fmt.Sprintf("User %d", t.MemberID),
			BookID:          t.BookID,
			BookTitle:       model.UnknownBook,
			TransactionType: t.TransactionType,
			TransactionDate: t.TransactionDate,
			DueDate:         t.DueDate,
			ReturnDate:      t.ReturnDate,
			Status:          t.Status,
			FineAmount:      t.FineAmount,
		}
		if u, ok := usersByID[t.MemberID]; ok && u.Username != "" {
			view.Username = u.Username
		}
		if b, ok := booksByID[t.BookID]; ok && b.Title != "" {
			view.BookTitle = b.Title
		}
		joined = append(joined, view)
	}

	w := utils.Paginate(len(joined), filter.Page, filter.Limit)
	return &model.TransactionPage{
		Transactions: joined[w.Start:w.End],
		TotalCount:   w.TotalCount,
		Page:         w.Page,
		Limit:        w.Limit,
		TotalPages:   w.TotalPages,
	}, nil
}

// =====================================================
// USER VIEW
// =====================================================

func (s *TransactionService) ListForUser(ctx context.Context, userID int64, status string) ([]model.UserTransactionView, error) {
	if userID <= 0 {
		return nil, model.ErrInvalidUserID
	}
	status, err := normalizeStatus(status)
	if err != nil {
		return nil, err
	}

	resp, err := s.backend.GetUserTransactions(ctx, backend.GetUserTransactionsRequest{UserID: userID, Status: status})
	if err != nil {
		return nil, err
	}

	views := make([]model.UserTransactionView, 0, len(resp.Transactions))
	for _, t := range resp.Transactions {
		views = append(views, model.UserTransactionView{
			TransactionID:   t.TransactionID,
			BookID:          t.BookID,
			BookTitle:       t.BookTitle,
			BookAuthor:      t.BookAuthor,
			TransactionType: t.TransactionType,
			TransactionDate: t.TransactionDate,
			DueDate:         t.DueDate,
			ReturnDate:      t.ReturnDate,
			Status:          t.Status,
			FineAmount:      t.FineAmount,
		})
	}
	return views, nil
}

// =====================================================
// STATS
// =====================================================

// Stats counts BORROWED loans and, among them, those already past due.
func (s *TransactionService) Stats(ctx context.Context) (*model.AdminStats, error) {
	resp, err := s.backend.GetTransactions(ctx, backend.GetTransactionsRequest{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &model.AdminStats{}
	for _, t := range resp.Transactions {
		if t.Status != model.StatusBorrowed {
			continue
		}
		stats.BorrowedBooks++
		if due, ok := parseDate(t.DueDate); ok && due.Before(now) {
			stats.OverdueBooks++
		}
	}
	return stats, nil
}

func normalizeStatus(raw string) (string, error) {
	status := strings.ToUpper(strings.TrimSpace(raw))
	switch status {
	case "", model.StatusBorrowed, model.StatusReturned, model.StatusOverdue:
		return status, nil
	default:
		return "", model.ErrInvalidStatus
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02",
}

// parseDate accepts the timestamp shapes the backend emits. Naive timestamps are UTC.
func parseDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
