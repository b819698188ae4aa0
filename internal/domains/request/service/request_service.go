package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	notification "library-gateway/internal/domains/notification/model"
	notifier "library-gateway/internal/domains/notification/service"
	"library-gateway/internal/domains/request/model"
	"library-gateway/internal/infrastructure/backend"
)

type ServiceInterface interface {
	Create(ctx context.Context, req model.CreateRequest) (*model.CreateResponse, error)
	ListForUser(ctx context.Context, userID int64) ([]model.UserRequestView, error)
	ListPending(ctx context.Context) ([]model.AdminRequestView, error)
	Approve(ctx context.Context, requestID int64) (string, error)
	Reject(ctx context.Context, requestID int64, notes string) (string, error)
}

// RequestService owns the book-request views and the approve/reject workflow.
type RequestService struct {
	backend       backend.Library
	notifier      notifier.Notifier
	adminID       int64
	notifyTimeout time.Duration

	inflight sync.WaitGroup
}

var _ ServiceInterface = (*RequestService)(nil)

func NewRequestService(lib backend.Library, n notifier.Notifier, adminID int64, notifyTimeout time.Duration) *RequestService {
	return &RequestService{
		backend:       lib,
		notifier:      n,
		adminID:       adminID,
		notifyTimeout: notifyTimeout,
	}
}

// =====================================================
// CREATE
// =====================================================

func (s *RequestService) Create(ctx context.Context, req model.CreateRequest) (*model.CreateResponse, error) {
	resp, err := s.backend.CreateUserBookRequest(ctx, backend.CreateUserBookRequestRequest{
		UserID:        req.UserID,
		BookID:        req.BookID,
		RequestType:   req.RequestType,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	out := &model.CreateResponse{Message: resp.Message, Status: model.StatusPending}
	if resp.Request != nil {
		out.RequestID = resp.Request.RequestID
		out.Status = resp.Request.Status
	}

	log.Info().
		Int64("user_id", req.UserID).
		Int64("request_id", out.RequestID).
		Str("request_type", req.RequestType).
		Msg("Book request created")
	return out, nil
}

// =====================================================
// VIEWS
// =====================================================

// ListPending joins every PENDING request with books, users and transactions.
// Any failed fetch fails the whole view.
func (s *RequestService) ListPending(ctx context.Context) ([]model.AdminRequestView, error) {
	var (
		requests *backend.GetBookRequestsResponse
		books    *backend.GetBooksResponse
		users    *backend.GetUsersResponse
		txns     *backend.GetTransactionsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		requests, err = s.backend.GetBookRequests(gctx, backend.GetBookRequestsRequest{Status: model.StatusPending})
		return err
	})
	g.Go(func() (err error) {
		books, err = s.backend.GetBooks(gctx, backend.GetBooksRequest{})
		return err
	})
	g.Go(func() (err error) {
		users, err = s.backend.GetUsers(gctx, backend.GetUsersRequest{})
		return err
	})
	g.Go(func() (err error) {
		txns, err = s.backend.GetTransactions(gctx, backend.GetTransactionsRequest{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cat := newCatalog(books.Books, users.Users, txns.Transactions)
	views := make([]model.AdminRequestView, 0, len(requests.Requests))
	for _, r := range requests.Requests {
		views = append(views, cat.adminView(r))
	}
	return views, nil
}

// ListForUser returns userID's requests. The backend cannot filter requests by
// user, so all of them are fetched and filtered here.
func (s *RequestService) ListForUser(ctx context.Context, userID int64) ([]model.UserRequestView, error) {
	if userID <= 0 {
		return nil, model.ErrInvalidUserID
	}

	var (
		requests *backend.GetBookRequestsResponse
		books    *backend.GetBooksResponse
		txns     *backend.GetTransactionsResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		requests, err = s.backend.GetBookRequests(gctx, backend.GetBookRequestsRequest{})
		return err
	})
	g.Go(func() (err error) {
		books, err = s.backend.GetBooks(gctx, backend.GetBooksRequest{})
		return err
	})
	g.Go(func() (err error) {
		txns, err = s.backend.GetTransactions(gctx, backend.GetTransactionsRequest{UserID: userID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cat := newCatalog(books.Books, nil, txns.Transactions)
	views := make([]model.UserRequestView, 0)
	for _, r := range requests.Requests {
		if r.UserID != userID {
			continue
		}
		views = append(views, cat.userView(r))
	}
	return views, nil
}

// =====================================================
// WORKFLOW
// =====================================================

// Approve approves requestID on the backend and, once that succeeded, notifies
// the requester in the background. The returned message is the backend's.
func (s *RequestService) Approve(ctx context.Context, requestID int64) (string, error) {
	if requestID <= 0 {
		return "", model.ErrInvalidRequestID
	}

	resp, err := s.backend.ApproveBookRequest(ctx, backend.ApproveBookRequestRequest{
		RequestID: requestID,
		AdminID:   s.adminID,
	})
	if err != nil {
		return "", err
	}

	log.Info().Int64("request_id", requestID).Int64("admin_id", s.adminID).Msg("Book request approved")
	s.notifyAsync(ctx, requestID, notification.KindRequestApproved)
	return resp.Message, nil
}

// Reject mirrors Approve, passing notes through to the backend.
func (s *RequestService) Reject(ctx context.Context, requestID int64, notes string) (string, error) {
	if requestID <= 0 {
		return "", model.ErrInvalidRequestID
	}

	resp, err := s.backend.RejectBookRequest(ctx, backend.RejectBookRequestRequest{
		RequestID: requestID,
		AdminID:   s.adminID,
		Notes:     notes,
	})
	if err != nil {
		return "", err
	}

	log.Info().Int64("request_id", requestID).Int64("admin_id", s.adminID).Msg("Book request rejected")
	s.notifyAsync(ctx, requestID, notification.KindRequestRejected)
	return resp.Message, nil
}

// Wait blocks until every background notification has finished.
func (s *RequestService) Wait() {
	s.inflight.Wait()
}

// notifyAsync runs the notification step detached from the HTTP request, so
// neither a client disconnect nor a slow lookup affects the response.
func (s *RequestService) notifyAsync(ctx context.Context, requestID int64, kind notification.Kind) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		ctx := context.WithoutCancel(ctx)
		if s.notifyTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.notifyTimeout)
			defer cancel()
		}
		s.notifyDecision(ctx, requestID, kind)
	}()
}

// notifyDecision looks the request up again to learn its owner and type, then
// pushes one notification. Every failure here is logged and swallowed.
func (s *RequestService) notifyDecision(ctx context.Context, requestID int64, kind notification.Kind) bool {
	resp, err := s.backend.GetBookRequests(ctx, backend.GetBookRequestsRequest{})
	if err != nil {
		log.Warn().
			Err(err).
			Int64("request_id", requestID).
			Msg("Could not resolve request for notification")
		return false
	}

	for _, r := range resp.Requests {
		if r.RequestID != requestID {
			continue
		}
		return s.notifier.Notify(ctx, r.UserID, notification.Decision(kind, r.RequestType, requestID))
	}

	log.Warn().Int64("request_id", requestID).Msg("Decided request not found, notification skipped")
	return false
}
