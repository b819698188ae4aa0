package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notification "library-gateway/internal/domains/notification/model"
	notifier "library-gateway/internal/domains/notification/service"
	"library-gateway/internal/domains/request/model"
	"library-gateway/internal/infrastructure/backend"
	"library-gateway/internal/infrastructure/backend/backendtest"
)

type recordingConn struct {
	mu     sync.Mutex
	frames []any
}

func (c *recordingConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, v)
	return nil
}

func (c *recordingConn) Close() error { return nil }

func (c *recordingConn) received() []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.frames...)
}

func seededBackend() *backendtest.Fake {
	fake := backendtest.New()
	fake.Books = []backend.Book{
		{BookID: 1, Title: "Dune", Author: "Frank Herbert", AvailableCopies: 3},
		{BookID: 2, Title: "Emma", Author: "Jane Austen", AvailableCopies: 0},
	}
	fake.Users = []backend.User{
		{UserID: 7, Username: "alice", Role: "USER", IsActive: true},
	}
	fake.Transactions = []backend.Transaction{
		{TransactionID: 500, MemberID: 7, BookID: 2, Status: "BORROWED"},
	}
	fake.Requests = []backend.BookRequest{
		{RequestID: 42, UserID: 7, BookID: 1, RequestType: model.TypeIssue, Status: model.StatusPending},
		{RequestID: 43, UserID: 7, BookID: 1, RequestType: model.TypeReturn, Status: model.StatusPending, TransactionID: 500},
		{RequestID: 44, UserID: 8, BookID: 0, RequestType: model.TypeIssue, Status: model.StatusPending},
		{RequestID: 45, UserID: 7, BookID: 1, RequestType: model.TypeIssue, Status: model.StatusApproved},
	}
	return fake
}

func newService(fake *backendtest.Fake, hub *notifier.Hub) *RequestService {
	return NewRequestService(fake, hub, 1, time.Second)
}

// ========================================
// VIEWS
// ========================================

func Test_ListPending_JoinsAndPreservesOrder(t *testing.T) {
	svc := newService(seededBackend(), notifier.NewHub())

	views, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []int64{42, 43, 44}, []int64{views[0].RequestID, views[1].RequestID, views[2].RequestID})

	assert.Equal(t, "alice", views[0].UserName)
	assert.Equal(t, "Dune", views[0].BookTitle)
	assert.Equal(t, int32(3), views[0].AvailableCopies)
}

func Test_ListPending_ReturnResolvesThroughTransaction(t *testing.T) {
	svc := newService(seededBackend(), notifier.NewHub())

	views, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	// Request 43 names book 1 directly but its transaction points at book 2.
	ret := views[1]
	assert.Equal(t, "Emma", ret.BookTitle)
	assert.Equal(t, "Jane Austen", ret.BookAuthor)
	assert.Equal(t, int32(0), ret.AvailableCopies)
}

func Test_ListPending_UnresolvedFallsBackToSentinels(t *testing.T) {
	svc := newService(seededBackend(), notifier.NewHub())

	views, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	unresolved := views[2]
	assert.Equal(t, "Unknown", unresolved.BookTitle)
	assert.Equal(t, "Unknown", unresolved.BookAuthor)
	assert.Equal(t, int32(0), unresolved.AvailableCopies)
	assert.Equal(t, "User 8", unresolved.UserName)
}

func Test_ListPending_EmptyUsername_FallsBackToUserID(t *testing.T) {
	fake := seededBackend()
	fake.Users = append(fake.Users, backend.User{UserID: 8, Username: ""})
	svc := newService(fake, notifier.NewHub())

	views, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "alice", views[0].UserName)
	assert.Equal(t, "User 8", views[2].UserName)
}

func Test_ListPending_ReturnWithMissingTransaction_IsUnknown(t *testing.T) {
	fake := seededBackend()
	fake.Requests = []backend.BookRequest{
		{RequestID: 1, UserID: 7, BookID: 1, RequestType: model.TypeReturn, Status: model.StatusPending, TransactionID: 999},
	}
	svc := newService(fake, notifier.NewHub())

	views, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Unknown", views[0].BookTitle)
}

func Test_ListPending_AnyFetchFailure_FailsWholeView(t *testing.T) {
	for _, method := range []string{"GetBookRequests", "GetBooks", "GetUsers", "GetTransactions"} {
		t.Run(method, func(t *testing.T) {
			fake := seededBackend()
			fake.FailWith(method, backendtest.Unavailable(method))
			svc := newService(fake, notifier.NewHub())

			views, err := svc.ListPending(context.Background())

			assert.Nil(t, views)
			assert.True(t, errors.Is(err, backend.ErrUnavailable))
		})
	}
}

func Test_ListPending_Empty_IsNotNil(t *testing.T) {
	fake := seededBackend()
	fake.Requests = nil
	svc := newService(fake, notifier.NewHub())

	views, err := svc.ListPending(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func Test_ListForUser_FiltersByUser(t *testing.T) {
	svc := newService(seededBackend(), notifier.NewHub())

	views, err := svc.ListForUser(context.Background(), 7)

	require.NoError(t, err)
	require.Len(t, views, 3)
	for _, v := range views {
		assert.Equal(t, int64(7), v.UserID)
	}
	assert.Equal(t, "Emma", views[1].BookTitle)
	assert.Equal(t, model.StatusApproved, views[2].Status)
}

func Test_ListForUser_InvalidUser(t *testing.T) {
	svc := newService(seededBackend(), notifier.NewHub())

	_, err := svc.ListForUser(context.Background(), 0)

	assert.ErrorIs(t, err, model.ErrInvalidUserID)
}

// ========================================
// WORKFLOW
// ========================================

func Test_Approve_NotifiesConnectedUserExactlyOnce(t *testing.T) {
	hub := notifier.NewHub()
	conn := &recordingConn{}
	hub.Register(7, conn)
	svc := newService(seededBackend(), hub)

	msg, err := svc.Approve(context.Background(), 42)
	svc.Wait()

	require.NoError(t, err)
	assert.NotEmpty(t, msg)
	require.Len(t, conn.received(), 1)
	assert.Equal(t, notification.Notification{
		Type:      notification.KindRequestApproved,
		Message:   "Your issue request has been approved",
		RequestID: 42,
	}, conn.received()[0])
}

func Test_Approve_RemovesRequestFromPendingView(t *testing.T) {
	svc := newService(seededBackend(), notifier.NewHub())

	_, err := svc.Approve(context.Background(), 42)
	require.NoError(t, err)
	svc.Wait()

	views, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	for _, v := range views {
		assert.NotEqual(t, int64(42), v.RequestID)
	}
}

func Test_Approve_BackendRejection_SendsNothing(t *testing.T) {
	hub := notifier.NewHub()
	conn := &recordingConn{}
	hub.Register(7, conn)
	fake := seededBackend()
	svc := newService(fake, hub)

	_, err := svc.Approve(context.Background(), 45)
	svc.Wait()

	require.Error(t, err)
	msg, ok := backend.RejectionMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "Request already processed", msg)
	assert.Empty(t, conn.received())
	assert.Equal(t, 0, fake.CallCount("GetBookRequests"))
}

func Test_Approve_UserNotConnected_StillSucceeds(t *testing.T) {
	svc := newService(seededBackend(), notifier.NewHub())

	_, err := svc.Approve(context.Background(), 42)
	svc.Wait()

	assert.NoError(t, err)
}

func Test_Approve_LookupFailure_DoesNotFailApproval(t *testing.T) {
	hub := notifier.NewHub()
	conn := &recordingConn{}
	hub.Register(7, conn)
	fake := seededBackend()
	fake.FailWith("GetBookRequests", backendtest.Unavailable("GetBookRequests"))
	svc := newService(fake, hub)

	_, err := svc.Approve(context.Background(), 42)
	svc.Wait()

	assert.NoError(t, err)
	assert.Empty(t, conn.received())
}

func Test_Approve_CancelledRequestContext_StillNotifies(t *testing.T) {
	hub := notifier.NewHub()
	conn := &recordingConn{}
	hub.Register(7, conn)
	svc := newService(seededBackend(), hub)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Approve(ctx, 42)
	cancel()
	svc.Wait()

	require.NoError(t, err)
	assert.Len(t, conn.received(), 1)
}

func Test_Approve_InvalidID(t *testing.T) {
	fake := seededBackend()
	svc := newService(fake, notifier.NewHub())

	_, err := svc.Approve(context.Background(), 0)

	assert.ErrorIs(t, err, model.ErrInvalidRequestID)
	assert.Equal(t, 0, fake.CallCount("ApproveBookRequest"))
}

func Test_Reject_PassesNotesAndNotifies(t *testing.T) {
	hub := notifier.NewHub()
	conn := &recordingConn{}
	hub.Register(7, conn)
	fake := seededBackend()
	svc := newService(fake, hub)

	_, err := svc.Reject(context.Background(), 43, "damaged copy")
	svc.Wait()

	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, fake.Requests[1].Status)
	assert.Equal(t, "damaged copy", fake.Requests[1].Notes)
	require.Len(t, conn.received(), 1)
	assert.Equal(t, notification.Notification{
		Type:      notification.KindRequestRejected,
		Message:   "Your return request has been rejected",
		RequestID: 43,
	}, conn.received()[0])
}

func Test_Reject_Unavailable_Propagates(t *testing.T) {
	fake := seededBackend()
	fake.FailWith("RejectBookRequest", backendtest.Unavailable("RejectBookRequest"))
	svc := newService(fake, notifier.NewHub())

	_, err := svc.Reject(context.Background(), 42, "")

	assert.True(t, errors.Is(err, backend.ErrUnavailable))
}

// ========================================
// CREATE
// ========================================

func Test_Create_ReturnsPendingRequest(t *testing.T) {
	fake := seededBackend()
	svc := newService(fake, notifier.NewHub())

	resp, err := svc.Create(context.Background(), model.CreateRequest{UserID: 7, BookID: 1, RequestType: model.TypeIssue})

	require.NoError(t, err)
	assert.Positive(t, resp.RequestID)
	assert.Equal(t, model.StatusPending, resp.Status)
	assert.Equal(t, 1, fake.CallCount("CreateUserBookRequest"))
}

func Test_CreateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateRequest
		wantErr bool
	}{
		{"issue ok", model.CreateRequest{UserID: 7, BookID: 1, RequestType: "ISSUE"}, false},
		{"return ok", model.CreateRequest{UserID: 7, TransactionID: 500, RequestType: "RETURN"}, false},
		{"missing user", model.CreateRequest{BookID: 1, RequestType: "ISSUE"}, true},
		{"bad type", model.CreateRequest{UserID: 7, BookID: 1, RequestType: "RENEW"}, true},
		{"issue without book", model.CreateRequest{UserID: 7, RequestType: "ISSUE"}, true},
		{"return without transaction", model.CreateRequest{UserID: 7, BookID: 1, RequestType: "RETURN"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
