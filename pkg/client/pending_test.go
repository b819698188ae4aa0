package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-gateway/internal/domains/request/model"
)

type fakeGateway struct {
	mu      sync.Mutex
	pending []model.AdminRequestView
	fetches int

	fetchErr  error
	decideErr error
	// holdFetch, when set, parks the next PendingRequests after it has read
	// the list, until closed.
	holdFetch    chan struct{}
	fetchStarted chan struct{}
	// gate, when set, blocks Approve/Reject until closed.
	gate    chan struct{}
	entered chan struct{}
}

func (f *fakeGateway) PendingRequests(context.Context) ([]model.AdminRequestView, error) {
	f.mu.Lock()
	f.fetches++
	if f.fetchErr != nil {
		f.mu.Unlock()
		return nil, f.fetchErr
	}
	snapshot := append([]model.AdminRequestView(nil), f.pending...)
	hold := f.holdFetch
	f.holdFetch = nil
	f.mu.Unlock()

	if hold != nil {
		f.fetchStarted <- struct{}{}
		<-hold
	}
	return snapshot, nil
}

func (f *fakeGateway) Approve(_ context.Context, id int64) (string, error) {
	return f.decide(id, "Request approved successfully")
}

func (f *fakeGateway) Reject(_ context.Context, id int64, _ string) (string, error) {
	return f.decide(id, "Request rejected successfully")
}

func (f *fakeGateway) decide(id int64, msg string) (string, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decideErr != nil {
		return "", f.decideErr
	}
	for i, it := range f.pending {
		if it.RequestID == id {
			f.pending = append(f.pending[:i:i], f.pending[i+1:]...)
			break
		}
	}
	return msg, nil
}

func pending(ids ...int64) []model.AdminRequestView {
	out := make([]model.AdminRequestView, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.AdminRequestView{RequestID: id, Status: model.StatusPending})
	}
	return out
}

func requestIDs(items []model.AdminRequestView) []int64 {
	out := []int64{}
	for _, it := range items {
		out = append(out, it.RequestID)
	}
	return out
}

func Test_PendingRequests_Refresh(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2, 3)}
	store := NewPendingRequests(gw)

	require.NoError(t, store.Refresh(t.Context()))

	assert.Equal(t, []int64{1, 2, 3}, requestIDs(store.Items()))
	assert.Equal(t, 3, store.PendingCount())
}

func Test_PendingRequests_Refresh_ErrorKeepsList(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2)}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	gw.fetchErr = errors.New("down")

	assert.Error(t, store.Refresh(t.Context()))
	assert.Equal(t, []int64{1, 2}, requestIDs(store.Items()))
}

func Test_PendingRequests_Approve_Confirmed(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2, 3)}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	d, err := store.Approve(t.Context(), 2)

	require.NoError(t, err)
	assert.Equal(t, Confirmed, d.Outcome)
	assert.Equal(t, "Request approved successfully", d.Message)
	assert.Equal(t, []int64{1, 3}, requestIDs(store.Items()))
	assert.Equal(t, 2, store.PendingCount())
	assert.Equal(t, 1, gw.fetches, "a confirmed decision does not refetch")
}

func Test_PendingRequests_Reject_Confirmed(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2)}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	d, err := store.Reject(t.Context(), 1, "no copies")

	require.NoError(t, err)
	assert.Equal(t, Confirmed, d.Outcome)
	assert.Equal(t, []int64{2}, requestIDs(store.Items()))
}

func Test_PendingRequests_FailureRefetchesInsteadOfPatching(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2, 3)}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	// Meanwhile another admin handled request 3 and a new one arrived.
	gw.pending = pending(1, 2, 4)
	gw.decideErr = &APIError{StatusCode: 400, Message: "Request already processed"}

	d, err := store.Approve(t.Context(), 2)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, Reverted, d.Outcome)
	assert.Equal(t, []int64{1, 2, 4}, requestIDs(store.Items()), "list mirrors the server, not the old snapshot")
	assert.Equal(t, 2, gw.fetches)
}

func Test_PendingRequests_FailedRefetchJoinsErrors(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2)}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	decideErr := errors.New("unavailable")
	fetchErr := errors.New("still unavailable")
	gw.decideErr = decideErr
	gw.fetchErr = fetchErr

	d, err := store.Approve(t.Context(), 1)

	assert.Equal(t, Reverted, d.Outcome)
	assert.ErrorIs(t, err, decideErr)
	assert.ErrorIs(t, err, fetchErr)
	assert.Equal(t, []int64{2}, requestIDs(store.Items()))
}

func Test_PendingRequests_RemovesBeforeBackendAnswers(t *testing.T) {
	gw := &fakeGateway{
		pending: pending(1, 2),
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	done := make(chan Decision, 1)
	go func() {
		d, _ := store.Approve(context.Background(), 1)
		done <- d
	}()
	<-gw.entered

	assert.Equal(t, []int64{2}, requestIDs(store.Items()))
	assert.Equal(t, 1, store.PendingCount())

	// A refresh racing the decision must not resurrect the item.
	require.NoError(t, store.Refresh(t.Context()))
	assert.Equal(t, []int64{2}, requestIDs(store.Items()))

	close(gw.gate)
	d := <-done
	assert.Equal(t, Confirmed, d.Outcome)
	assert.Equal(t, []int64{2}, requestIDs(store.Items()))
}

func Test_PendingRequests_SlowRefreshDoesNotResurrectConfirmedItem(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2)}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	hold := make(chan struct{})
	gw.holdFetch = hold
	gw.fetchStarted = make(chan struct{}, 1)
	refreshed := make(chan error, 1)
	go func() { refreshed <- store.Refresh(context.Background()) }()
	<-gw.fetchStarted

	// The fetch above already read [1, 2]; request 1 is confirmed before it lands.
	d, err := store.Approve(t.Context(), 1)
	require.NoError(t, err)
	require.Equal(t, Confirmed, d.Outcome)

	close(hold)
	require.NoError(t, <-refreshed)
	assert.Equal(t, []int64{2}, requestIDs(store.Items()))

	require.NoError(t, store.Refresh(t.Context()))
	assert.Equal(t, []int64{2}, requestIDs(store.Items()))
}

func Test_PendingRequests_OutOfOrderRefreshIsDiscarded(t *testing.T) {
	gw := &fakeGateway{pending: pending(1, 2)}
	store := NewPendingRequests(gw)

	hold := make(chan struct{})
	gw.holdFetch = hold
	gw.fetchStarted = make(chan struct{}, 1)
	refreshed := make(chan error, 1)
	go func() { refreshed <- store.Refresh(context.Background()) }()
	<-gw.fetchStarted

	gw.mu.Lock()
	gw.pending = pending(2, 3)
	gw.mu.Unlock()
	require.NoError(t, store.Refresh(t.Context()))

	close(hold)
	require.NoError(t, <-refreshed)
	assert.Equal(t, []int64{2, 3}, requestIDs(store.Items()))
}

func Test_PendingRequests_UnknownIDStillCallsBackend(t *testing.T) {
	gw := &fakeGateway{pending: pending(1)}
	store := NewPendingRequests(gw)
	require.NoError(t, store.Refresh(t.Context()))

	d, err := store.Approve(t.Context(), 99)

	require.NoError(t, err)
	assert.Equal(t, Confirmed, d.Outcome)
	assert.Equal(t, []int64{1}, requestIDs(store.Items()))
}

func Test_Outcome_String(t *testing.T) {
	assert.Equal(t, "optimistic", Optimistic.String())
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "reverted", Reverted.String())
	assert.Equal(t, "unknown", Outcome(9).String())
}
