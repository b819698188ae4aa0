package client

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"library-gateway/internal/domains/request/model"
)

// Outcome is where a decision sits in the optimistic two-phase flow.
type Outcome int

const (
	// Optimistic: removed locally, backend answer still outstanding.
	Optimistic Outcome = iota
	// Confirmed: the backend accepted the decision.
	Confirmed
	// Reverted: the backend refused or was unreachable and the list was refetched.
	Reverted
)

func (o Outcome) String() string {
	switch o {
	case Optimistic:
		return "optimistic"
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	default:
		return "unknown"
	}
}

// Decision is the result of one Approve or Reject.
type Decision struct {
	RequestID int64
	Outcome   Outcome
	Message   string
}

// Gateway is the subset of Client the store needs.
type Gateway interface {
	PendingRequests(ctx context.Context) ([]model.AdminRequestView, error)
	Approve(ctx context.Context, requestID int64) (string, error)
	Reject(ctx context.Context, requestID int64, notes string) (string, error)
}

// PendingRequests holds the admin's pending list. Decisions remove their item
// immediately; a failed decision is corrected by refetching the whole list,
// never by re-inserting the removed item.
type PendingRequests struct {
	api Gateway

	mu       sync.RWMutex
	items    []model.AdminRequestView
	inFlight map[int64]struct{}

	// version advances on every confirmed decision; confirmed maps a request
	// to the version at which it was confirmed.
	version   uint64
	confirmed map[int64]uint64
	// fetchSeq numbers refreshes as they start; applied is the newest one stored.
	fetchSeq uint64
	applied  uint64
}

func NewPendingRequests(api Gateway) *PendingRequests {
	return &PendingRequests{
		api:       api,
		items:     []model.AdminRequestView{},
		inFlight:  map[int64]struct{}{},
		confirmed: map[int64]uint64{},
	}
}

// Refresh replaces the local list with the gateway's. Requests with a decision
// in flight, or confirmed after this fetch started, stay hidden. A fetch that
// finishes after a newer one is discarded.
func (p *PendingRequests) Refresh(ctx context.Context) error {
	p.mu.Lock()
	p.fetchSeq++
	seq, since := p.fetchSeq, p.version
	p.mu.Unlock()

	items, err := p.api.PendingRequests(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq < p.applied {
		return nil
	}
	p.applied = seq

	kept := make([]model.AdminRequestView, 0, len(items))
	for _, it := range items {
		if _, busy := p.inFlight[it.RequestID]; busy {
			continue
		}
		if v, ok := p.confirmed[it.RequestID]; ok && v > since {
			continue
		}
		kept = append(kept, it)
	}
	p.items = kept

	// Decisions confirmed before this fetch started are reflected server-side.
	for id, v := range p.confirmed {
		if v <= since {
			delete(p.confirmed, id)
		}
	}
	return nil
}

// Approve removes the request locally, then asks the gateway to approve it.
func (p *PendingRequests) Approve(ctx context.Context, requestID int64) (Decision, error) {
	return p.decide(ctx, requestID, func(ctx context.Context) (string, error) {
		return p.api.Approve(ctx, requestID)
	})
}

// Reject removes the request locally, then asks the gateway to reject it.
func (p *PendingRequests) Reject(ctx context.Context, requestID int64, notes string) (Decision, error) {
	return p.decide(ctx, requestID, func(ctx context.Context) (string, error) {
		return p.api.Reject(ctx, requestID, notes)
	})
}

func (p *PendingRequests) decide(ctx context.Context, requestID int64, call func(context.Context) (string, error)) (Decision, error) {
	d := Decision{RequestID: requestID, Outcome: Optimistic}

	p.mu.Lock()
	p.inFlight[requestID] = struct{}{}
	p.remove(requestID)
	p.mu.Unlock()

	msg, err := call(ctx)

	p.mu.Lock()
	delete(p.inFlight, requestID)
	if err == nil {
		p.version++
		p.confirmed[requestID] = p.version
	}
	p.mu.Unlock()

	if err == nil {
		d.Outcome = Confirmed
		d.Message = msg
		return d, nil
	}

	d.Outcome = Reverted
	log.Warn().
		Err(err).
		Int64("request_id", requestID).
		Msg("Decision failed, resynchronizing pending requests")

	if rerr := p.Refresh(ctx); rerr != nil {
		log.Error().Err(rerr).Msg("Failed to refetch pending requests")
		return d, errors.Join(err, rerr)
	}
	return d, err
}

// remove drops requestID from items. Callers hold mu.
func (p *PendingRequests) remove(requestID int64) {
	for i, it := range p.items {
		if it.RequestID == requestID {
			p.items = append(p.items[:i:i], p.items[i+1:]...)
			return
		}
	}
}

// Items returns a copy of the current list.
func (p *PendingRequests) Items() []model.AdminRequestView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]model.AdminRequestView(nil), p.items...)
}

// PendingCount is the number of PENDING requests as of the last fetch, minus
// optimistic removals.
func (p *PendingRequests) PendingCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := 0
	for _, it := range p.items {
		if it.Status == model.StatusPending {
			n++
		}
	}
	return n
}
