package lead

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier pushes a newly submitted lead to the operator. Implemented by the
// notify package; nil disables notification.
type Notifier interface {
	NotifyLead(ctx context.Context, l Lead) error
}

// Ledger applies triage semantics over a Store. A single mutex serializes
// the load-modify-save cycle; the store itself only sees full rewrites.
type Ledger struct {
	mu       sync.Mutex
	store    Store
	notifier Notifier
}

func NewLedger(store Store, notifier Notifier) *Ledger {
	return &Ledger{store: store, notifier: notifier}
}

// Submit validates, persists and then announces a new lead. Persistence
// comes first: when the operator notification fails the lead is already in
// the ledger, and the returned error reports the submission as failed
// anyway. Operators see such leads on their next ledger review.
func (lg *Ledger) Submit(ctx context.Context, l Lead) (Lead, error) {
	l.Phone = FormatPhone(l.Phone)
	if err := ValidatePhone(l.Phone); err != nil {
		return Lead{}, err
	}
	l.Region = strings.TrimSpace(l.Region)
	if l.Region == "" {
		return Lead{}, ErrEmptyRegion
	}
	l.ID = uuid.NewString()
	l.Message = strings.TrimSpace(l.Message)
	l.Status = StatusUnconfirmed
	l.CreatedAt = time.Now().UTC()

	lg.mu.Lock()
	leads, err := lg.store.Load(ctx)
	if err == nil {
		leads = append(leads, l)
		err = lg.store.Save(ctx, leads)
	}
	lg.mu.Unlock()
	if err != nil {
		return Lead{}, err
	}
	log.Printf("lead: recorded %s (%s)", l.ID, l.Region)

	if lg.notifier != nil {
		if err := lg.notifier.NotifyLead(ctx, l); err != nil {
			return l, fmt.Errorf("lead: notify operator: %w", err)
		}
	}
	return l, nil
}

// List returns leads newest first. Deleted leads are skipped unless asked for.
func (lg *Ledger) List(ctx context.Context, includeDeleted bool) ([]Lead, error) {
	lg.mu.Lock()
	leads, err := lg.store.Load(ctx)
	lg.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]Lead, 0, len(leads))
	for i := len(leads) - 1; i >= 0; i-- {
		if !includeDeleted && leads[i].Status == StatusDeleted {
			continue
		}
		out = append(out, leads[i])
	}
	return out, nil
}

// UpdateStatus moves a lead to a new triage state.
func (lg *Ledger) UpdateStatus(ctx context.Context, id string, status Status) (Lead, error) {
	if !ValidStatus(status) {
		return Lead{}, fmt.Errorf("lead: unknown status %q", status)
	}
	return lg.mutate(ctx, id, func(l *Lead) { l.Status = status })
}

// SoftDelete hides a lead from operator views without dropping the record.
func (lg *Ledger) SoftDelete(ctx context.Context, id string) (Lead, error) {
	return lg.mutate(ctx, id, func(l *Lead) { l.Status = StatusDeleted })
}

func (lg *Ledger) mutate(ctx context.Context, id string, fn func(*Lead)) (Lead, error) {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	leads, err := lg.store.Load(ctx)
	if err != nil {
		return Lead{}, err
	}
	for i := range leads {
		if leads[i].ID != id {
			continue
		}
		fn(&leads[i])
		if err := lg.store.Save(ctx, leads); err != nil {
			return Lead{}, err
		}
		return leads[i], nil
	}
	return Lead{}, ErrNotFound
}
