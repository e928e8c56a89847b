package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"child-immunization-history/internal/domain/notifications"
	"child-immunization-history/internal/domain/schedule"
)

type activeKey struct {
	childID string
	dose    schedule.Key
}

// notificationRepo replica el índice único parcial de Postgres:
// a lo sumo una notificación no APLICADA por (niño, vacuna, dosis).
type notificationRepo struct {
	mu   sync.RWMutex
	byID map[string]notifications.Notification
}

func NewNotificationRepo() notifications.Repository {
	return &notificationRepo{
		byID: make(map[string]notifications.Notification),
	}
}

func (r *notificationRepo) ListByChild(ctx context.Context, childID string) ([]notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]notifications.Notification, 0)
	for _, n := range r.byID {
		if n.ChildID == childID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledDate.Equal(out[j].ScheduledDate) {
			return out[i].ScheduledDate.Before(out[j].ScheduledDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n, ok := r.byID[id]
	if !ok {
		return notifications.Notification{}, notifications.ErrNotFound
	}
	return n, nil
}

func (r *notificationRepo) Upsert(ctx context.Context, items []notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Se valida sobre una copia para que el lote sea todo o nada.
	next := make(map[string]notifications.Notification, len(r.byID)+len(items))
	for id, n := range r.byID {
		next[id] = n
	}

	for _, n := range items {
		if n.ID == "" {
			return errors.New("notification id required")
		}
		next[n.ID] = n
		if !n.Active() {
			continue
		}
		for id, other := range next {
			if id != n.ID && other.Active() && other.ChildID == n.ChildID && other.Key() == n.Key() {
				return notifications.ErrConflict
			}
		}
	}

	r.byID = next
	return nil
}

func (r *notificationRepo) PurgeApplied(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, it := range r.byID {
		if it.State == notifications.StateAplicada && it.AppliedAt != nil && it.AppliedAt.Before(before) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
