package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"child-immunization-history/internal/domain/doses"
)

type doseRepo struct {
	mu      sync.RWMutex
	byChild map[string][]doses.Dose
}

func NewDoseRepo() doses.Repository {
	return &doseRepo{
		byChild: make(map[string][]doses.Dose),
	}
}

func (r *doseRepo) Create(ctx context.Context, d doses.Dose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		return errors.New("dose id required")
	}
	for _, cur := range r.byChild[d.ChildID] {
		if cur.VaccineID == d.VaccineID && cur.DoseNumber == d.DoseNumber {
			return doses.ErrConflict
		}
	}
	r.byChild[d.ChildID] = append(r.byChild[d.ChildID], d)
	return nil
}

func (r *doseRepo) ListByChild(ctx context.Context, childID string) ([]doses.Dose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doses.Dose, len(r.byChild[childID]))
	copy(out, r.byChild[childID])

	// Orden por fecha de aplicación (más antigua primero)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ApplicationDate.Before(out[j].ApplicationDate)
	})
	return out, nil
}
