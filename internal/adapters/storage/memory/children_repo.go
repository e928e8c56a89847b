package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"child-immunization-history/internal/domain/children"
)

type childRepo struct {
	mu   sync.RWMutex
	byID map[string]children.Child
}

func NewChildRepo() children.Repository {
	return &childRepo{
		byID: make(map[string]children.Child),
	}
}

func (r *childRepo) Create(ctx context.Context, c children.Child) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("child id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("child already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *childRepo) GetByID(ctx context.Context, id string) (children.Child, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return children.Child{}, children.ErrNotFound
	}
	return c, nil
}

func (r *childRepo) ListByGuardian(ctx context.Context, guardianUserID string) ([]children.Child, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]children.Child, 0)
	for _, c := range r.byID {
		if c.GuardianUserID == guardianUserID {
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *childRepo) ListIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
