package schedule

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Active devuelve el calendario vigente junto con las entradas descartadas por inconsistentes.
func (s *Service) Active(ctx context.Context) (Catalog, []Issue, error) {
	c, err := s.repo.LoadCatalog(ctx)
	if err != nil {
		return Catalog{}, nil, fmt.Errorf("load catalog: %w", err)
	}
	_, issues := c.Validate()
	return c, issues, nil
}

// Catalog devuelve el calendario vigente sin validar.
func (s *Service) Catalog(ctx context.Context) (Catalog, error) {
	return s.repo.LoadCatalog(ctx)
}
