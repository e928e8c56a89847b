package memory

import (
	"context"
	"sync"

	"child-immunization-history/internal/domain/schedule"
)

// CatalogRepo guarda el calendario vigente en memoria (cargado desde YAML al arrancar).
type CatalogRepo struct {
	mu      sync.RWMutex
	catalog schedule.Catalog
}

func NewCatalogRepo(c schedule.Catalog) *CatalogRepo {
	return &CatalogRepo{catalog: c}
}

func (r *CatalogRepo) LoadCatalog(ctx context.Context) (schedule.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Copia para que nadie mute el calendario compartido.
	out := schedule.Catalog{Version: r.catalog.Version, Entries: make([]schedule.Entry, len(r.catalog.Entries))}
	copy(out.Entries, r.catalog.Entries)
	return out, nil
}

func (r *CatalogRepo) ReplaceCatalog(ctx context.Context, c schedule.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalog = c
	return nil
}
