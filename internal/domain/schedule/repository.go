package schedule

import "context"

// Repository entrega la versión vigente del calendario.
type Repository interface {
	LoadCatalog(ctx context.Context) (Catalog, error)
}

// Writer reemplaza el calendario vigente (seed desde YAML).
type Writer interface {
	ReplaceCatalog(ctx context.Context, c Catalog) error
}
