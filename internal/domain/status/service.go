package status

import (
	"context"
	"fmt"
	"time"

	"child-immunization-history/internal/domain/children"
	"child-immunization-history/internal/domain/doses"
	"child-immunization-history/internal/domain/immunization"
	"child-immunization-history/internal/domain/schedule"
)

// ChildReader es lo que status necesita del registro de niños.
type ChildReader interface {
	GetByID(ctx context.Context, id string) (children.Child, error)
}

// Report combina la evaluación del esquema con el porcentaje de cumplimiento.
type Report struct {
	ChildID        string
	BirthDate      time.Time
	EvaluatedOn    time.Time
	CatalogVersion string

	Obligations  []immunization.Obligation
	Diagnostics  []immunization.Diagnostic
	Completeness float64
}

// Certificate es la entrada del generador de certificados.
type Certificate struct {
	ChildID      string
	ChildName    string
	BirthDate    time.Time
	GeneratedOn  time.Time
	Completeness float64

	Satisfied []immunization.Obligation
	Overdue   []immunization.Obligation
}

type Service struct {
	children ChildReader
	history  doses.Repository
	catalog  schedule.Repository
	now      func() time.Time
	loc      *time.Location
}

func NewService(children ChildReader, history doses.Repository, catalog schedule.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		children: children,
		history:  history,
		catalog:  catalog,
		now:      time.Now,
		loc:      loc,
	}
}

// Report evalúa el esquema del niño a la fecha de hoy.
func (s *Service) Report(ctx context.Context, childID string) (Report, error) {
	c, err := s.children.GetByID(ctx, childID)
	if err != nil {
		return Report{}, err
	}
	return s.reportFor(ctx, c)
}

func (s *Service) reportFor(ctx context.Context, c children.Child) (Report, error) {
	catalog, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load catalog: %w", err)
	}
	items, err := s.history.ListByChild(ctx, c.ID)
	if err != nil {
		return Report{}, fmt.Errorf("load history: %w", err)
	}

	today := immunization.Today(s.now(), s.loc)
	history := doses.History(items)
	ev := immunization.Evaluate(c.BirthDate, today, catalog, history)

	return Report{
		ChildID:        c.ID,
		BirthDate:      c.BirthDate,
		EvaluatedOn:    today,
		CatalogVersion: catalog.Version,
		Obligations:    ev.Obligations,
		Diagnostics:    ev.Diagnostics,
		Completeness:   immunization.Completeness(history, catalog, c.BirthDate, today),
	}, nil
}

// Certificate arma el resumen aplicadas/vencidas para el certificado de vacunación.
func (s *Service) Certificate(ctx context.Context, childID string) (Certificate, error) {
	c, err := s.children.GetByID(ctx, childID)
	if err != nil {
		return Certificate{}, err
	}
	rep, err := s.reportFor(ctx, c)
	if err != nil {
		return Certificate{}, err
	}

	cert := Certificate{
		ChildID:      c.ID,
		ChildName:    c.FullName(),
		BirthDate:    c.BirthDate,
		GeneratedOn:  rep.EvaluatedOn,
		Completeness: rep.Completeness,
		Satisfied:    []immunization.Obligation{},
		Overdue:      []immunization.Obligation{},
	}
	for _, o := range immunization.SortByUrgency(rep.Obligations) {
		switch o.State {
		case immunization.StateSatisfied:
			cert.Satisfied = append(cert.Satisfied, o)
		case immunization.StateOverdue:
			cert.Overdue = append(cert.Overdue, o)
		}
	}
	return cert, nil
}
