package doses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"child-immunization-history/internal/domain/children"
	"child-immunization-history/internal/domain/immunization"
	"child-immunization-history/internal/domain/schedule"

	"github.com/google/uuid"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo    Repository
	catalog schedule.Repository
	now     func() time.Time
	loc     *time.Location
}

func NewService(repo Repository, catalog schedule.Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:    repo,
		catalog: catalog,
		now:     time.Now,
		loc:     loc,
	}
}

type RecordInput struct {
	VaccineID       string
	DoseNumber      int
	ApplicationDate time.Time
	HealthCenter    string
	Lot             string
}

// Record registra una aplicación. Rechaza fechas fuera de [nacimiento, hoy],
// dosis que no están en el calendario vigente y registros repetidos.
func (s *Service) Record(ctx context.Context, child children.Child, recordedBy string, in RecordInput) (Dose, error) {
	vaccineID := strings.TrimSpace(in.VaccineID)
	if vaccineID == "" || in.DoseNumber < 1 {
		return Dose{}, fmt.Errorf("%w: vaccine_id and dose_number required", ErrInvalidInput)
	}
	if in.ApplicationDate.IsZero() {
		return Dose{}, fmt.Errorf("%w: application_date required", ErrInvalidInput)
	}

	now := s.now()
	at := immunization.DateOf(in.ApplicationDate)
	if at.Before(child.BirthDate) {
		return Dose{}, fmt.Errorf("%w: application_date before birth_date", ErrInvalidInput)
	}
	if at.After(immunization.Today(now, s.loc)) {
		return Dose{}, fmt.Errorf("%w: application_date in the future", ErrInvalidInput)
	}

	catalog, err := s.catalog.LoadCatalog(ctx)
	if err != nil {
		return Dose{}, fmt.Errorf("load catalog: %w", err)
	}
	if _, ok := catalog.Lookup(vaccineID, in.DoseNumber); !ok {
		return Dose{}, fmt.Errorf("%w: %s dose %d not in schedule", ErrInvalidInput, vaccineID, in.DoseNumber)
	}

	existing, err := s.repo.ListByChild(ctx, child.ID)
	if err != nil {
		return Dose{}, err
	}
	for _, d := range existing {
		if d.VaccineID == vaccineID && d.DoseNumber == in.DoseNumber {
			return Dose{}, ErrConflict
		}
	}

	d := Dose{
		ID:              uuid.NewString(),
		ChildID:         child.ID,
		VaccineID:       vaccineID,
		DoseNumber:      in.DoseNumber,
		ApplicationDate: at,
		HealthCenter:    strings.TrimSpace(in.HealthCenter),
		Lot:             strings.TrimSpace(in.Lot),
		RecordedBy:      recordedBy,
		CreatedAt:       now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return Dose{}, err
	}
	return d, nil
}

func (s *Service) ListByChild(ctx context.Context, childID string) ([]Dose, error) {
	return s.repo.ListByChild(ctx, childID)
}
