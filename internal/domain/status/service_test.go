package status

import (
	"context"
	"testing"
	"time"

	"child-immunization-history/internal/domain/children"
	"child-immunization-history/internal/domain/doses"
	"child-immunization-history/internal/domain/immunization"
	"child-immunization-history/internal/domain/schedule"
)

type fakeChildren map[string]children.Child

func (f fakeChildren) GetByID(ctx context.Context, id string) (children.Child, error) {
	c, ok := f[id]
	if !ok {
		return children.Child{}, children.ErrNotFound
	}
	return c, nil
}

type fakeHistory []doses.Dose

func (f fakeHistory) Create(ctx context.Context, d doses.Dose) error { return nil }

func (f fakeHistory) ListByChild(ctx context.Context, childID string) ([]doses.Dose, error) {
	out := make([]doses.Dose, 0)
	for _, d := range f {
		if d.ChildID == childID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeCatalog schedule.Catalog

func (f fakeCatalog) LoadCatalog(ctx context.Context) (schedule.Catalog, error) {
	return schedule.Catalog(f), nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	birth := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	kids := fakeChildren{"c1": {ID: "c1", FirstName: "Ana", LastName: "Benítez", BirthDate: birth}}
	history := fakeHistory{
		{ChildID: "c1", VaccineID: "BCG", DoseNumber: 1, ApplicationDate: birth},
		{ChildID: "c1", VaccineID: "BCG", DoseNumber: 1, ApplicationDate: birth.AddDate(0, 0, 3)},
	}
	catalog := fakeCatalog{Version: "test-1", Entries: []schedule.Entry{
		{VaccineID: "BCG", DoseNumber: 1, TargetAgeDays: 0},
		{VaccineID: "HEPB", DoseNumber: 1, TargetAgeDays: 0, MaxAgeDays: schedule.Days(30)},
		{VaccineID: "SPR", DoseNumber: 1, TargetAgeDays: 365},
	}}

	svc := NewService(kids, history, catalog, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestReport(t *testing.T) {
	svc := newTestService(t)

	rep, err := svc.Report(context.Background(), "c1")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if rep.CatalogVersion != "test-1" {
		t.Fatalf("expected catalog version, got %q", rep.CatalogVersion)
	}
	if !rep.EvaluatedOn.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected evaluation date %s", rep.EvaluatedOn)
	}
	if len(rep.Obligations) != 3 {
		t.Fatalf("expected 3 obligations, got %d", len(rep.Obligations))
	}
	if rep.Completeness != 50 {
		t.Fatalf("expected 50%% (BCG of BCG+HEPB), got %v", rep.Completeness)
	}
	if len(rep.Diagnostics) != 1 || rep.Diagnostics[0].Kind != immunization.DiagDuplicateDose {
		t.Fatalf("expected one duplicate diagnostic, got %+v", rep.Diagnostics)
	}
}

func TestReport_UnknownChild(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Report(context.Background(), "nope"); err != children.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCertificate(t *testing.T) {
	svc := newTestService(t)

	cert, err := svc.Certificate(context.Background(), "c1")
	if err != nil {
		t.Fatalf("certificate: %v", err)
	}
	if cert.ChildName != "Ana Benítez" {
		t.Fatalf("unexpected name %q", cert.ChildName)
	}
	if len(cert.Satisfied) != 1 || cert.Satisfied[0].VaccineID != "BCG" {
		t.Fatalf("expected BCG satisfied, got %+v", cert.Satisfied)
	}
	if len(cert.Overdue) != 1 || cert.Overdue[0].VaccineID != "HEPB" {
		t.Fatalf("expected HEPB overdue, got %+v", cert.Overdue)
	}
}
