package immunization

import (
	"testing"

	"child-immunization-history/internal/domain/schedule"
)

func TestCompleteness_FullWhenApplicableDoseApplied(t *testing.T) {
	birth := date(t, "2024-01-01")
	catalog := schedule.Catalog{Entries: []schedule.Entry{
		{VaccineID: "V1", DoseNumber: 1, TargetAgeDays: 0, MaxAgeDays: schedule.Days(30)},
	}}
	history := []AdministeredDose{{VaccineID: "V1", DoseNumber: 1, ApplicationDate: date(t, "2024-01-02")}}

	if got := Completeness(history, catalog, birth, date(t, "2024-03-01")); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
}

func TestCompleteness_RoundsToTwoDecimals(t *testing.T) {
	birth := date(t, "2024-01-01")
	catalog := schedule.Catalog{Entries: []schedule.Entry{
		{VaccineID: "A", DoseNumber: 1, TargetAgeDays: 0},
		{VaccineID: "B", DoseNumber: 1, TargetAgeDays: 0},
		{VaccineID: "C", DoseNumber: 1, TargetAgeDays: 0},
		{VaccineID: "D", DoseNumber: 1, TargetAgeDays: 900}, // todavía no aplicable
	}}
	history := []AdministeredDose{{VaccineID: "A", DoseNumber: 1, ApplicationDate: birth}}

	if got := Completeness(history, catalog, birth, date(t, "2024-06-01")); got != 33.33 {
		t.Fatalf("expected 33.33, got %v", got)
	}
}

func TestCompleteness_NothingApplicableIsComplete(t *testing.T) {
	birth := date(t, "2024-01-01")
	catalog := schedule.Catalog{Entries: []schedule.Entry{
		{VaccineID: "V", DoseNumber: 1, TargetAgeDays: 60},
	}}

	if got := Completeness(nil, catalog, birth, birth); got != 100 {
		t.Fatalf("expected 100 with no applicable doses, got %v", got)
	}
	if got := Completeness(nil, schedule.Catalog{}, birth, birth); got != 100 {
		t.Fatalf("expected 100 with empty catalog, got %v", got)
	}
	if got := Completeness(nil, catalog, date(t, "2030-01-01"), birth); got != 100 {
		t.Fatalf("expected 100 for future birth date, got %v", got)
	}
}

func TestCompleteness_IgnoresInvalidRecords(t *testing.T) {
	birth := date(t, "2024-01-01")
	catalog := schedule.Catalog{Entries: []schedule.Entry{
		{VaccineID: "V", DoseNumber: 1, TargetAgeDays: 0},
	}}
	history := []AdministeredDose{{VaccineID: "V", DoseNumber: 1, ApplicationDate: date(t, "2023-12-01")}}

	if got := Completeness(history, catalog, birth, date(t, "2024-02-01")); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestCompleteness_MonotonicAndBounded(t *testing.T) {
	catalog, err := schedule.Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	birth := date(t, "2022-05-10")
	today := date(t, "2024-05-10")

	var history []AdministeredDose
	prev := Completeness(history, catalog, birth, today)
	if prev < 0 || prev > 100 {
		t.Fatalf("out of bounds: %v", prev)
	}

	for _, e := range catalog.Entries {
		if AddDays(birth, e.EarliestAgeDays()).After(today) {
			continue
		}
		history = append(history, AdministeredDose{
			VaccineID:       e.VaccineID,
			DoseNumber:      e.DoseNumber,
			ApplicationDate: AddDays(birth, e.EarliestAgeDays()),
		})

		got := Completeness(history, catalog, birth, today)
		if got < prev {
			t.Fatalf("completeness decreased after recording %s#%d: %v -> %v", e.VaccineID, e.DoseNumber, prev, got)
		}
		if got < 0 || got > 100 {
			t.Fatalf("out of bounds: %v", got)
		}
		prev = got
	}

	if prev != 100 {
		t.Fatalf("expected 100 after recording every applicable dose, got %v", prev)
	}
}

func TestDates(t *testing.T) {
	a := date(t, "2024-02-28")
	if got := AddDays(a, 2); !got.Equal(date(t, "2024-03-01")) {
		t.Fatalf("leap year: got %s", got)
	}
	if got := DaysBetween(date(t, "2024-01-01"), date(t, "2024-03-01")); got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}
	if got := DaysBetween(date(t, "2024-03-01"), date(t, "2024-01-01")); got != -60 {
		t.Fatalf("expected -60, got %d", got)
	}
}
