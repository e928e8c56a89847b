package schedule

import (
	"strings"
	"testing"
)

func TestDefaultCatalog_IsConsistent(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	if c.Version == "" {
		t.Fatalf("expected version")
	}

	valid, issues := c.Validate()
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
	if len(valid) != len(c.Entries) {
		t.Fatalf("expected all entries valid, got %d/%d", len(valid), len(c.Entries))
	}

	penta, ok := c.Lookup("PENTA", 3)
	if !ok {
		t.Fatalf("expected PENTA#3 in default catalog")
	}
	if penta.TargetAgeDays != 180 {
		t.Fatalf("expected PENTA#3 at 180 days, got %d", penta.TargetAgeDays)
	}
}

func TestParse_OptionalFields(t *testing.T) {
	raw := []byte(`
version: v1
entries:
  - vaccine_id: ROTA
    vaccine_name: Rotavirus
    dose: 1
    target_age_days: 60
    min_age_days: 42
    max_age_days: 104
  - vaccine_id: ROTA
    dose: 2
    target_age_days: 120
    min_interval_days: 28
    booster: true
`)
	c, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(c.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(c.Entries))
	}

	first := c.Entries[0]
	if first.MinAgeDays == nil || *first.MinAgeDays != 42 {
		t.Fatalf("expected min 42, got %v", first.MinAgeDays)
	}
	if first.MaxAgeDays == nil || *first.MaxAgeDays != 104 {
		t.Fatalf("expected max 104, got %v", first.MaxAgeDays)
	}
	if first.MinIntervalDays != nil {
		t.Fatalf("expected nil interval on first dose")
	}

	second := c.Entries[1]
	if second.MaxAgeDays != nil {
		t.Fatalf("expected unbounded max on second dose")
	}
	if second.MinIntervalDays == nil || *second.MinIntervalDays != 28 {
		t.Fatalf("expected interval 28, got %v", second.MinIntervalDays)
	}
	if !second.IsBooster {
		t.Fatalf("expected booster flag")
	}
}

func TestParse_RejectsEmptyAndBrokenYAML(t *testing.T) {
	if _, err := Parse([]byte("version: v1\nentries: []\n")); err != ErrEmptyCatalog {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
	if _, err := Parse([]byte("entries: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestMarshal_RoundTripKeepsVersion(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default: %v", err)
	}
	raw, err := Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), c.Version) {
		t.Fatalf("expected version in yaml output")
	}
	back, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if len(back.Entries) != len(c.Entries) {
		t.Fatalf("expected %d entries, got %d", len(c.Entries), len(back.Entries))
	}
}

func TestValidate_ReportsInconsistentEntries(t *testing.T) {
	c := Catalog{Entries: []Entry{
		{VaccineID: "OK", DoseNumber: 1, TargetAgeDays: 60},
		{VaccineID: "", DoseNumber: 1, TargetAgeDays: 60},
		{VaccineID: "ZERO", DoseNumber: 0, TargetAgeDays: 60},
		{VaccineID: "NEG", DoseNumber: 1, TargetAgeDays: -1},
		{VaccineID: "MIN", DoseNumber: 1, TargetAgeDays: 60, MinAgeDays: Days(90)},
		{VaccineID: "MAX", DoseNumber: 1, TargetAgeDays: 60, MaxAgeDays: Days(30)},
		{VaccineID: "INT", DoseNumber: 1, TargetAgeDays: 60, MinIntervalDays: Days(-5)},
		{VaccineID: "OK", DoseNumber: 1, TargetAgeDays: 90},
	}}

	valid, issues := c.Validate()
	if len(valid) != 1 || valid[0].TargetAgeDays != 60 {
		t.Fatalf("expected only first OK entry valid, got %+v", valid)
	}
	if len(issues) != 7 {
		t.Fatalf("expected 7 issues, got %d: %+v", len(issues), issues)
	}
	if issues[6].Reason != "duplicate dose in catalog" {
		t.Fatalf("expected duplicate reported last, got %q", issues[6].Reason)
	}
}

func TestGroupSeries_OrdersByDoseAndKeepsFirstAppearance(t *testing.T) {
	entries := []Entry{
		{VaccineID: "B", DoseNumber: 2},
		{VaccineID: "A", DoseNumber: 1},
		{VaccineID: "B", DoseNumber: 1},
	}

	series := GroupSeries(entries)
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	if series[0].VaccineID != "B" || series[1].VaccineID != "A" {
		t.Fatalf("unexpected series order: %s, %s", series[0].VaccineID, series[1].VaccineID)
	}
	if series[0].Entries[0].DoseNumber != 1 || series[0].Entries[1].DoseNumber != 2 {
		t.Fatalf("expected B doses sorted")
	}
}
