package immunization

import (
	"fmt"
	"time"

	"child-immunization-history/internal/domain/schedule"
)

// Evaluate clasifica cada dosis del calendario para un niño nacido en birthDate a la fecha today.
// Es una función pura: los datos inválidos se excluyen y se reportan como diagnósticos.
func Evaluate(birthDate, today time.Time, catalog schedule.Catalog, history []AdministeredDose) Evaluation {
	birth := DateOf(birthDate)
	today = DateOf(today)

	if birth.After(today) {
		return Evaluation{
			Obligations: []Obligation{},
			Diagnostics: []Diagnostic{{
				Kind:   DiagBirthDateInFuture,
				Detail: fmt.Sprintf("birth date %s is after %s", birth.Format(time.DateOnly), today.Format(time.DateOnly)),
			}},
		}
	}

	entries, issues := catalog.Validate()
	diags := catalogDiagnostics(issues)

	applied, histDiags := indexHistory(birth, today, entries, history)
	diags = append(diags, histDiags...)

	obs := make([]Obligation, 0, len(entries))
	for _, series := range schedule.GroupSeries(entries) {
		obs = append(obs, evaluateSeries(birth, today, series, applied)...)
	}

	return Evaluation{Obligations: obs, Diagnostics: diags}
}

func evaluateSeries(birth, today time.Time, series schedule.Series, applied map[schedule.Key]time.Time) []Obligation {
	out := make([]Obligation, 0, len(series.Entries))

	firstUnmet := 0
	var prevApplied *time.Time

	for _, e := range series.Entries {
		o := Obligation{
			VaccineID:    e.VaccineID,
			VaccineName:  e.VaccineName,
			DoseNumber:   e.DoseNumber,
			IsBooster:    e.IsBooster,
			TargetDate:   AddDays(birth, e.TargetAgeDays),
			EarliestDate: AddDays(birth, e.EarliestAgeDays()),
		}
		if e.MaxAgeDays != nil {
			maxDate := AddDays(birth, *e.MaxAgeDays)
			o.MaxDate = &maxDate
		}

		if at, ok := applied[e.Key()]; ok {
			// Aplicada fuera de ventana sigue contando como cumplida.
			o.State = StateSatisfied
			o.AppliedOn = &at
			o.DaysFromTarget = DaysBetween(o.TargetDate, at)
			out = append(out, o)
			prevApplied = &at
			continue
		}

		o.DaysFromTarget = DaysBetween(o.TargetDate, today)

		if firstUnmet != 0 {
			o.State = StateScheduled
			o.Blocked = true
			o.BlockedBy = firstUnmet
			out = append(out, o)
			prevApplied = nil
			continue
		}

		if prevApplied != nil && e.MinIntervalDays != nil {
			if byInterval := AddDays(*prevApplied, *e.MinIntervalDays); byInterval.After(o.EarliestDate) {
				o.EarliestDate = byInterval
			}
		}

		o.State = classify(today, o.EarliestDate, o.TargetDate, o.MaxDate)
		out = append(out, o)

		firstUnmet = e.DoseNumber
		prevApplied = nil
	}

	return out
}

func classify(today, effectiveMin, target time.Time, maxDate *time.Time) State {
	switch {
	case today.Before(effectiveMin):
		return StateScheduled
	case maxDate != nil && today.After(*maxDate):
		return StateOverdue
	case !today.Before(target):
		if DaysBetween(target, today) > OverdueGraceDays {
			return StateOverdue
		}
		return StateDueSoon
	case DaysBetween(today, target) <= DueSoonWindowDays:
		return StateDueSoon
	default:
		return StateScheduled
	}
}

func catalogDiagnostics(issues []schedule.Issue) []Diagnostic {
	out := make([]Diagnostic, 0, len(issues))
	for _, is := range issues {
		out = append(out, Diagnostic{
			Kind:       DiagCatalogInconsistency,
			VaccineID:  is.VaccineID,
			DoseNumber: is.DoseNumber,
			Detail:     is.Reason,
		})
	}
	return out
}

// indexHistory se queda con la aplicación más temprana de cada dosis válida del calendario.
func indexHistory(birth, today time.Time, entries []schedule.Entry, history []AdministeredDose) (map[schedule.Key]time.Time, []Diagnostic) {
	known := make(map[schedule.Key]struct{}, len(entries))
	for _, e := range entries {
		known[e.Key()] = struct{}{}
	}

	applied := make(map[schedule.Key]time.Time, len(history))
	var diags []Diagnostic

	for _, d := range history {
		key := schedule.Key{VaccineID: d.VaccineID, DoseNumber: d.DoseNumber}
		at := DateOf(d.ApplicationDate)

		if at.Before(birth) || at.After(today) {
			diags = append(diags, Diagnostic{
				Kind:       DiagInvalidDose,
				VaccineID:  d.VaccineID,
				DoseNumber: d.DoseNumber,
				Detail:     fmt.Sprintf("application date %s outside [birth, today]", at.Format(time.DateOnly)),
			})
			continue
		}
		if _, ok := known[key]; !ok {
			diags = append(diags, Diagnostic{
				Kind:       DiagUnmatchedDose,
				VaccineID:  d.VaccineID,
				DoseNumber: d.DoseNumber,
				Detail:     "dose not present in catalog",
			})
			continue
		}

		prev, seen := applied[key]
		if !seen {
			applied[key] = at
			continue
		}

		ignored := at
		if at.Before(prev) {
			applied[key] = at
			ignored = prev
		}
		diags = append(diags, Diagnostic{
			Kind:       DiagDuplicateDose,
			VaccineID:  d.VaccineID,
			DoseNumber: d.DoseNumber,
			Detail:     fmt.Sprintf("duplicate record on %s ignored", ignored.Format(time.DateOnly)),
		})
	}

	return applied, diags
}
