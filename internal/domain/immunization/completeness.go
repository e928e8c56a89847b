package immunization

import (
	"math"
	"time"

	"child-immunization-history/internal/domain/schedule"
)

// Completeness devuelve el porcentaje (0-100, dos decimales) de dosis aplicables ya aplicadas.
// Una dosis es aplicable cuando el niño alcanzó su edad mínima. Sin dosis aplicables el esquema está completo.
func Completeness(history []AdministeredDose, catalog schedule.Catalog, birthDate, today time.Time) float64 {
	birth := DateOf(birthDate)
	today = DateOf(today)
	if birth.After(today) {
		return 100
	}

	entries, _ := catalog.Validate()
	applied, _ := indexHistory(birth, today, entries, history)

	applicable, satisfied := 0, 0
	for _, e := range entries {
		if AddDays(birth, e.EarliestAgeDays()).After(today) {
			continue
		}
		applicable++
		if _, ok := applied[e.Key()]; ok {
			satisfied++
		}
	}

	if applicable == 0 {
		return 100
	}

	pct := math.Round(100*float64(satisfied)/float64(applicable)*100) / 100
	return math.Max(0, math.Min(100, pct))
}
