package schedule

import (
	"fmt"
	"sort"
	"strings"
)

// Entry describe una dosis esperada del calendario oficial de vacunación.
// Las edades se expresan en días desde el nacimiento.
type Entry struct {
	VaccineID   string
	VaccineName string
	DoseNumber  int

	TargetAgeDays int
	MinAgeDays    *int // nil => se usa TargetAgeDays como edad mínima
	MaxAgeDays    *int // nil => sin límite superior

	// Días mínimos desde la dosis anterior de la misma vacuna.
	MinIntervalDays *int

	IsBooster bool
}

// Key identifica una dosis dentro del calendario.
type Key struct {
	VaccineID  string
	DoseNumber int
}

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.VaccineID, k.DoseNumber)
}

func (e Entry) Key() Key {
	return Key{VaccineID: e.VaccineID, DoseNumber: e.DoseNumber}
}

// EarliestAgeDays es la edad desde la cual la dosis entra en su ventana de aplicación.
func (e Entry) EarliestAgeDays() int {
	if e.MinAgeDays != nil {
		return *e.MinAgeDays
	}
	return e.TargetAgeDays
}

// Catalog es una versión inmutable del calendario.
type Catalog struct {
	Version string
	Entries []Entry
}

// Lookup busca una dosis por vacuna y número.
func (c Catalog) Lookup(vaccineID string, doseNumber int) (Entry, bool) {
	for _, e := range c.Entries {
		if e.VaccineID == vaccineID && e.DoseNumber == doseNumber {
			return e, true
		}
	}
	return Entry{}, false
}

// Issue reporta una entrada del calendario que no se puede evaluar.
type Issue struct {
	VaccineID  string
	DoseNumber int
	Reason     string
}

// Validate separa las entradas evaluables de las inconsistentes.
// Las inconsistentes nunca se corrigen: se descartan y se reportan.
func (c Catalog) Validate() ([]Entry, []Issue) {
	valid := make([]Entry, 0, len(c.Entries))
	var issues []Issue
	seen := map[Key]struct{}{}

	for _, e := range c.Entries {
		if reason := entryProblem(e); reason != "" {
			issues = append(issues, Issue{VaccineID: e.VaccineID, DoseNumber: e.DoseNumber, Reason: reason})
			continue
		}
		if _, dup := seen[e.Key()]; dup {
			issues = append(issues, Issue{VaccineID: e.VaccineID, DoseNumber: e.DoseNumber, Reason: "duplicate dose in catalog"})
			continue
		}
		seen[e.Key()] = struct{}{}
		valid = append(valid, e)
	}

	return valid, issues
}

func entryProblem(e Entry) string {
	switch {
	case strings.TrimSpace(e.VaccineID) == "":
		return "vaccine id required"
	case e.DoseNumber < 1:
		return "dose number must be >= 1"
	case e.TargetAgeDays < 0:
		return "target age must be >= 0"
	case e.MinAgeDays != nil && *e.MinAgeDays < 0:
		return "min age must be >= 0"
	case e.MinAgeDays != nil && *e.MinAgeDays > e.TargetAgeDays:
		return "min age greater than target age"
	case e.MaxAgeDays != nil && *e.MaxAgeDays < e.TargetAgeDays:
		return "max age lower than target age"
	case e.MinIntervalDays != nil && *e.MinIntervalDays < 0:
		return "min interval must be >= 0"
	}
	return ""
}

// Series agrupa las dosis de una misma vacuna ordenadas por número de dosis.
type Series struct {
	VaccineID string
	Entries   []Entry
}

// GroupSeries agrupa entradas por vacuna, respetando el orden de primera aparición.
func GroupSeries(entries []Entry) []Series {
	idx := map[string]int{}
	out := make([]Series, 0)

	for _, e := range entries {
		i, ok := idx[e.VaccineID]
		if !ok {
			i = len(out)
			idx[e.VaccineID] = i
			out = append(out, Series{VaccineID: e.VaccineID})
		}
		out[i].Entries = append(out[i].Entries, e)
	}

	for i := range out {
		sort.SliceStable(out[i].Entries, func(a, b int) bool {
			return out[i].Entries[a].DoseNumber < out[i].Entries[b].DoseNumber
		})
	}
	return out
}

// Days devuelve un puntero a n; útil al declarar calendarios en código y tests.
func Days(n int) *int {
	return &n
}
