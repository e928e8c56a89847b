package immunization

import (
	"sort"
	"time"
)

const (
	// DueSoonWindowDays es la anticipación con la que una dosis pasa a "próxima".
	DueSoonWindowDays = 30
	// OverdueGraceDays es el margen tras la fecha objetivo antes de considerarla vencida.
	OverdueGraceDays = 30
)

// State del cumplimiento de una dosis a una fecha dada.
type State string

const (
	StateSatisfied State = "SATISFIED"
	StateOverdue   State = "OVERDUE"
	StateDueSoon   State = "DUE_SOON"
	StateScheduled State = "SCHEDULED"
)

// AdministeredDose es una aplicación registrada, tal como la consume el evaluador.
type AdministeredDose struct {
	VaccineID       string
	DoseNumber      int
	ApplicationDate time.Time
}

// Obligation es el estado calculado de una dosis del calendario para un niño.
// Se recalcula en cada evaluación y nunca se persiste.
type Obligation struct {
	VaccineID   string
	VaccineName string
	DoseNumber  int
	IsBooster   bool

	State          State
	DaysFromTarget int

	TargetDate   time.Time
	EarliestDate time.Time
	MaxDate      *time.Time
	AppliedOn    *time.Time

	// Blocked indica que una dosis anterior de la serie no fue aplicada.
	Blocked   bool
	BlockedBy int
}

// DiagnosticKind clasifica los datos descartados durante la evaluación.
type DiagnosticKind string

const (
	DiagBirthDateInFuture    DiagnosticKind = "BIRTH_DATE_IN_FUTURE"
	DiagCatalogInconsistency DiagnosticKind = "CATALOG_INCONSISTENCY"
	DiagInvalidDose          DiagnosticKind = "INVALID_DOSE"
	DiagDuplicateDose        DiagnosticKind = "DUPLICATE_DOSE"
	DiagUnmatchedDose        DiagnosticKind = "UNMATCHED_DOSE"
)

type Diagnostic struct {
	Kind       DiagnosticKind
	VaccineID  string
	DoseNumber int
	Detail     string
}

type Evaluation struct {
	Obligations []Obligation
	Diagnostics []Diagnostic
}

// Count devuelve cuántas obligaciones hay en el estado dado.
func (e Evaluation) Count(s State) int {
	n := 0
	for _, o := range e.Obligations {
		if o.State == s {
			n++
		}
	}
	return n
}

func urgencyRank(s State) int {
	switch s {
	case StateOverdue:
		return 0
	case StateDueSoon:
		return 1
	case StateScheduled:
		return 2
	case StateSatisfied:
		return 3
	}
	return 4
}

// SortByUrgency ordena vencidas primero (las más atrasadas antes), luego próximas,
// programadas y aplicadas. Dentro de cada grupo se respeta el orden original.
func SortByUrgency(obs []Obligation) []Obligation {
	out := make([]Obligation, len(obs))
	copy(out, obs)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := urgencyRank(out[i].State), urgencyRank(out[j].State)
		if ri != rj {
			return ri < rj
		}
		if out[i].State == StateSatisfied {
			return false
		}
		return out[i].DaysFromTarget > out[j].DaysFromTarget
	})
	return out
}
