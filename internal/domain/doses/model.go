package doses

import (
	"time"

	"child-immunization-history/internal/domain/immunization"
)

// Dose es una aplicación de vacuna registrada para un niño.
// El registro es de solo alta: no se edita ni se borra.
type Dose struct {
	ID      string
	ChildID string

	VaccineID  string
	DoseNumber int

	ApplicationDate time.Time // fecha calendario

	HealthCenter string
	Lot          string
	RecordedBy   string

	CreatedAt time.Time
}

func (d Dose) Administered() immunization.AdministeredDose {
	return immunization.AdministeredDose{
		VaccineID:       d.VaccineID,
		DoseNumber:      d.DoseNumber,
		ApplicationDate: d.ApplicationDate,
	}
}

// History convierte los registros al formato que consume el evaluador.
func History(items []Dose) []immunization.AdministeredDose {
	out := make([]immunization.AdministeredDose, 0, len(items))
	for _, d := range items {
		out = append(out, d.Administered())
	}
	return out
}
