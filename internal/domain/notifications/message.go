package notifications

import (
	"fmt"
	"strings"

	"child-immunization-history/internal/domain/immunization"
)

const dateLayout = "02/01/2006"

// TypeFor deriva el tipo de aviso de una dosis no aplicada.
func TypeFor(s immunization.State) Type {
	switch s {
	case immunization.StateOverdue:
		return TypeVencida
	case immunization.StateDueSoon:
		return TypeProxima
	default:
		return TypeRecordatorio
	}
}

func buildMessage(t Type, o immunization.Obligation) string {
	name := strings.TrimSpace(o.VaccineName)
	if name == "" {
		name = o.VaccineID
	}
	when := o.TargetDate.Format(dateLayout)

	switch t {
	case TypeVencida:
		return fmt.Sprintf("La dosis %d de %s está vencida. Fecha recomendada: %s. Acuda a su vacunatorio.", o.DoseNumber, name, when)
	case TypeProxima:
		return fmt.Sprintf("La dosis %d de %s está próxima. Fecha recomendada: %s.", o.DoseNumber, name, when)
	default:
		return fmt.Sprintf("Recordatorio: la dosis %d de %s corresponde el %s.", o.DoseNumber, name, when)
	}
}
