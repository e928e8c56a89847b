package notifications

import (
	"sort"
	"time"

	"child-immunization-history/internal/domain/immunization"
	"child-immunization-history/internal/domain/schedule"

	"github.com/google/uuid"
)

// Plan son las escrituras necesarias para alinear las notificaciones con la evaluación.
type Plan struct {
	ToCreate []Notification
	ToUpdate []Notification

	// Duplicates son notificaciones activas repetidas para una misma dosis (datos sucios).
	// Se informan y no se tocan.
	Duplicates []Notification
}

func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0
}

// Writes devuelve primero las actualizaciones y luego las altas: una dosis que pasa a
// APLICADA libera su clave antes de que se cree otra activa.
func (p Plan) Writes() []Notification {
	out := make([]Notification, 0, len(p.ToUpdate)+len(p.ToCreate))
	out = append(out, p.ToUpdate...)
	out = append(out, p.ToCreate...)
	return out
}

// Reconcile compara las obligaciones recién calculadas con las notificaciones existentes
// del niño y devuelve el delta. Es puro: aplicar el plan y volver a reconciliar con las
// mismas obligaciones produce un plan vacío.
func Reconcile(childID string, obligations []immunization.Obligation, existing []Notification, now time.Time) Plan {
	active, dups := activeByKey(existing)
	plan := Plan{Duplicates: dups}

	for _, o := range obligations {
		key := schedule.Key{VaccineID: o.VaccineID, DoseNumber: o.DoseNumber}
		cur, has := active[key]

		if o.State == immunization.StateSatisfied {
			if has {
				plan.ToUpdate = append(plan.ToUpdate, markApplied(cur, now))
			}
			continue
		}

		typ := TypeFor(o.State)
		scheduled := immunization.DateOf(o.TargetDate)

		if !has {
			// Una dosis bloqueada por la anterior todavía no se puede aplicar.
			if o.Blocked {
				continue
			}
			plan.ToCreate = append(plan.ToCreate, Notification{
				ID:            uuid.NewString(),
				ChildID:       childID,
				VaccineID:     o.VaccineID,
				DoseNumber:    o.DoseNumber,
				Type:          typ,
				State:         StatePendiente,
				ScheduledDate: scheduled,
				Message:       buildMessage(typ, o),
				CreatedAt:     now,
				UpdatedAt:     now,
			})
			continue
		}

		if cur.Type != typ || !immunization.DateOf(cur.ScheduledDate).Equal(scheduled) {
			cur.Type = typ
			cur.ScheduledDate = scheduled
			cur.Message = buildMessage(typ, o)
			cur.UpdatedAt = now
			plan.ToUpdate = append(plan.ToUpdate, cur)
		}
	}

	return plan
}

// activeByKey elige la notificación activa más antigua por dosis; el resto son duplicadas.
func activeByKey(existing []Notification) (map[schedule.Key]Notification, []Notification) {
	sorted := make([]Notification, 0, len(existing))
	for _, n := range existing {
		if n.Active() {
			sorted = append(sorted, n)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	active := make(map[schedule.Key]Notification, len(sorted))
	var dups []Notification
	for _, n := range sorted {
		if _, ok := active[n.Key()]; ok {
			dups = append(dups, n)
			continue
		}
		active[n.Key()] = n
	}
	return active, dups
}
