package doses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"child-immunization-history/internal/domain/children"
	"child-immunization-history/internal/domain/immunization"
	"child-immunization-history/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

// NotificationSyncer recalcula las notificaciones de un niño tras registrar una dosis.
type NotificationSyncer interface {
	SyncChild(ctx context.Context, childID string) error
}

func RegisterRoutes(r chi.Router, svc *Service, childrenSvc *children.Service, syncer NotificationSyncer, log logger.Logger) {
	r.Route("/children/{childID}/doses", func(dr chi.Router) {
		dr.Post("/", recordDoseHandler(svc, childrenSvc, syncer, log))
		dr.Get("/", listDosesHandler(svc, childrenSvc))
	})
}

// recordDoseRequest es el cuerpo para registrar una aplicación.
type recordDoseRequest struct {
	VaccineID       string `json:"vaccine_id"`
	DoseNumber      int    `json:"dose_number"`
	ApplicationDate string `json:"application_date"` // YYYY-MM-DD
	HealthCenter    string `json:"health_center"`
	Lot             string `json:"lot"`
}

// doseResponse representa una dosis aplicada.
type doseResponse struct {
	ID              string    `json:"id"`
	ChildID         string    `json:"child_id"`
	VaccineID       string    `json:"vaccine_id"`
	DoseNumber      int       `json:"dose_number"`
	ApplicationDate string    `json:"application_date"`
	HealthCenter    string    `json:"health_center,omitempty"`
	Lot             string    `json:"lot,omitempty"`
	RecordedBy      string    `json:"recorded_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// recordDoseHandler godoc
// @Summary Registrar dosis aplicada
// @Description Registra una aplicación para el niño y recalcula sus notificaciones. La fecha debe estar entre el nacimiento y hoy.
// @Tags doses
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param childID path string true "ID del niño"
// @Param payload body recordDoseRequest true "Dosis; application_date en formato YYYY-MM-DD"
// @Success 201 {object} doseResponse
// @Failure 400 {string} string "invalid json / fecha fuera de rango / dosis fuera del calendario"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "child not found"
// @Failure 409 {string} string "dose already recorded"
// @Router /children/{childID}/doses [post]
func recordDoseHandler(svc *Service, childrenSvc *children.Service, syncer NotificationSyncer, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		child, ok := children.ResolveForGuardian(w, r, childrenSvc)
		if !ok {
			return
		}

		var req recordDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		at, err := immunization.ParseDate(strings.TrimSpace(req.ApplicationDate))
		if err != nil {
			http.Error(w, "application_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		d, err := svc.Record(r.Context(), child, child.GuardianUserID, RecordInput{
			VaccineID:       req.VaccineID,
			DoseNumber:      req.DoseNumber,
			ApplicationDate: at,
			HealthCenter:    req.HealthCenter,
			Lot:             req.Lot,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrConflict):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		// La dosis ya quedó registrada; si falla la sincronización la corrige el barrido periódico.
		if syncer != nil {
			if err := syncer.SyncChild(r.Context(), child.ID); err != nil && log != nil {
				log.Warn("notification sync after dose failed", map[string]any{
					"child_id": child.ID,
					"dose_id":  d.ID,
					"err":      err.Error(),
				})
			}
		}

		writeJSON(w, http.StatusCreated, toDoseResponse(d))
	}
}

// listDosesHandler godoc
// @Summary Historial de dosis
// @Tags doses
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param childID path string true "ID del niño"
// @Success 200 {array} doseResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "child not found"
// @Router /children/{childID}/doses [get]
func listDosesHandler(svc *Service, childrenSvc *children.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		child, ok := children.ResolveForGuardian(w, r, childrenSvc)
		if !ok {
			return
		}

		items, err := svc.ListByChild(r.Context(), child.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]doseResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDoseResponse(d))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toDoseResponse(d Dose) doseResponse {
	return doseResponse{
		ID:              d.ID,
		ChildID:         d.ChildID,
		VaccineID:       d.VaccineID,
		DoseNumber:      d.DoseNumber,
		ApplicationDate: d.ApplicationDate.Format(time.DateOnly),
		HealthCenter:    d.HealthCenter,
		Lot:             d.Lot,
		RecordedBy:      d.RecordedBy,
		CreatedAt:       d.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
