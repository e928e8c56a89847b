package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"child-immunization-history/internal/domain/children"
	"child-immunization-history/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, childrenSvc *children.Service) {
	r.Route("/children/{childID}/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(svc, childrenSvc))
		nr.Post("/sync", syncNotificationsHandler(svc, childrenSvc))
	})

	r.Post("/notifications/{notificationID}/sent", transitionHandler(svc, childrenSvc, svc.MarkSent))
	r.Post("/notifications/{notificationID}/read", transitionHandler(svc, childrenSvc, svc.MarkRead))
}

// notificationResponse representa un aviso de vacunación.
type notificationResponse struct {
	ID            string     `json:"id"`
	ChildID       string     `json:"child_id"`
	VaccineID     string     `json:"vaccine_id"`
	DoseNumber    int        `json:"dose_number"`
	Type          Type       `json:"type" enums:"RECORDATORIO,PROXIMA,VENCIDA"`
	State         State      `json:"state" enums:"PENDIENTE,ENVIADA,LEIDA,APLICADA"`
	ScheduledDate string     `json:"scheduled_date"`
	Message       string     `json:"message"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	AppliedAt     *time.Time `json:"applied_at,omitempty"`
}

// syncResponse resume una sincronización.
type syncResponse struct {
	Created    int `json:"created"`
	Updated    int `json:"updated"`
	Duplicates int `json:"duplicates"`
	Attempts   int `json:"attempts"`
}

// listNotificationsHandler godoc
// @Summary Listar notificaciones del niño
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param childID path string true "ID del niño"
// @Param state query string false "Filtrar por estado (PENDIENTE, ENVIADA, LEIDA, APLICADA)"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "child not found"
// @Router /children/{childID}/notifications [get]
func listNotificationsHandler(svc *Service, childrenSvc *children.Service) http.HandlerFunc {
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

		filter := State(r.URL.Query().Get("state"))
		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			if filter != "" && n.State != filter {
				continue
			}
			out = append(out, toNotificationResponse(n))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// syncNotificationsHandler godoc
// @Summary Sincronizar notificaciones
// @Description Recalcula el esquema del niño y crea, re-tipifica o marca como APLICADA sus notificaciones. Es idempotente.
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param childID path string true "ID del niño"
// @Success 200 {object} syncResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "child not found"
// @Failure 409 {string} string "conflict"
// @Router /children/{childID}/notifications/sync [post]
func syncNotificationsHandler(svc *Service, childrenSvc *children.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		child, ok := children.ResolveForGuardian(w, r, childrenSvc)
		if !ok {
			return
		}

		res, err := svc.Sync(r.Context(), child.ID)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				http.Error(w, "conflict", http.StatusConflict)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, syncResponse(res))
	}
}

// transitionHandler godoc
// @Summary Marcar notificación como enviada o leída
// @Description `sent`: PENDIENTE -> ENVIADA. `read`: PENDIENTE/ENVIADA -> LEIDA. Repetir la misma acción no cambia nada; una notificación APLICADA no admite cambios.
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param notificationID path string true "ID de la notificación"
// @Success 200 {object} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "notification not found"
// @Failure 409 {string} string "invalid state transition"
// @Router /notifications/{notificationID}/sent [post]
// @Router /notifications/{notificationID}/read [post]
func transitionHandler(svc *Service, childrenSvc *children.Service, apply func(ctx context.Context, id string) (Notification, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		n, err := svc.GetByID(r.Context(), chi.URLParam(r, "notificationID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "notification not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// No revelar notificaciones de niños ajenos.
		if _, err := childrenSvc.GetForGuardian(r.Context(), n.ChildID, userID); err != nil {
			if errors.Is(err, children.ErrForbidden) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}

		updated, err := apply(r.Context(), n.ID)
		if err != nil {
			switch {
			case errors.Is(err, ErrBadState):
				http.Error(w, err.Error(), http.StatusConflict)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "notification not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toNotificationResponse(updated))
	}
}

func toNotificationResponse(n Notification) notificationResponse {
	return notificationResponse{
		ID:            n.ID,
		ChildID:       n.ChildID,
		VaccineID:     n.VaccineID,
		DoseNumber:    n.DoseNumber,
		Type:          n.Type,
		State:         n.State,
		ScheduledDate: n.ScheduledDate.Format(time.DateOnly),
		Message:       n.Message,
		CreatedAt:     n.CreatedAt,
		UpdatedAt:     n.UpdatedAt,
		SentAt:        n.SentAt,
		ReadAt:        n.ReadAt,
		AppliedAt:     n.AppliedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
