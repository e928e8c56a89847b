package children

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"child-immunization-history/internal/domain/immunization"
	"child-immunization-history/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/children", func(cr chi.Router) {
		cr.Post("/", createChildHandler(svc))
		cr.Get("/", listChildrenHandler(svc))
		cr.Get("/{childID}", getChildHandler(svc))
	})
}

// createChildRequest es el cuerpo para registrar un niño.
type createChildRequest struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
	Sex            Sex    `json:"sex" enums:"F,M"`
	BirthDate      string `json:"birth_date"` // YYYY-MM-DD
}

// childResponse representa un niño registrado.
type childResponse struct {
	ID             string    `json:"id"`
	GuardianUserID string    `json:"guardian_user_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	DocumentNumber string    `json:"document_number,omitempty"`
	Sex            Sex       `json:"sex,omitempty"`
	BirthDate      string    `json:"birth_date"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// createChildHandler godoc
// @Summary Registrar niño
// @Description Registra un niño bajo la tutela del usuario autenticado. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags children
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createChildRequest true "Datos del niño; birth_date en formato YYYY-MM-DD"
// @Success 201 {object} childResponse
// @Failure 400 {string} string "invalid json / birth_date inválido"
// @Failure 401 {string} string "unauthorized"
// @Router /children [post]
func createChildHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createChildRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		bd, err := immunization.ParseDate(strings.TrimSpace(req.BirthDate))
		if err != nil {
			http.Error(w, "birth_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), userID, CreateInput{
			FirstName:      req.FirstName,
			LastName:       req.LastName,
			DocumentNumber: req.DocumentNumber,
			Sex:            req.Sex,
			BirthDate:      bd,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toChildResponse(c))
	}
}

// listChildrenHandler godoc
// @Summary Listar mis niños
// @Tags children
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} childResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /children [get]
func listChildrenHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByGuardian(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]childResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toChildResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getChildHandler godoc
// @Summary Perfil del niño
// @Tags children
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param childID path string true "ID del niño"
// @Success 200 {object} childResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "child not found"
// @Router /children/{childID} [get]
func getChildHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := ResolveForGuardian(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toChildResponse(c))
	}
}

// ResolveForGuardian carga el niño de la ruta ({childID}) y exige que el usuario autenticado sea su tutor.
// Si falla ya escribió la respuesta de error.
func ResolveForGuardian(w http.ResponseWriter, r *http.Request, svc *Service) (Child, bool) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return Child{}, false
	}

	c, err := svc.GetForGuardian(r.Context(), chi.URLParam(r, "childID"), userID)
	switch {
	case err == nil:
		return c, true
	case errors.Is(err, ErrNotFound):
		http.Error(w, "child not found", http.StatusNotFound)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
	return Child{}, false
}

func toChildResponse(c Child) childResponse {
	return childResponse{
		ID:             c.ID,
		GuardianUserID: c.GuardianUserID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		DocumentNumber: c.DocumentNumber,
		Sex:            c.Sex,
		BirthDate:      c.BirthDate.Format(time.DateOnly),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
