package status

import (
	"encoding/json"
	"net/http"
	"time"

	"child-immunization-history/internal/domain/children"
	"child-immunization-history/internal/domain/immunization"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, childrenSvc *children.Service) {
	r.Get("/children/{childID}/status", getStatusHandler(svc, childrenSvc))
	r.Get("/children/{childID}/certificate", getCertificateHandler(svc, childrenSvc))
}

// obligationResponse es el estado de una dosis del calendario para el niño.
type obligationResponse struct {
	VaccineID      string             `json:"vaccine_id"`
	VaccineName    string             `json:"vaccine_name"`
	DoseNumber     int                `json:"dose_number"`
	IsBooster      bool               `json:"is_booster"`
	State          immunization.State `json:"state" enums:"SATISFIED,OVERDUE,DUE_SOON,SCHEDULED"`
	DaysFromTarget int                `json:"days_from_target"`
	TargetDate     string             `json:"target_date"`
	EarliestDate   string             `json:"earliest_date"`
	MaxDate        string             `json:"max_date,omitempty"`
	AppliedOn      string             `json:"applied_on,omitempty"`
	Blocked        bool               `json:"blocked"`
	BlockedBy      int                `json:"blocked_by,omitempty"`
}

type diagnosticResponse struct {
	Kind       immunization.DiagnosticKind `json:"kind"`
	VaccineID  string                      `json:"vaccine_id,omitempty"`
	DoseNumber int                         `json:"dose_number,omitempty"`
	Detail     string                      `json:"detail"`
}

// statusResponse resume el esquema del niño a la fecha de evaluación.
type statusResponse struct {
	ChildID        string               `json:"child_id"`
	BirthDate      string               `json:"birth_date"`
	EvaluatedOn    string               `json:"evaluated_on"`
	CatalogVersion string               `json:"catalog_version"`
	Completeness   float64              `json:"completeness"`
	Counts         map[string]int       `json:"counts"`
	Obligations    []obligationResponse `json:"obligations"`
	Diagnostics    []diagnosticResponse `json:"diagnostics"`
}

// certificateResponse alimenta al generador de certificados.
type certificateResponse struct {
	ChildID      string               `json:"child_id"`
	ChildName    string               `json:"child_name"`
	BirthDate    string               `json:"birth_date"`
	GeneratedOn  string               `json:"generated_on"`
	Completeness float64              `json:"completeness"`
	Satisfied    []obligationResponse `json:"satisfied"`
	Overdue      []obligationResponse `json:"overdue"`
}

// getStatusHandler godoc
// @Summary Estado del esquema de vacunación
// @Description Evalúa cada dosis del calendario (aplicada, vencida, próxima o programada), ordenadas por urgencia, junto con los diagnósticos de datos descartados y el porcentaje de cumplimiento.
// @Tags status
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param childID path string true "ID del niño"
// @Success 200 {object} statusResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "child not found"
// @Failure 500 {string} string "internal error"
// @Router /children/{childID}/status [get]
func getStatusHandler(svc *Service, childrenSvc *children.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		child, ok := children.ResolveForGuardian(w, r, childrenSvc)
		if !ok {
			return
		}

		rep, err := svc.Report(r.Context(), child.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := statusResponse{
			ChildID:        rep.ChildID,
			BirthDate:      rep.BirthDate.Format(time.DateOnly),
			EvaluatedOn:    rep.EvaluatedOn.Format(time.DateOnly),
			CatalogVersion: rep.CatalogVersion,
			Completeness:   rep.Completeness,
			Counts:         map[string]int{},
			Obligations:    toObligationResponses(immunization.SortByUrgency(rep.Obligations)),
			Diagnostics:    make([]diagnosticResponse, 0, len(rep.Diagnostics)),
		}
		for _, o := range rep.Obligations {
			out.Counts[string(o.State)]++
		}
		for _, d := range rep.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, diagnosticResponse(d))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// getCertificateHandler godoc
// @Summary Datos del certificado de vacunación
// @Description Devuelve el porcentaje de cumplimiento y las dosis aplicadas y vencidas. El renderizado del documento queda fuera de este servicio.
// @Tags status
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param childID path string true "ID del niño"
// @Success 200 {object} certificateResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "child not found"
// @Failure 500 {string} string "internal error"
// @Router /children/{childID}/certificate [get]
func getCertificateHandler(svc *Service, childrenSvc *children.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		child, ok := children.ResolveForGuardian(w, r, childrenSvc)
		if !ok {
			return
		}

		cert, err := svc.Certificate(r.Context(), child.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, certificateResponse{
			ChildID:      cert.ChildID,
			ChildName:    cert.ChildName,
			BirthDate:    cert.BirthDate.Format(time.DateOnly),
			GeneratedOn:  cert.GeneratedOn.Format(time.DateOnly),
			Completeness: cert.Completeness,
			Satisfied:    toObligationResponses(cert.Satisfied),
			Overdue:      toObligationResponses(cert.Overdue),
		})
	}
}

func toObligationResponses(obs []immunization.Obligation) []obligationResponse {
	out := make([]obligationResponse, 0, len(obs))
	for _, o := range obs {
		resp := obligationResponse{
			VaccineID:      o.VaccineID,
			VaccineName:    o.VaccineName,
			DoseNumber:     o.DoseNumber,
			IsBooster:      o.IsBooster,
			State:          o.State,
			DaysFromTarget: o.DaysFromTarget,
			TargetDate:     o.TargetDate.Format(time.DateOnly),
			EarliestDate:   o.EarliestDate.Format(time.DateOnly),
			Blocked:        o.Blocked,
			BlockedBy:      o.BlockedBy,
		}
		if o.MaxDate != nil {
			resp.MaxDate = o.MaxDate.Format(time.DateOnly)
		}
		if o.AppliedOn != nil {
			resp.AppliedOn = o.AppliedOn.Format(time.DateOnly)
		}
		out = append(out, resp)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
