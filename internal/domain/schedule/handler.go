package schedule

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/schedule", getScheduleHandler(svc))
}

// entryResponse representa una dosis del calendario.
type entryResponse struct {
	VaccineID       string `json:"vaccine_id"`
	VaccineName     string `json:"vaccine_name"`
	DoseNumber      int    `json:"dose_number"`
	TargetAgeDays   int    `json:"target_age_days"`
	MinAgeDays      *int   `json:"min_age_days,omitempty"`
	MaxAgeDays      *int   `json:"max_age_days,omitempty"`
	MinIntervalDays *int   `json:"min_interval_days,omitempty"`
	IsBooster       bool   `json:"is_booster"`
}

type issueResponse struct {
	VaccineID  string `json:"vaccine_id"`
	DoseNumber int    `json:"dose_number"`
	Reason     string `json:"reason"`
}

// scheduleResponse es el calendario vigente más las entradas inconsistentes.
type scheduleResponse struct {
	Version string          `json:"version"`
	Entries []entryResponse `json:"entries"`
	Issues  []issueResponse `json:"issues"`
}

// getScheduleHandler godoc
// @Summary Calendario de vacunación vigente
// @Description Devuelve el esquema oficial de dosis. Las entradas inconsistentes se listan en `issues` y no participan de la evaluación.
// @Tags schedule
// @Produce json
// @Success 200 {object} scheduleResponse
// @Failure 500 {string} string "internal error"
// @Router /schedule [get]
func getScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, issues, err := svc.Active(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := scheduleResponse{
			Version: c.Version,
			Entries: make([]entryResponse, 0, len(c.Entries)),
			Issues:  make([]issueResponse, 0, len(issues)),
		}
		for _, e := range c.Entries {
			out.Entries = append(out.Entries, entryResponse{
				VaccineID:       e.VaccineID,
				VaccineName:     e.VaccineName,
				DoseNumber:      e.DoseNumber,
				TargetAgeDays:   e.TargetAgeDays,
				MinAgeDays:      e.MinAgeDays,
				MaxAgeDays:      e.MaxAgeDays,
				MinIntervalDays: e.MinIntervalDays,
				IsBooster:       e.IsBooster,
			})
		}
		for _, is := range issues {
			out.Issues = append(out.Issues, issueResponse(is))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
