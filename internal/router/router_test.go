package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"child-immunization-history/internal/router"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	opts := router.Options{AuthVerifier: nil, Location: time.UTC}
	svcs, err := router.BuildServices(opts)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	ts := httptest.NewServer(router.NewRouter(opts, svcs))
	t.Cleanup(ts.Close)
	return ts
}

type notification struct {
	ID         string `json:"id"`
	VaccineID  string `json:"vaccine_id"`
	DoseNumber int    `json:"dose_number"`
	Type       string `json:"type"`
	State      string `json:"state"`
	Message    string `json:"message"`
}

func TestHTTP_EndToEnd_DoseStatusNotifications(t *testing.T) {
	ts := newTestServer(t)

	guardian := "tutor-1"
	other := "tutor-2"
	today := time.Now().UTC()
	birth := today.AddDate(0, 0, -90).Format(time.DateOnly)

	// 1) Tutor registra al niño
	childID := createChild(t, ts.URL, guardian, map[string]any{
		"first_name": "Ana",
		"last_name":  "Benítez",
		"sex":        "F",
		"birth_date": birth,
	})

	// 2) Otro usuario no puede verlo
	{
		st, _ := doReq(t, ts.URL, "GET", "/children/"+childID, other, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 for non guardian, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "GET", "/children/"+childID+"/status", other, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 status for non guardian, got %d", st)
		}
	}

	// 3) Registrar BCG al día siguiente del nacimiento
	bcgDate := today.AddDate(0, 0, -89).Format(time.DateOnly)
	{
		st, body := doReq(t, ts.URL, "POST", "/children/"+childID+"/doses", guardian, map[string]any{
			"vaccine_id":       "BCG",
			"dose_number":      1,
			"application_date": bcgDate,
			"health_center":    "USF San Lorenzo",
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 recording dose, got %d body=%s", st, string(body))
		}
	}

	// 4) Repetir la misma dosis => 409
	{
		st, _ := doReq(t, ts.URL, "POST", "/children/"+childID+"/doses", guardian, map[string]any{
			"vaccine_id":       "BCG",
			"dose_number":      1,
			"application_date": bcgDate,
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 for repeated dose, got %d", st)
		}
	}

	// 5) Fecha futura y dosis fuera del calendario => 400
	{
		st, _ := doReq(t, ts.URL, "POST", "/children/"+childID+"/doses", guardian, map[string]any{
			"vaccine_id":       "HEPB",
			"dose_number":      1,
			"application_date": today.AddDate(0, 0, 3).Format(time.DateOnly),
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for future application date, got %d", st)
		}
		st, _ = doReq(t, ts.URL, "POST", "/children/"+childID+"/doses", guardian, map[string]any{
			"vaccine_id":       "BCG",
			"dose_number":      7,
			"application_date": bcgDate,
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown dose, got %d", st)
		}
	}

	// 6) Estado: BCG satisfecha, HEPB vencida (pasó su edad máxima)
	{
		st, body := doReq(t, ts.URL, "GET", "/children/"+childID+"/status", guardian, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 status, got %d body=%s", st, string(body))
		}
		var out struct {
			Completeness float64 `json:"completeness"`
			Obligations  []struct {
				VaccineID  string `json:"vaccine_id"`
				DoseNumber int    `json:"dose_number"`
				State      string `json:"state"`
			} `json:"obligations"`
		}
		mustJSON(t, body, &out)

		states := map[string]string{}
		for _, o := range out.Obligations {
			if o.DoseNumber == 1 {
				states[o.VaccineID] = o.State
			}
		}
		if states["BCG"] != "SATISFIED" {
			t.Fatalf("expected BCG satisfied, got %q", states["BCG"])
		}
		if states["HEPB"] != "OVERDUE" {
			t.Fatalf("expected HEPB overdue, got %q", states["HEPB"])
		}
		if out.Obligations[0].State != "OVERDUE" {
			t.Fatalf("expected most urgent first, got %q", out.Obligations[0].State)
		}
		if out.Completeness <= 0 || out.Completeness >= 100 {
			t.Fatalf("unexpected completeness %v", out.Completeness)
		}
	}

	// 7) Registrar la dosis ya sincronizó; sync explícito no cambia nada
	{
		st, body := doReq(t, ts.URL, "POST", "/children/"+childID+"/notifications/sync", guardian, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 sync, got %d body=%s", st, string(body))
		}
		var res struct {
			Created int `json:"created"`
			Updated int `json:"updated"`
		}
		mustJSON(t, body, &res)
		if res.Created != 0 || res.Updated != 0 {
			t.Fatalf("expected idempotent sync, got %+v", res)
		}
	}

	notes := listNotifications(t, ts.URL, guardian, childID, "")
	hepb := findNotification(notes, "HEPB", 1)
	if hepb == nil {
		t.Fatalf("expected HEPB notification, got %+v", notes)
	}
	if hepb.Type != "VENCIDA" || hepb.State != "PENDIENTE" || hepb.Message == "" {
		t.Fatalf("unexpected HEPB notification %+v", *hepb)
	}
	if findNotification(notes, "BCG", 1) != nil {
		t.Fatal("satisfied dose must not have a notification")
	}

	// 8) Otro usuario no puede marcarla
	{
		st, _ := doReq(t, ts.URL, "POST", "/notifications/"+hepb.ID+"/sent", other, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 marking foreign notification, got %d", st)
		}
	}

	// 9) PENDIENTE -> ENVIADA (idempotente) -> LEIDA; volver a ENVIADA => 409
	{
		n := transition(t, ts.URL, guardian, hepb.ID, "sent", http.StatusOK)
		if n.State != "ENVIADA" {
			t.Fatalf("expected ENVIADA, got %s", n.State)
		}
		n = transition(t, ts.URL, guardian, hepb.ID, "sent", http.StatusOK)
		if n.State != "ENVIADA" {
			t.Fatalf("expected ENVIADA on repeat, got %s", n.State)
		}
		n = transition(t, ts.URL, guardian, hepb.ID, "read", http.StatusOK)
		if n.State != "LEIDA" {
			t.Fatalf("expected LEIDA, got %s", n.State)
		}
		transition(t, ts.URL, guardian, hepb.ID, "sent", http.StatusConflict)
	}

	// 10) Aplicar HEPB cierra su notificación
	{
		st, body := doReq(t, ts.URL, "POST", "/children/"+childID+"/doses", guardian, map[string]any{
			"vaccine_id":       "HEPB",
			"dose_number":      1,
			"application_date": today.Format(time.DateOnly),
		})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 recording late dose, got %d body=%s", st, string(body))
		}

		applied := listNotifications(t, ts.URL, guardian, childID, "APLICADA")
		n := findNotification(applied, "HEPB", 1)
		if n == nil || n.ID != hepb.ID {
			t.Fatalf("expected HEPB notification applied, got %+v", applied)
		}
		for _, a := range listNotifications(t, ts.URL, guardian, childID, "PENDIENTE") {
			if a.VaccineID == "HEPB" && a.DoseNumber == 1 {
				t.Fatal("HEPB must not have an active notification after applying")
			}
		}
	}

	// 11) Certificado
	{
		st, body := doReq(t, ts.URL, "GET", "/children/"+childID+"/certificate", guardian, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 certificate, got %d body=%s", st, string(body))
		}
		var cert struct {
			ChildName string            `json:"child_name"`
			Satisfied []json.RawMessage `json:"satisfied"`
		}
		mustJSON(t, body, &cert)
		if cert.ChildName != "Ana Benítez" || len(cert.Satisfied) != 2 {
			t.Fatalf("unexpected certificate %s", string(body))
		}
	}
}

func TestHTTP_ChildValidation(t *testing.T) {
	ts := newTestServer(t)

	st, _ := doReq(t, ts.URL, "POST", "/children", "", map[string]any{"first_name": "x"})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/children", "tutor-1", map[string]any{
		"first_name": "Luis",
		"last_name":  "Gómez",
		"birth_date": time.Now().UTC().AddDate(0, 0, 5).Format(time.DateOnly),
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for future birth date, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/children", "tutor-1", map[string]any{
		"first_name": "Luis",
		"last_name":  "Gómez",
		"birth_date": "12/05/2024",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date format, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "GET", "/children/does-not-exist", "tutor-1", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", st)
	}
}

func TestHTTP_HealthAndSchedule(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("unexpected health %d %q", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/schedule", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 schedule, got %d", st)
	}
	if !bytes.Contains(body, []byte(`"BCG"`)) {
		t.Fatalf("expected default catalog, got %s", string(body))
	}
}

// ---------------- helpers ----------------

func createChild(t *testing.T, baseURL, userID string, payload map[string]any) string {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/children", userID, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating child, got %d body=%s", st, string(body))
	}
	var out struct {
		ID string `json:"id"`
	}
	mustJSON(t, body, &out)
	if out.ID == "" {
		t.Fatalf("expected child id, body=%s", string(body))
	}
	return out.ID
}

func listNotifications(t *testing.T, baseURL, userID, childID, state string) []notification {
	t.Helper()
	path := "/children/" + childID + "/notifications"
	if state != "" {
		path += "?state=" + state
	}
	st, body := doReq(t, baseURL, "GET", path, userID, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing notifications, got %d body=%s", st, string(body))
	}
	var out []notification
	mustJSON(t, body, &out)
	return out
}

func findNotification(items []notification, vaccineID string, dose int) *notification {
	for i := range items {
		if items[i].VaccineID == vaccineID && items[i].DoseNumber == dose {
			return &items[i]
		}
	}
	return nil
}

func transition(t *testing.T, baseURL, userID, id, action string, want int) notification {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/notifications/"+id+"/"+action, userID, nil)
	if st != want {
		t.Fatalf("%s: expected %d, got %d body=%s", action, want, st, string(body))
	}
	var n notification
	if st == http.StatusOK {
		mustJSON(t, body, &n)
	}
	return n
}

func doReq(t *testing.T, baseURL, method, path, userID string, payload any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func mustJSON(t *testing.T, b []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("invalid json %s: %v", string(b), err)
	}
}
