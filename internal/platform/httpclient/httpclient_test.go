package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoJSON_SendsBodyAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/echo" || r.Header.Get("X-Api-Key") != "k" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		_ = json.NewEncoder(w).Encode(map[string]string{"got": in["token"]})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", 0, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	var out struct {
		Got string `json:"got"`
	}
	err = c.DoJSON(context.Background(), http.MethodPost, "v1/echo", map[string]string{"X-Api-Key": "k"}, map[string]string{"token": "abc"}, &out)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if out.Got != "abc" {
		t.Fatalf("expected abc, got %q", out.Got)
	}
}

func TestDoJSON_Non2xxIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(srv.URL, 0, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = c.DoJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
	if StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestNew_RejectsEmptyBaseURL(t *testing.T) {
	if _, err := New("  ", 0, nil); err == nil {
		t.Fatal("expected error")
	}
}
