package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"child-immunization-history/internal/platform/logger"
	"child-immunization-history/internal/ports/auth"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserID(r.Context())
		_, _ = w.Write([]byte(uid))
	})
}

func TestAuthContext_DevHeader(t *testing.T) {
	h := AuthContext(nil, logger.Nop())(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(DebugUserHeader, " tutor-1 ")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Body.String() != "tutor-1" {
		t.Fatalf("expected tutor-1, got %q", rr.Body.String())
	}
}

func TestAuthContext_Verifier(t *testing.T) {
	v := auth.VerifierFunc(func(_ context.Context, token string) (auth.Claims, error) {
		if token != "good" {
			return auth.Claims{}, errors.New("bad token")
		}
		return auth.Claims{UserID: "u-9"}, nil
	})
	h := AuthContext(v, logger.Nop())(echoUser())

	cases := []struct {
		header string
		want   string
	}{
		{"Bearer good", "u-9"},
		{"bearer good", "u-9"},
		{"Bearer bad", ""},
		{"Basic good", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", tc.header)
		req.Header.Set(DebugUserHeader, "ignored")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Body.String() != tc.want {
			t.Fatalf("header %q: expected %q, got %q", tc.header, tc.want, rr.Body.String())
		}
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RPS: 0.001, Burst: 2, CleanupInterval: time.Hour})
	defer rl.Stop()
	h := rl.Middleware(echoUser())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	// otra IP tiene su propio bucket
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("expected 200 for other client, got %d", rr.Code)
	}
	if rl.Len() != 2 {
		t.Fatalf("expected 2 limiters, got %d", rl.Len())
	}
}

func TestRateLimiter_CleanupDropsIdle(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RPS: 1, Burst: 1, CleanupInterval: time.Hour})
	defer rl.Stop()

	rl.limiterFor("ip:1")
	rl.cleanup(time.Now().Add(3 * time.Hour))
	if rl.Len() != 0 {
		t.Fatalf("expected idle limiter removed, got %d", rl.Len())
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatJSON, Output: &buf})

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/children/x", nil))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("invalid log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "WARN" || entry["status"] != float64(404) {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !strings.HasPrefix(entry["path"].(string), "/children") {
		t.Fatalf("unexpected path %v", entry["path"])
	}
}
