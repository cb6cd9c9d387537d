package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func captureIdentity(t *testing.T) (http.Handler, *int, *UserInfo) {
	t.Helper()
	var id int
	var info UserInfo
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = userIDFromContext(r)
		info = userInfoFromContext(r)
		w.WriteHeader(http.StatusOK)
	})
	return h, &id, &info
}

// TestIdentityContextFallbacks verifies the request-scoped identity helpers
// default to the single-user identity when no middleware ran, and return
// whatever an identity middleware stored otherwise.
func TestIdentityContextFallbacks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if id := userIDFromContext(req); id != 1 {
		t.Errorf("default user id = %d, want 1", id)
	}
	if info := userInfoFromContext(req); info.Login != "local" || info.DisplayName != "Local Dev User" {
		t.Errorf("default user info = %+v, want local dev identity", info)
	}

	ctx := context.WithValue(req.Context(), userIDKey, 42)
	ctx = context.WithValue(ctx, userInfoKey, UserInfo{Login: "ada@example.com", DisplayName: "Ada"})
	req = req.WithContext(ctx)

	if id := userIDFromContext(req); id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
	if info := userInfoFromContext(req); info.Login != "ada@example.com" {
		t.Errorf("login = %q, want ada@example.com", info.Login)
	}
}

// TestDevIdentity verifies every request gets the fixed local identity.
func TestDevIdentity(t *testing.T) {
	next, id, info := captureIdentity(t)
	rec := httptest.NewRecorder()
	DevIdentity(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if *id != 1 {
		t.Errorf("user id = %d, want 1", *id)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want local", info.Login)
	}
}

// TestServerIdentityWithoutTailscale verifies the per-request identity
// dispatcher uses the dev identity when no tailnet client is configured.
func TestServerIdentityWithoutTailscale(t *testing.T) {
	s := &Server{log: slog.Default()}
	next, id, info := captureIdentity(t)

	rec := httptest.NewRecorder()
	s.identity(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if *id != 1 || info.Login != "local" {
		t.Errorf("identity = %d/%q, want dev fallback 1/local", *id, info.Login)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := APIKeyAuth("secret")(next)

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "nope", http.StatusForbidden},
		{"valid key", "secret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// TestRequestLogging verifies the middleware records the downstream status
// while passing the response through unchanged.
func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want 418", rec.Code)
	}
	line := buf.String()
	if !strings.Contains(line, "status=418") || !strings.Contains(line, "path=/api/v1/session") {
		t.Errorf("log line %q missing status or path", line)
	}
}

func TestCORS(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "X-API-Key") {
		t.Errorf("allow-headers = %q, want X-API-Key included", got)
	}
}

// TestCORSPreflight verifies OPTIONS requests short-circuit with 204.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler called for preflight")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
