package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t)

	req, _ := http.NewRequest(http.MethodGet, env.srv.URL+"/api/nowhere", nil)
	req.Header.Set("X-Request-ID", "req-123")
	res := env.send(req)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
	if res.Header.Get("X-Request-ID") != "req-123" {
		t.Fatalf("request id not echoed: %q", res.Header.Get("X-Request-ID"))
	}
	var body errorBody
	res.decode(t, &body)
	if body.RequestID != "req-123" || body.Detail != "Not Found" {
		t.Fatalf("unexpected body %+v", body)
	}

	req, _ = http.NewRequest(http.MethodGet, env.srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "has spaces")
	res = env.send(req)
	if rid := res.Header.Get("X-Request-ID"); rid == "" || rid == "has spaces" {
		t.Fatalf("unsafe request id kept: %q", rid)
	}
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, WithCORSOrigins([]string{"https://hr.example.com"}))

	req, _ := http.NewRequest(http.MethodOptions, env.srv.URL+"/api/auth/login", nil)
	req.Header.Set("Origin", "https://hr.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res := env.send(req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("preflight: %d", res.Code)
	}
	if res.Header.Get("Access-Control-Allow-Origin") != "https://hr.example.com" {
		t.Fatalf("missing allow origin header")
	}

	req, _ = http.NewRequest(http.MethodGet, env.srv.URL+"/api/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	res = env.send(req)
	if res.Header.Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin allowed")
	}
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)
	res := env.do(http.MethodGet, "/api/", "", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("root: %d", res.Code)
	}
	if res.Header.Get("X-Content-Type-Options") != "nosniff" || res.Header.Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing security headers: %v", res.Header)
	}
}

func TestBodyLimits(t *testing.T) {
	env := newTestEnv(t, WithMaxBodyBytes(256))
	p := hrPayload("big@example.com")
	p["address"] = strings.Repeat("x", 1024)
	res := env.do(http.MethodPost, "/api/auth/signup/hr", "", p)
	if res.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d %s", res.Code, res.Body)
	}

	req, _ := http.NewRequest(http.MethodPost, env.srv.URL+"/api/auth/login", strings.NewReader(`{"email":"a@b.c","password":"x","extra":1}`))
	req.Header.Set("Content-Type", "application/json")
	res = env.send(req)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: %d %s", res.Code, res.Body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	res := env.do(http.MethodDelete, "/api/auth/login", "", nil)
	if res.Code != http.StatusMethodNotAllowed || res.detail(t) != "Method Not Allowed" {
		t.Fatalf("got %d %s", res.Code, res.Body)
	}
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthAndReadiness(t *testing.T) {
	env := newTestEnv(t, WithVersion("1.2.3"))
	res := env.do(http.MethodGet, "/healthz", "", nil)
	var health map[string]string
	res.decode(t, &health)
	if res.Code != http.StatusOK || health["version"] != "1.2.3" || health["service"] != serviceName {
		t.Fatalf("healthz: %d %s", res.Code, res.Body)
	}
	if res := env.do(http.MethodGet, "/readyz", "", nil); res.Code != http.StatusOK {
		t.Fatalf("readyz: %d", res.Code)
	}
	if res := env.do(http.MethodGet, "/metrics", "", nil); res.Code != http.StatusOK {
		t.Fatalf("metrics: %d", res.Code)
	}
}

func TestReadinessFailure(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected missing dependency error")
	}

	a := &API{ready: pingFunc(func(context.Context) error { return errors.New("down") })}
	rec := httptest.NewRecorder()
	a.Ready(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
