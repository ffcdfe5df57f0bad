package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSignAndRequireAuth(t *testing.T) {
	SetSecret("test-secret")
	defer SetSecret("")

	tok, err := SignToken("u1", "a@example.com", "user", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	var gotUID string
	h := WithAuth(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID, _ = UserIDFromContext(r.Context())
		if c, ok := ClaimsFromContext(r.Context()); !ok || c.Role != "user" {
			t.Errorf("missing claims: %+v", c)
		}
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || gotUID != "u1" {
		t.Fatalf("expected authorized request, got %d uid=%q", rr.Code, gotUID)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}

func TestRejectsForeignAndExpiredTokens(t *testing.T) {
	SetSecret("secret-a")
	foreign, _ := SignToken("u1", "a@example.com", "user", time.Hour)
	expired, _ := SignToken("u1", "a@example.com", "user", -time.Minute)
	SetSecret("secret-b")
	defer SetSecret("")

	h := WithAuth(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))
	for name, tok := range map[string]string{"foreign": foreign, "expired": expired, "garbage": "not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s token: expected 401, got %d", name, rr.Code)
		}
	}
}

func TestLocaleMiddleware(t *testing.T) {
	var got string
	h := LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/health?lang=es-MX", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "es" {
		t.Fatalf("want es from query, got %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Accept-Language", "fr-FR,es;q=0.8")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "es" {
		t.Fatalf("want es from header, got %s", got)
	}

	if LocaleFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()) != "en" {
		t.Fatalf("expected en default")
	}
}

func TestHeaderMiddlewares(t *testing.T) {
	h := CORS(nil)(SecureHeaders(NoStore(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTeapot {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	for _, k := range []string{"Access-Control-Allow-Origin", "X-Content-Type-Options", "Cache-Control"} {
		if rr.Header().Get(k) == "" {
			t.Fatalf("missing header %s", k)
		}
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/workouts", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
}

func TestCORSAllowList(t *testing.T) {
	h := CORS([]string{"https://app.example.com/, https://admin.example.com"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/workouts/w1", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected echoed origin, got %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,PUT,DELETE,OPTIONS" {
		t.Fatalf("unexpected methods %q", got)
	}
	if rr.Header().Get("Access-Control-Max-Age") == "" {
		t.Fatalf("missing max age on preflight")
	}

	req = httptest.NewRequest(http.MethodOptions, "/api/workouts", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected forbidden preflight without CORS headers, got %d %q", rr.Code, rr.Header().Get("Access-Control-Allow-Origin"))
	}

	// same-origin and non-browser calls carry no Origin and pass through
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("expected plain pass-through, got %d", rr.Code)
	}
}

func TestNoStoreVaries(t *testing.T) {
	h := CORS(nil)(NoStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	if got := rr.Header().Get("Cache-Control"); got != "no-store, private" {
		t.Fatalf("unexpected cache control %q", got)
	}
	vary := strings.Join(rr.Header().Values("Vary"), ",")
	for _, v := range []string{"Origin", "Authorization", "Accept-Language"} {
		if !strings.Contains(vary, v) {
			t.Fatalf("Vary %q missing %s", vary, v)
		}
	}
}

func TestLocaleContentLanguage(t *testing.T) {
	h := LocaleMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health?lang=xx", nil))
	if got := rr.Header().Get("Content-Language"); got != "en" {
		t.Fatalf("expected en fallback, got %q", got)
	}
	if got := LocaleFromContext(WithLocale(context.Background(), "es")); got != "es" {
		t.Fatalf("expected es, got %q", got)
	}
}
