package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(cfg CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(cfg))
	r.POST("/api/v1/scrapes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestCORSPreflight(t *testing.T) {
	router := newCORSRouter(CORSConfig{AllowAllOrigins: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/scrapes", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty preflight body, got %q", w.Body.String())
	}

	headers := w.Header().Get("Access-Control-Allow-Headers")
	for _, required := range []string{"Content-Type", "Authorization", "X-Client-Info", "Apikey"} {
		if !strings.Contains(headers, required) {
			t.Errorf("allow-headers missing %q: %q", required, headers)
		}
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	methods := w.Header().Get("Access-Control-Allow-Methods")
	if !strings.Contains(methods, "OPTIONS") || !strings.Contains(methods, "POST") {
		t.Errorf("unexpected allow-methods %q", methods)
	}
}

func TestCORSActualRequest(t *testing.T) {
	router := newCORSRouter(CORSConfig{AllowAllOrigins: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrapes", nil)
	req.Header.Set("Origin", "https://app.example")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected handler to run, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin on actual request, got %q", got)
	}
}

func TestCORSRestrictedOrigins(t *testing.T) {
	cfg := CORSConfig{AllowedOrigins: []string{"https://allowed.example"}}
	router := newCORSRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scrapes", nil)
	req.Header.Set("Origin", "https://allowed.example")
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://allowed.example" {
		t.Errorf("expected origin to be echoed, got %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/scrapes", nil)
	req.Header.Set("Origin", "https://other.example")
	router.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers for disallowed origin, got %q", got)
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		cfg    CORSConfig
		want   bool
	}{
		{name: "allow all", origin: "https://x.example", cfg: CORSConfig{AllowAllOrigins: true}, want: true},
		{name: "listed", origin: "https://x.example", cfg: CORSConfig{AllowedOrigins: []string{"https://x.example"}}, want: true},
		{name: "case insensitive", origin: "https://X.example", cfg: CORSConfig{AllowedOrigins: []string{"https://x.example"}}, want: true},
		{name: "not listed", origin: "https://y.example", cfg: CORSConfig{AllowedOrigins: []string{"https://x.example"}}, want: false},
		{name: "wildcard entry", origin: "https://y.example", cfg: CORSConfig{AllowedOrigins: []string{"*"}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOriginAllowed(tt.origin, tt.cfg); got != tt.want {
				t.Errorf("IsOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
