package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCORSWithConfig(t *testing.T) {
	tests := []struct {
		name            string
		cfg             CORSConfig
		method          string
		origin          string
		wantStatus      int
		wantOrigin      string
		wantCredentials string
	}{
		{
			name:       "empty whitelist sets no headers",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodGet,
			origin:     "http://malicious.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "same-origin request passes",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "preflight with empty whitelist",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodOptions,
			origin:     "http://some-origin.com",
			wantStatus: http.StatusNoContent,
		},
		{
			name:            "allowed origin",
			cfg:             CORSConfig{AllowOrigins: []string{"http://localhost:3000"}, AllowCredentials: true},
			method:          http.MethodGet,
			origin:          "http://localhost:3000",
			wantStatus:      http.StatusOK,
			wantOrigin:      "http://localhost:3000",
			wantCredentials: "true",
		},
		{
			name:       "origin not in whitelist",
			cfg:        CORSConfig{AllowOrigins: []string{"http://allowed.com"}},
			method:     http.MethodGet,
			origin:     "http://not-allowed.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard never sends credentials",
			cfg:        CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true},
			method:     http.MethodGet,
			origin:     "http://site.example",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:       "preflight for allowed origin",
			cfg:        CORSConfig{AllowOrigins: []string{"http://site.example"}, AllowMethods: []string{"GET", "POST"}},
			method:     http.MethodOptions,
			origin:     "http://site.example",
			wantStatus: http.StatusNoContent,
			wantOrigin: "http://site.example",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			corsRouter(tt.cfg).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSWithConfig_Headers(t *testing.T) {
	cfg := CORSConfig{
		AllowOrigins:  []string{"http://site.example"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        time.Hour,
	}
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://site.example")
	w := httptest.NewRecorder()
	corsRouter(cfg).ServeHTTP(w, req)

	assert.Equal(t, "GET, POST", w.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("generates an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("keeps client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "site-office-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "site-office-42", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "site-office-42", w.Body.String())
	})

	t.Run("replaces oversized client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", MaxRequestIDLength+1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestSecure(t *testing.T) {
	router := gin.New()
	router.Use(Secure())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}
