package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"gitlab.com/paramountdax-exchange/affiliate_api/actions"
	"gitlab.com/paramountdax-exchange/affiliate_api/config"
	"gitlab.com/paramountdax-exchange/affiliate_api/service"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{}
	cfg.Server.API.WebhookSecret = "store-secret"
	cfg.Server.RateLimit.Public = "100-M"
	return NewRouter(cfg, actions.NewActions(cfg, service.NewService(cfg, nil)))
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		code   int
	}{
		{"Ping", http.MethodGet, "/ping", http.StatusOK},
		{"Unknown route", http.MethodGet, "/markets", http.StatusNotFound},
		{"Wrong method", http.MethodPatch, "/links", http.StatusMethodNotAllowed},
		{"Profile requires credentials", http.MethodGet, "/profile", http.StatusUnauthorized},
		{"Links require credentials", http.MethodPost, "/links", http.StatusUnauthorized},
		{"Dashboard requires credentials", http.MethodGet, "/analytics/dashboard", http.StatusUnauthorized},
		{"Admin requires credentials", http.MethodGet, "/admin/payouts?action=pending", http.StatusUnauthorized},
		{"Statement requires credentials", http.MethodGet, "/admin/payouts/statement?id=1", http.StatusUnauthorized},
		{"Conversions require the webhook secret", http.MethodPost, "/track/conversion", http.StatusUnauthorized},
	}
	r := testRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, w.Code, tt.code)
		})
	}
}

func TestCORSAllowsKeyHeaders(t *testing.T) {
	r := testRouter()
	req := httptest.NewRequest(http.MethodOptions, "/links", nil)
	req.Header.Set("Origin", "https://partners.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "X-Api-Key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, w.Header().Get("Access-Control-Allow-Origin"), "*")
	assert.Equal(t, strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "X-Api-Key"), true)
}
