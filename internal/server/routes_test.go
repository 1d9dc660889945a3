package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/market-radar/internal/config"
	"github.com/fleveque/market-radar/internal/model"
	"github.com/fleveque/market-radar/internal/service"
	"github.com/fleveque/market-radar/internal/storage"
)

type idleAnalyzer struct{}

func (idleAnalyzer) Analyze(ctx context.Context, segment string) (*model.AnalysisResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	cfg.Auth.APIKeys = []string{"user-key"}
	cfg.Auth.AdminKeys = []string{"admin-key"}
	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173"}
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100

	db, err := storage.NewDatabase(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	session := service.NewSession(idleAnalyzer{}, time.Second, zap.NewNop())
	t.Cleanup(session.Close)

	return New(cfg, Deps{Session: session, Calls: storage.NewGenerationCallRepository(db)}, zap.NewNop())
}

func TestRoutes_Auth(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		key      string
		wantCode int
	}{
		{"health is public", http.MethodGet, "/healthz", "", http.StatusOK},
		{"analysis needs a key", http.MethodGet, "/api/v1/analysis", "", http.StatusUnauthorized},
		{"analysis with user key", http.MethodGet, "/api/v1/analysis", "user-key", http.StatusOK},
		{"start with user key", http.MethodPost, "/api/v1/analysis", "user-key", http.StatusAccepted},
		{"admin rejects user key", http.MethodGet, "/api/v1/admin/stats", "user-key", http.StatusForbidden},
		{"admin stats", http.MethodGet, "/api/v1/admin/stats", "admin-key", http.StatusOK},
		{"admin calls", http.MethodGet, "/api/v1/admin/calls", "admin-key", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/nope", "user-key", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.method == http.MethodPost {
				body = strings.NewReader(`{"segment":"Gaming Laptops"}`)
			} else {
				body = strings.NewReader("")
			}

			req := httptest.NewRequest(tt.method, tt.path, body)
			req.Header.Set("Content-Type", "application/json")
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d: %s", tt.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestRoutes_CORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analysis", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected allow-origin %q", got)
	}
}
