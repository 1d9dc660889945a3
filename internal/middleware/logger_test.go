package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel zapcore.Level
	}{
		{http.StatusOK, zapcore.DebugLevel},
		{http.StatusConflict, zapcore.WarnLevel},
		{http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)

			r := gin.New()
			r.Use(RequestLogger(zap.New(core)))
			r.GET("/analysis", func(c *gin.Context) { c.Status(tt.status) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analysis", nil))

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("expected level %s, got %s", tt.wantLevel, entries[0].Level)
			}
			fields := entries[0].ContextMap()
			if fields["path"] != "/analysis" {
				t.Errorf("expected route path, got %v", fields["path"])
			}
			if fields["status"] != int64(tt.status) {
				t.Errorf("expected status %d, got %v", tt.status, fields["status"])
			}
		})
	}
}
