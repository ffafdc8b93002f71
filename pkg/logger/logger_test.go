package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidsparrow/internal/model"

	"github.com/gin-gonic/gin"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	if err := Init(&model.LoggingConfig{Level: "debug", FilePath: path}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer func() { Logger = nil }()

	LogInfo("hello from test")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Errorf("log file = %q", data)
	}
}

func TestHelpersWithoutLogger(t *testing.T) {
	Logger = nil
	LogInfo("ignored")
	LogWarn("ignored")
	LogDebug("ignored")
	LogError("ignored", nil)
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if id := w.Header().Get(RequestIDHeader); !strings.HasPrefix(id, "req_") || w.Body.String() != id {
		t.Errorf("generated id = %q, body = %q", id, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Header().Get(RequestIDHeader) != "caller-1" {
		t.Errorf("caller id not reused: %q", w.Header().Get(RequestIDHeader))
	}
}
