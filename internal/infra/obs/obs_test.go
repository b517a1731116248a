package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "loud": slog.LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v", in, got)
		}
	}
}

func TestNewLoggerJSONOutsideDev(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "production", "info").Info("hello", "k", "v")
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON log line, got %q", buf.String())
	}
	if line["msg"] != "hello" || line["k"] != "v" {
		t.Fatalf("line = %v", line)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	mw := Middleware{Logger: slog.New(slog.NewTextHandler(&buf, nil))}
	r := gin.New()
	r.Use(mw.RequestID(), mw.LoggerMiddleware())
	var seen string
	r.GET("/x", func(c *gin.Context) {
		seen = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)

	if seen != "req-42" || w.Header().Get(RequestIDHeader) != "req-42" {
		t.Fatalf("request id = %q / %q", seen, w.Header().Get(RequestIDHeader))
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "req-42") {
		t.Fatalf("access log = %s", buf.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatal("request id not generated")
	}
}

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := HealthHandlers{
		Checks: map[string]Check{
			"mongo": func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("dial tcp: refused") },
		},
		Queries: func() []string { return []string{"a", "b"} },
	}
	r := gin.New()
	r.GET("/readyz", h.Readyz)
	r.GET("/livez", h.Livez)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "redis") {
		t.Fatalf("readyz = %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("livez = %d", w.Code)
	}
}
