package logger

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAccessMiddlewareRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := AccessMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/describe?location=7", nil))
	out := buf.String()
	for _, want := range []string{"http_access", "status=404", "bytes=7", "query=\"location=7\""} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}
}

func TestStageDone(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	s := StartStage(l, "height")
	if d := s.Done("points", 12); d < 0 {
		t.Fatalf("negative duration %v", d)
	}
	out := buf.String()
	if !strings.Contains(out, "stage_done") || !strings.Contains(out, "stage=height") || !strings.Contains(out, "points=12") {
		t.Fatalf("unexpected log %q", out)
	}
}

func TestNewTagsComponentAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Format: "json", Component: "planetd", Out: &buf})
	l.Info("dropped")
	l.Warn("kept", "world", 3)
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record passed warn level: %q", out)
	}
	for _, want := range []string{`"msg":"kept"`, `"component":"planetd"`, `"world":3`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %s", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestUseReplacesProcessLogger(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Use(prev) })
	var buf bytes.Buffer
	Use(New(Config{Out: &buf, Component: "planet-gen"}))
	StartStage(nil, "climate").Done()
	if out := buf.String(); !strings.Contains(out, "stage=climate") || !strings.Contains(out, "component=planet-gen") {
		t.Fatalf("unexpected log %q", out)
	}
}
