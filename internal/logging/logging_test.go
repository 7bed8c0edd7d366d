package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

// captureLogOutput redirects the global logger to a JSON buffer while f
// runs.
func captureLogOutput(f func()) string {
	var buf bytes.Buffer
	old := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	defer func() { defaultLogger = old }()
	f()
	return buf.String()
}

func decodeLine(t *testing.T, out string) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &m); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, out)
	}
	return m
}

func TestInitLoggerTo(t *testing.T) {
	defer InitLogger(LevelInfo, FormatAuto)

	tests := []struct {
		name   string
		level  Level
		format Format
		logFn  func()
		want   string
		absent bool
	}{
		{"json info", LevelInfo, FormatJSON, func() { Info("hello") }, `"msg":"hello"`, false},
		{"text info", LevelInfo, FormatText, func() { Info("hello") }, "msg=hello", false},
		{"debug filtered at warn", LevelWarn, FormatJSON, func() { Debug("quiet") }, "quiet", true},
		{"error passes at error", LevelError, FormatText, func() { Error("loud") }, "msg=loud", false},
		{"unknown level falls back to info", Level(42), FormatJSON, func() { Info("x") }, `"msg":"x"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitLoggerTo(&buf, tt.level, tt.format)
			tt.logFn()
			got := buf.String()
			if tt.absent == strings.Contains(got, tt.want) {
				t.Errorf("output %q, want contains(%q) = %v", got, tt.want, !tt.absent)
			}
		})
	}
}

func TestInitLoggerTimestamp(t *testing.T) {
	defer InitLogger(LevelInfo, FormatAuto)

	var buf bytes.Buffer
	InitLoggerTo(&buf, LevelInfo, FormatJSON)
	Info("stamp")

	m := decodeLine(t, buf.String())
	ts, _ := m["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestInitLoggerAuto(t *testing.T) {
	defer func(orig func(*os.File) bool) {
		isTerminal = orig
		InitLogger(LevelInfo, FormatAuto)
	}(isTerminal)

	for _, tty := range []bool{true, false} {
		isTerminal = func(*os.File) bool { return tty }
		InitLogger(LevelInfo, FormatAuto)
		_, isText := GetLogger().Handler().(*slog.TextHandler)
		if isText != tty {
			t.Errorf("terminal=%v: text handler = %v", tty, isText)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo,
		"warn": LevelWarn, "warning": LevelWarn, " error ": LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(verbose) should fail")
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{"json": FormatJSON, "Text": FormatText, "auto": FormatAuto, "": FormatAuto}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID(empty) = %q", got)
	}

	out := captureLogOutput(func() { InfoContext(ctx, "with id") })
	if m := decodeLine(t, out); m["request_id"] != "req-1" {
		t.Errorf("request_id = %v", m["request_id"])
	}
}

func TestEventHelpers(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")

	tests := []struct {
		name   string
		log    func()
		msg    string
		level  string
		fields map[string]any
	}{
		{
			name:   "lexicon loaded",
			log:    func() { LexiconLoaded("embedded:hi", 66, "ff00") },
			msg:    "lexicon_loaded",
			level:  "INFO",
			fields: map[string]any{"source": "embedded:hi", "entries": float64(66), "fingerprint": "ff00"},
		},
		{
			name:   "phonemise failed",
			log:    func() { PhonemiseFailed(ctx, "का", errors.New("boom"), "stage", "finalize") },
			msg:    "phonemise_failed",
			level:  "ERROR",
			fields: map[string]any{"word": "का", "error": "boom", "stage": "finalize", "request_id": "abc"},
		},
		{
			name:   "batch summary",
			log:    func() { BatchSummary(10, 1, 1500*time.Millisecond) },
			msg:    "batch_summary",
			level:  "INFO",
			fields: map[string]any{"words": float64(10), "failed": float64(1), "duration_ms": float64(1500)},
		},
		{
			name:   "http request",
			log:    func() { HTTPRequestContext(ctx, "GET", "/health", "1.2.3.4", 200, time.Millisecond) },
			msg:    "http_request",
			level:  "INFO",
			fields: map[string]any{"method": "GET", "path": "/health", "status_code": float64(200), "request_id": "abc"},
		},
		{
			name:   "websocket event",
			log:    func() { WebSocketEvent("client_connected", 3) },
			msg:    "websocket_event",
			level:  "INFO",
			fields: map[string]any{"event": "client_connected", "client_count": float64(3)},
		},
		{
			name:   "server startup",
			log:    func() { ServerStartup("api", "http", 8080) },
			msg:    "server_startup",
			level:  "INFO",
			fields: map[string]any{"server_type": "api", "port": float64(8080)},
		},
		{
			name:   "security event",
			log:    func() { SecurityEvent("origin_rejected", "websocket", "origin", "evil.example") },
			msg:    "security_event",
			level:  "WARN",
			fields: map[string]any{"component": "websocket", "origin": "evil.example"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeLine(t, captureLogOutput(tt.log))
			if m["msg"] != tt.msg || m["level"] != tt.level {
				t.Errorf("msg/level = %v/%v, want %s/%s", m["msg"], m["level"], tt.msg, tt.level)
			}
			for k, want := range tt.fields {
				if m[k] != want {
					t.Errorf("%s = %v, want %v", k, m[k], want)
				}
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	defer func(orig func() string) { newRequestID = orig }(newRequestID)
	newRequestID = func() string { return "generated" }

	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen != "generated" || rec.Header().Get("X-Request-ID") != "generated" {
		t.Errorf("generated id: context %q, header %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "from-client")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "from-client" {
		t.Errorf("client id not propagated: %q", seen)
	}
}

func TestCombinedMiddleware(t *testing.T) {
	h := CombinedMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK) // ignored
		_, _ = w.Write([]byte("short and stout"))
	}))

	var rec *httptest.ResponseRecorder
	out := captureLogOutput(func() {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/phonemise", nil))
	})

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	m := decodeLine(t, out)
	if m["status_code"] != float64(http.StatusTeapot) || m["path"] != "/phonemise" {
		t.Errorf("logged %v", m)
	}
	if m["request_id"] == "" || m["request_id"] == nil {
		t.Error("request id missing from access log")
	}
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	if _, err := rw.Write([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if rw.statusCode != http.StatusOK || !rw.written {
		t.Errorf("statusCode = %d written = %v", rw.statusCode, rw.written)
	}
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder()}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("Hijack on a recorder should fail")
	}
}
