package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// capture points the global logger at a JSON buffer for one test.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := Init(WithFormat("json"), WithOutput(&buf)); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	t.Cleanup(func() {
		if err := Init(); err != nil {
			t.Errorf("failed to reset logger: %v", err)
		}
	})
	return &buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &rec); err != nil {
		t.Fatalf("decode log line %q: %v", lines[len(lines)-1], err)
	}
	return rec
}

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
	Get().Info(context.Background(), "test message", String("k", "v"))

	if err := Init(WithFormat("xml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestLoggerFields(t *testing.T) {
	buf := capture(t)

	Get().Named("scoring").Info(context.Background(), "aggregated",
		Float64("score", 3.5), Bool("cached", true), Duration("took", time.Millisecond),
		Error(errors.New("boom")))

	rec := lastLine(t, buf)
	if rec["msg"] != "aggregated" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}
	if rec["component"] != "scoring" {
		t.Fatalf("expected component scoring, got %v", rec["component"])
	}
	if rec["score"] != 3.5 || rec["cached"] != true {
		t.Fatalf("missing fields in %v", rec)
	}
	if rec["error"] != "boom" {
		t.Fatalf("errors should log their message, got %v", rec["error"])
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Fatalf("source should point at the caller, got %q", src)
	}
}

func TestLoggerNamedNests(t *testing.T) {
	buf := capture(t)

	Named("service").Named("worker").With(String("pool", "recompute")).Warn(context.Background(), "slow job")

	rec := lastLine(t, buf)
	if rec["component"] != "service.worker" {
		t.Fatalf("expected nested component, got %v", rec["component"])
	}
	if rec["pool"] != "recompute" {
		t.Fatalf("expected With field, got %v", rec["pool"])
	}
}

func TestContextFields(t *testing.T) {
	buf := capture(t)

	ctx := ContextWith(context.Background(), String("job_id", "j-1"))
	ctx = ContextWith(ctx, String("program_id", "p-1"))
	if got := FieldsFrom(ctx); len(got) != 2 {
		t.Fatalf("expected 2 context fields, got %d", len(got))
	}
	if ContextWith(ctx) != ctx {
		t.Fatal("adding no fields should return ctx unchanged")
	}

	Get().Error(ctx, "job failed", Int("attempt", 1))

	rec := lastLine(t, buf)
	if rec["job_id"] != "j-1" || rec["program_id"] != "p-1" {
		t.Fatalf("context fields missing from %v", rec)
	}
	if rec["attempt"] != float64(1) {
		t.Fatalf("call fields missing from %v", rec)
	}
}

func TestLevels(t *testing.T) {
	buf := capture(t)

	Get().Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info, got %q", buf.String())
	}

	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Debug(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug should pass after SetLevelString, got %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
