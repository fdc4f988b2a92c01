package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestStructuredLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airwatch-test", "1.0.0", WarnLevel)
	logger.SetOutput(&buf)

	ctx := context.Background()
	logger.Debug(ctx, "[DEBUG] hidden", Fields{})
	logger.Info(ctx, "[INFO] hidden", Fields{})
	logger.Warn(ctx, "[WARN] shown", Fields{"k": "v"})

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Level != "WARN" || entries[0].Message != "[WARN] shown" {
		t.Errorf("unexpected entry %+v", entries[0])
	}
	if entries[0].Service != "airwatch-test" {
		t.Errorf("Service = %q", entries[0].Service)
	}
}

func TestStructuredLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airwatch-test", "1.0.0", InfoLevel)
	logger.SetOutput(&buf)

	ctx := context.Background()
	logger.Debug(ctx, "[DEBUG] hidden", Fields{})
	logger.SetLevel(DebugLevel)
	logger.Debug(ctx, "[DEBUG] shown", Fields{})

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 || entries[0].Message != "[DEBUG] shown" {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestStructuredLogger_ContextAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airwatch-test", "1.0.0", DebugLevel)
	logger.SetOutput(&buf)

	ctx := WithDataset(WithRequestID(context.Background(), "req-42"), "AQI_fill.csv")
	logger.Error(ctx, "[LOAD_ERROR] failed", Fields{"row": 3}, errors.New("boom"))

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.RequestID != "req-42" {
		t.Errorf("RequestID = %q, want req-42", e.RequestID)
	}
	if e.Dataset != "AQI_fill.csv" {
		t.Errorf("Dataset = %q", e.Dataset)
	}
	if e.Error != "boom" {
		t.Errorf("Error = %q, want boom", e.Error)
	}
	if e.Line == 0 || e.Function == "" {
		t.Error("expected caller information on error entries")
	}
}

func TestContextLogger_MergeFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructuredLogger("airwatch-test", "1.0.0", DebugLevel)
	logger.SetOutput(&buf)

	scoped := logger.WithFields(Fields{"flow": "monitoring", "stage": "init"})
	scoped.Info(context.Background(), "[FLOW] step", Fields{"stage": "hourly"})

	entries := decodeEntries(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Fields["flow"] != "monitoring" || entries[0].Fields["stage"] != "hourly" {
		t.Errorf("Fields = %v", entries[0].Fields)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"":        InfoLevel,
		"chatty":  InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	logger.Error(context.Background(), "[NOP] discarded", Fields{}, errors.New("x"))
}
