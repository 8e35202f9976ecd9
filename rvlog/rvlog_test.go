package rvlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerWritesToBuffer(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Info("engine started", "cycles", 0)
	if !strings.Contains(buf.String(), "engine started") {
		t.Errorf("log output = %q, want it to contain the message", buf.String())
	}
}

func TestDebugLevelGatesDebugRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("raw stall", "cycles", 1)
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %q", buf.String())
	}
}

func TestDebugTrueEnablesDebugRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)
	logger.Debug("squash", "count", 3)
	if !strings.Contains(buf.String(), "squash") {
		t.Errorf("debug record missing with debug=true: %q", buf.String())
	}
}

func TestWithAttrsPreservesMutex(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, false)
	h2 := h.WithAttrs(nil)
	if h2.(*Handler).mu != h.mu {
		t.Errorf("WithAttrs produced a handler with a different mutex")
	}
}
