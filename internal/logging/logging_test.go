// ABOUTME: Tests for logger construction.
// ABOUTME: Checks level parsing, format selection and JSON output shape.
package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("", FormatAuto, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", log.GetLevel())
	}

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info written at warn level: %s", buf.String())
	}
}

func TestNewJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", FormatJSON, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Debug().Str("child_id", "u1-Budi-L").Msg("recorded")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if line["message"] != "recorded" || line["child_id"] != "u1-Budi-L" || line["level"] != "debug" {
		t.Errorf("line = %v", line)
	}
	if _, ok := line["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestNewConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", FormatConsole, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") || strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected console output, got %q", buf.String())
	}
}

func TestNewAutoOnBufferIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log, _ := New("info", FormatAuto, &buf)
	log.Info().Msg("x")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("expected JSON for non-terminal writer, got %q", buf.String())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	if _, err := New("loud", FormatJSON, &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad format")
	}
}
