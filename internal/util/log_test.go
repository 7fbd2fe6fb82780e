package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerToRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "warn")
	log.Info().Msg("hidden")
	log.Warn().Msg("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info suppressed at warn level, got %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("expected warn emitted, got %s", out)
	}
}

func TestNewLoggerToBadLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	log := NewLoggerTo(&buf, "nonsense")
	log.Info().Msg("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Fatalf("expected fallback to info level, got %s", buf.String())
	}
}
