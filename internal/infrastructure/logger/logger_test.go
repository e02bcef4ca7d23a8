package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewRespectsLevel(t *testing.T) {
	log := New(Config{Level: "warn", Format: "json"})

	if log.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", log.GetLevel())
	}
}

func TestNewWithOutputStampsService(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithOutput(Config{Service: "cardledger", Level: "info", Format: "json"}, &buf)
	log.Info().Msg("booting")

	if !strings.Contains(buf.String(), `"service":"cardledger"`) {
		t.Errorf("expected service field on the event, got %s", buf.String())
	}
}

func TestNewWithOutputOmitsEmptyService(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithOutput(Config{Level: "info", Format: "json"}, &buf)
	log.Info().Msg("booting")

	if strings.Contains(buf.String(), `"service"`) {
		t.Errorf("unexpected service field on the event: %s", buf.String())
	}
}
