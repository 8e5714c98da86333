package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPackage_LogFunctions_UseDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	original := SetDefault(Make(&buf, WithLevel(LevelDebug), WithFormat(FormatJSON)))
	defer SetDefault(original)

	tests := []struct {
		name  string
		fn    func(string, ...slog.Attr)
		level string
	}{
		{"Debug", Debug, "DEBUG"},
		{"Info", Info, "INFO"},
		{"Warn", Warn, "WARN"},
		{"Error", Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			out := buf.String()
			if !strings.Contains(out, `"level":"`+tt.level+`"`) {
				t.Errorf("expected level %s in %s", tt.level, out)
			}

			if !strings.Contains(out, `"key":"value"`) {
				t.Errorf("expected attribute in %s", out)
			}
		})
	}
}

func TestPackage_Config_UpdatesDefaultLogger(t *testing.T) {
	var buf bytes.Buffer

	original := SetDefault(Make(&buf, WithFormat(FormatJSON)))
	defer SetDefault(original)

	DebugContext(context.Background(), "hidden")

	if buf.Len() != 0 {
		t.Fatalf("expected debug to be filtered, got %q", buf.String())
	}

	Config(WithLevel(LevelTrace))
	TraceContext(context.Background(), "visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected trace output after Config, got %q", buf.String())
	}
}
