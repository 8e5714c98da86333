package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type valuer struct{}

func (valuer) LogValue() slog.Value {
	return slog.GroupValue(slog.String("error", "pull failed"), slog.Int("code", 1))
}

func TestPrettyHandler_WritesAttributes(t *testing.T) {
	var buf bytes.Buffer

	logger := Make(&buf, WithPretty(true), WithTimeLayout("none")).
		With(slog.String("package", "com.example.app"))

	logger.Info("profile pulled",
		slog.String("path", "/tmp/trace 1.cpuprofile"),
		slog.Any("cause", errors.New("boom")),
		slog.Any("detail", valuer{}),
	)

	out := buf.String()

	for _, want := range []string{
		"profile pulled",
		"package=",
		"com.example.app",
		"path=",
		`"/tmp/trace 1.cpuprofile"`,
		"cause=",
		"detail.error=",
		"detail.code=",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}

	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected a single line, got %q", out)
	}
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer

	h := newPrettyHandler(&buf, &slog.HandlerOptions{})
	slog.New(h).WithGroup("fetch").Info("done", slog.Int("bytes", 10))

	if !strings.Contains(buf.String(), "fetch.bytes=") {
		t.Errorf("expected grouped key in %q", buf.String())
	}
}
