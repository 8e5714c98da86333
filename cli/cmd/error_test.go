package cmd

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/ardnew/rnprof/pkg"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{NewError("a"), "a"},
		{NewError("a").Wrap(errors.New("b")), "a: b"},
		{NewError("").Wrap(errors.New("b")), "b"},
		{NewError(""), ""},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestError_IsThroughWrapAndWith(t *testing.T) {
	err := ErrConvert.
		With(slog.String("package", "p")).
		Wrap(pkg.ErrDevice.Wrapf("adb: no devices"))

	if !errors.Is(err, ErrConvert) {
		t.Error("expected ErrConvert")
	}

	if errors.Is(err, ErrList) {
		t.Error("unexpected ErrList")
	}

	if !errors.Is(err, pkg.ErrDevice) {
		t.Error("expected wrapped pkg.ErrDevice")
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrList.With(slog.String("package", "p")).Wrap(errors.New("offline"))

	attrs := err.LogValue().Group()
	if len(attrs) != 3 {
		t.Fatalf("got %d attrs, want 3: %v", len(attrs), attrs)
	}

	if attrs[0].Value.String() != "list profiles" || attrs[1].Value.String() != "offline" ||
		attrs[2].Key != "package" {
		t.Errorf("unexpected attrs: %v", attrs)
	}
}
