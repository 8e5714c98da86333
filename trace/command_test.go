package trace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func useHelper(t *testing.T, scenario string) {
	t.Helper()

	orig := ExecCommand
	ExecCommand = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)

		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "TRANSFORM_SCENARIO="+scenario)

		return cmd
	}

	t.Cleanup(func() { ExecCommand = orig })
}

// TestHelperProcess is not a real test. It imitates an external transformer
// when invoked through useHelper.
func TestHelperProcess(*testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}

	args = args[1:]

	switch os.Getenv("TRANSFORM_SCENARIO") {
	case "ok":
		fmt.Printf(`[{"name":%q,"ph":"B"}, {"name": "end", "ph": "E"}]`, args[len(args)-3])
	case "object":
		fmt.Print(`{"traceEvents": []}`)
	case "fail":
		fmt.Fprintln(os.Stderr, "cannot read source map")
		os.Exit(3)
	case "hang":
		time.Sleep(time.Minute)
	}

	os.Exit(0)
}

func TestNewCommand(t *testing.T) {
	c, err := NewCommand(`node "my transformer.js" --compact`)
	if err != nil {
		t.Fatal(err)
	}

	got := c.Args(Inputs{Profile: "p", SourceMap: "m", Bundle: "b"})
	want := []string{"node", "my transformer.js", "--compact", "p", "m", "b"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "   ", `node "open`} {
		if _, err := NewCommand(bad); err == nil {
			t.Errorf("NewCommand(%q): expected error", bad)
		}
	}
}

func TestCommand_Transform(t *testing.T) {
	useHelper(t, "ok")

	c, err := NewCommand("transformer")
	if err != nil {
		t.Fatal(err)
	}

	tr, err := c.Transform(t.Context(), Inputs{Profile: "trace1.cpuprofile", SourceMap: "index.map", Bundle: "index.bundle.js"})
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if len(tr) != 2 {
		t.Fatalf("got %d events, want 2", len(tr))
	}

	if got, want := string(tr[1]), `{"name": "end", "ph": "E"}`; got != want {
		t.Errorf("element not kept verbatim: got %s, want %s", got, want)
	}

	if !strings.Contains(string(tr[0]), "trace1.cpuprofile") {
		t.Errorf("profile path not passed first: %s", tr[0])
	}
}

func TestCommand_Transform_Errors(t *testing.T) {
	t.Run("not an array", func(t *testing.T) {
		useHelper(t, "object")

		c, _ := NewCommand("transformer")
		if _, err := c.Transform(t.Context(), Inputs{}); !errors.Is(err, ErrCommandOutput) {
			t.Errorf("expected ErrCommandOutput, got %v", err)
		}
	})

	t.Run("exit status", func(t *testing.T) {
		useHelper(t, "fail")

		c, _ := NewCommand("transformer")

		_, err := c.Transform(t.Context(), Inputs{})
		if err == nil || !strings.Contains(err.Error(), "cannot read source map") {
			t.Errorf("expected stderr in error, got %v", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		useHelper(t, "hang")

		c, _ := NewCommand("transformer")

		ctx, cancel := context.WithCancel(t.Context())
		time.AfterFunc(100*time.Millisecond, cancel)

		if _, err := c.Transform(ctx, Inputs{}); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
