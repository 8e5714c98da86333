package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"
)

// ErrCommandOutput is returned when an external transformer does not print a
// JSON array.
var ErrCommandOutput = errors.New("transformer output is not a JSON array")

// ExecCommand creates the process for an external transformer.
//
//nolint:gochecknoglobals
var ExecCommand = exec.CommandContext

// WaitDelay bounds how long a cancelled transformer may hold its output
// pipes open.
const WaitDelay = time.Second

// Command runs an external transformer. The profile, source map and bundle
// paths are appended to its arguments, in that order, and its standard output
// must be a JSON array of trace events.
type Command struct {
	argv []string
}

// NewCommand parses a command line with shell quoting rules.
func NewCommand(line string) (*Command, error) {
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse transformer command %q: %w", line, err)
	}

	if len(argv) == 0 {
		return nil, fmt.Errorf("parse transformer command %q: empty", line)
	}

	return &Command{argv: argv}, nil
}

// Args returns the full argument vector for in.
func (c *Command) Args(in Inputs) []string {
	return append(append([]string{}, c.argv...), in.Profile, in.SourceMap, in.Bundle)
}

// Transform implements [Transformer].
func (c *Command) Transform(ctx context.Context, in Inputs) (Trace, error) {
	argv := c.Args(in)

	var stdout, stderr bytes.Buffer

	cmd := ExecCommand(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = WaitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", argv[0], ctxErr)
		}

		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %s: %w", argv[0], msg, err)
		}

		return nil, fmt.Errorf("%s: %w", argv[0], err)
	}

	var t Trace
	if err := json.Unmarshal(stdout.Bytes(), &t); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCommandOutput, argv[0], err)
	}

	if t == nil {
		return nil, fmt.Errorf("%w: %s: null", ErrCommandOutput, argv[0])
	}

	return t, nil
}
