package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/ardnew/rnprof/capture"
	"github.com/ardnew/rnprof/log"
)

// DefaultCommand is the bridge command used when none is configured.
const DefaultCommand = "adb"

var (
	// ErrCommand is returned when the bridge exits unsuccessfully.
	ErrCommand = errors.New("bridge command failed")

	// ErrStderr is returned when a pull succeeds but the bridge reports
	// diagnostics on its error stream.
	ErrStderr = errors.New("bridge reported errors")
)

// WaitDelay bounds how long a cancelled bridge command may hold its output
// pipes open, for example through a child of a wrapper script.
const WaitDelay = time.Second

// noMatch is the diagnostic printed by the device shell when the profile glob
// matches nothing.
const noMatch = "No such file or directory"

// ExecCommand creates the process for a bridge invocation. Tests replace it
// to run a helper process instead of the real bridge.
//
//nolint:gochecknoglobals
var ExecCommand = exec.CommandContext

// Bridge runs commands against one device.
type Bridge struct {
	argv   []string
	serial string
	logger log.Logger
}

// Option configures a Bridge.
type Option func(Bridge) Bridge

// WithSerial targets the device with the given serial number.
func WithSerial(serial string) Option {
	return func(b Bridge) Bridge {
		b.serial = serial

		return b
	}
}

// WithLogger sets the logger for command tracing.
func WithLogger(logger log.Logger) Option {
	return func(b Bridge) Bridge {
		b.logger = logger

		return b
	}
}

// New returns a Bridge for the given command line, for example "adb" or
// "adb -H 10.0.0.2". The line is split with shell quoting rules, and a bare
// executable name is searched in the Android SDK platform-tools directories
// before $PATH (see [Locate]).
func New(command string, opts ...Option) (*Bridge, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}

	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse bridge command %q: %w", command, err)
	}

	if len(argv) == 0 {
		return nil, fmt.Errorf("parse bridge command %q: empty", command)
	}

	if exe, err := Locate(argv[0]); err == nil {
		argv[0] = exe
	}

	b := Bridge{argv: argv, logger: log.Default()}
	for _, opt := range opts {
		b = opt(b)
	}

	return &b, nil
}

// CacheDir returns the device directory holding an application's profiles.
func CacheDir(packageName string) string {
	return path.Join("/data/user/0", packageName, "cache")
}

// ListCommand returns the argument vector used to list the profiles of
// packageName, newest first. It depends only on its input and the bridge
// configuration.
func (b *Bridge) ListCommand(packageName string) []string {
	glob := path.Join(CacheDir(packageName), "*"+capture.Extension)

	return b.command("shell", "ls -lt "+glob)
}

// PullCommand returns the argument vector used to copy devicePath into
// destDir.
func (b *Bridge) PullCommand(devicePath, destDir string) []string {
	return b.command("pull", devicePath, destDir)
}

// ListProfiles returns the raw listing of the profile files of packageName.
//
// An empty listing is returned without error when the device reports that no
// file matches, so that callers can distinguish "no profiles" from a device
// failure.
func (b *Bridge) ListProfiles(ctx context.Context, packageName string) (string, error) {
	stdout, stderr, err := b.run(ctx, b.ListCommand(packageName))
	if err != nil {
		if strings.Contains(stderr, noMatch) || strings.Contains(stdout, noMatch) {
			b.logger.DebugContext(ctx, "no profiles on device",
				slog.String("package", packageName),
			)

			return "", nil
		}

		return "", err
	}

	// Older bridges report the failed glob on stdout with a zero status.
	if listing, ok := withoutNoMatch(stdout); ok {
		b.logger.DebugContext(ctx, "no profiles on device",
			slog.String("package", packageName),
		)

		return listing, nil
	}

	return stdout, nil
}

// withoutNoMatch removes the no-match diagnostics from a listing and reports
// whether any were found.
func withoutNoMatch(listing string) (string, bool) {
	if !strings.Contains(listing, noMatch) {
		return listing, false
	}

	var kept []string

	for line := range strings.Lines(listing) {
		if !strings.Contains(line, noMatch) {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, ""), true
}

// Pull copies devicePath into destDir and returns the local file path, which
// has the same base name as devicePath.
func (b *Bridge) Pull(ctx context.Context, devicePath, destDir string) (string, error) {
	_, stderr, err := b.run(ctx, b.PullCommand(devicePath, destDir))
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(stderr) != "" {
		return "", fmt.Errorf("%w: %s", ErrStderr, strings.TrimSpace(stderr))
	}

	return filepath.Join(destDir, path.Base(devicePath)), nil
}

func (b *Bridge) command(args ...string) []string {
	argv := make([]string, 0, len(b.argv)+len(args)+2)
	argv = append(argv, b.argv...)

	if b.serial != "" {
		argv = append(argv, "-s", b.serial)
	}

	return append(argv, args...)
}

func (b *Bridge) run(ctx context.Context, argv []string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer

	cmd := ExecCommand(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	cmd.WaitDelay = WaitDelay

	b.logger.TraceContext(ctx, "bridge exec", slog.Any("argv", argv))

	err = cmd.Run()
	stdout, stderr = outBuf.String(), errBuf.String()

	if err != nil {
		line := strings.Join(argv, " ")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stdout, stderr, fmt.Errorf("%w: %s: %w", ErrCommand, line, ctxErr)
		}

		if msg := strings.TrimSpace(stderr); msg != "" {
			return stdout, stderr, fmt.Errorf("%w: %s: %s: %w", ErrCommand, line, msg, err)
		}

		return stdout, stderr, fmt.Errorf("%w: %s: %w", ErrCommand, line, err)
	}

	return stdout, stderr, nil
}
