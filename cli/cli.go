package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/rnprof/cli/cmd"
	"github.com/ardnew/rnprof/device"
	"github.com/ardnew/rnprof/fetch"
	"github.com/ardnew/rnprof/pkg"
)

// configFile is the base name of the configuration file.
const configFile = "config.yaml"

// Exit codes returned by [ExitCode].
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInterrupted = 130
)

// CLI is the top-level command-line interface for rnprof.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Convert cmd.Convert `cmd:"" default:"withargs" help:"Pull a profile from the device and convert it to a trace"`
	List    cmd.List    `cmd:""                    help:"List profiles available on the device"`
	Init    cmd.Init    `cmd:""                    help:"Initialize configuration file"`
}

// Run executes the rnprof CLI with the given context and arguments.
// The exit function is called by the parser for --help and usage errors.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configPath := filepath.Join(pkg.ConfigDir(), configFile)

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configPath,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.ScratchIdentifier: filepath.Join(pkg.CacheDir(), cmd.ScratchIdentifier),
		"adb":                 device.DefaultCommand,
		"server":              fetch.DefaultServer,
		"entry":               fetch.DefaultEntry,
		"platform":            fetch.DefaultPlatform,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Logger flags are applied before parsing so that parse errors and
	// configuration loading are logged as requested.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath+".json"),
		kong.Configuration(loadYAML, configPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// ExitCode returns the process exit status for an error returned by [Run].
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	return nil
}
