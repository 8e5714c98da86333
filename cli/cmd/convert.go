package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/rnprof/cli/cmd/prompt"
	"github.com/ardnew/rnprof/convert"
	"github.com/ardnew/rnprof/fetch"
	"github.com/ardnew/rnprof/log"
	"github.com/ardnew/rnprof/pkg"
	"github.com/ardnew/rnprof/trace"
)

// progressStep is the interval of download progress messages.
const progressStep = 1 << 20

// Convert selects a device profile and writes it as a converted trace.
type Convert struct {
	Device `embed:""`

	App    string `help:"Application name registered with the development server." short:"a"`
	Output string `help:"Output directory."                                          short:"o" type:"path"`

	Server   string `default:"${server}"   help:"Development server base URL."`
	Entry    string `default:"${entry}"    help:"Entry module of the bundle."`
	Platform string `default:"${platform}" help:"Bundle platform."`

	Scratch      string `default:"${scratch}" help:"Directory for downloaded artifacts." type:"path"`
	TransformCmd string `help:"External transformer command; receives the profile, source map and bundle paths." name:"transform-cmd" placeholder:"CMD"`
	Latest       bool   `help:"Select the newest profile without prompting."`
}

func (c *Convert) config() convert.Config {
	return convert.Config{
		Package: c.Package,
		App:     c.App,
		Output:  c.Output,
		Scratch: c.Scratch,
		Endpoints: fetch.Endpoints{
			Server:   c.Server,
			Entry:    c.Entry,
			Platform: c.Platform,
		},
	}
}

// Run executes the convert command.
func (c *Convert) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cfg := c.config()
	if err := cfg.Validate(); err != nil {
		return ErrConvert.Wrap(err)
	}

	logger := c.logger()

	opts, err := c.options(ctx, logger)
	if err != nil {
		return ErrConvert.Wrap(err)
	}

	bridge, err := c.bridge(logger)
	if err != nil {
		return ErrConvert.Wrap(err)
	}

	out, err := convert.New(cfg, bridge, opts...).Run(ctx)
	if err != nil {
		return ErrConvert.
			With(slog.String("package", c.Package), slog.String("app", c.App)).
			Wrap(err)
	}

	_, err = fmt.Fprintln(stdout(ctx), out)

	return err
}

func (c *Convert) options(ctx context.Context, logger log.Logger) ([]convert.Option, error) {
	filter, err := c.filter()
	if err != nil {
		return nil, err
	}

	opts := []convert.Option{
		convert.WithLogger(logger),
		convert.WithFilter(filter),
		convert.WithDownloader(fetch.NewClient(
			fetch.WithLogger(logger),
			fetch.WithProgress(fetch.LogProgress(ctx, logger, "artifact", progressStep)),
		)),
	}

	if c.Latest {
		opts = append(opts, convert.WithSelector(convert.SelectLatest))
	} else {
		opts = append(opts, convert.WithSelector(prompt.New(prompt.WithLogger(logger))))
	}

	if c.TransformCmd != "" {
		tc, err := trace.NewCommand(c.TransformCmd)
		if err != nil {
			return nil, pkg.ErrConfig.Wrap(err)
		}

		opts = append(opts, convert.WithTransformer(tc))
	} else {
		opts = append(opts, convert.WithTransformer(trace.NewHermes(trace.WithLogger(logger))))
	}

	return opts, nil
}
