package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/rnprof/capture"
	"github.com/ardnew/rnprof/convert"
	"github.com/ardnew/rnprof/pkg"
)

// List prints the profiles available on the device, newest first.
type List struct {
	Device `embed:""`

	Format string `default:"text" enum:"text,json,yaml" help:"Output format (${enum})." short:"F"`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if l.Package == "" {
		return ErrList.Wrap(pkg.ErrConfig.Wrapf(
			"Please provide an Android package name using the -p or --package option."))
	}

	logger := l.logger()

	bridge, err := l.bridge(logger)
	if err != nil {
		return ErrList.Wrap(err)
	}

	filter, err := l.filter()
	if err != nil {
		return ErrList.Wrap(err)
	}

	p := convert.New(convert.Config{Package: l.Package}, bridge,
		convert.WithFilter(filter),
		convert.WithLogger(logger),
	)

	candidates, err := p.Candidates(ctx)
	if err != nil {
		return ErrList.With(slog.String("package", l.Package)).Wrap(err)
	}

	return writeCandidates(ctx, stdout(ctx), l.Format, candidates)
}

func writeCandidates(ctx context.Context, w io.Writer, format string, candidates []capture.Candidate) error {
	if candidates == nil {
		candidates = []capture.Candidate{}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(candidates, "", "  ")
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		data, err := yaml.MarshalContext(ctx, candidates, yaml.Indent(2))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err
	}

	for _, c := range candidates {
		if _, err := fmt.Fprintln(w, c.Display()); err != nil {
			return err
		}
	}

	return nil
}
