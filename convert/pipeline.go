package convert

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/rnprof/capture"
	"github.com/ardnew/rnprof/fetch"
	"github.com/ardnew/rnprof/log"
	"github.com/ardnew/rnprof/pkg"
	"github.com/ardnew/rnprof/trace"
)

// Lister lists the profile files of an application on the device.
type Lister interface {
	ListProfiles(ctx context.Context, packageName string) (string, error)
}

// Bridge lists and pulls profile files.
type Bridge interface {
	Lister
	Pull(ctx context.Context, devicePath, destDir string) (string, error)
}

// Selector chooses one candidate.
type Selector interface {
	Select(ctx context.Context, candidates []capture.Candidate) (capture.Candidate, error)
}

// SelectorFunc adapts a function to [Selector].
type SelectorFunc func(ctx context.Context, candidates []capture.Candidate) (capture.Candidate, error)

// Select calls f.
func (f SelectorFunc) Select(ctx context.Context, candidates []capture.Candidate) (capture.Candidate, error) {
	return f(ctx, candidates)
}

// SelectLatest selects the newest candidate without prompting.
//
//nolint:gochecknoglobals
var SelectLatest = SelectorFunc(
	func(_ context.Context, candidates []capture.Candidate) (capture.Candidate, error) {
		if len(candidates) == 0 {
			return capture.Candidate{}, capture.ErrNoCandidates
		}

		return candidates[0], nil
	},
)

// Downloader stores the body of a URL in a local file.
type Downloader interface {
	Download(ctx context.Context, url, destPath string) (int64, error)
}

// Pipeline converts one profile per run.
type Pipeline struct {
	config      Config
	bridge      Bridge
	selector    Selector
	downloader  Downloader
	transformer trace.Transformer
	filter      *capture.Filter
	logger      log.Logger
}

// Option configures a Pipeline.
type Option func(Pipeline) Pipeline

// WithSelector sets how a profile is chosen. The default is [SelectLatest].
func WithSelector(s Selector) Option {
	return func(p Pipeline) Pipeline {
		p.selector = s

		return p
	}
}

// WithDownloader sets the artifact downloader.
func WithDownloader(d Downloader) Option {
	return func(p Pipeline) Pipeline {
		p.downloader = d

		return p
	}
}

// WithTransformer sets the transformer. The default is [trace.Hermes].
func WithTransformer(t trace.Transformer) Option {
	return func(p Pipeline) Pipeline {
		p.transformer = t

		return p
	}
}

// WithFilter restricts the candidates offered for selection.
func WithFilter(f *capture.Filter) Option {
	return func(p Pipeline) Pipeline {
		p.filter = f

		return p
	}
}

// WithLogger sets the logger for stage progress.
func WithLogger(logger log.Logger) Option {
	return func(p Pipeline) Pipeline {
		p.logger = logger

		return p
	}
}

// New returns a Pipeline for cfg using bridge to reach the device.
func New(cfg Config, bridge Bridge, opts ...Option) *Pipeline {
	p := Pipeline{
		config:   cfg,
		bridge:   bridge,
		selector: SelectLatest,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		p = opt(p)
	}

	if p.downloader == nil {
		p.downloader = fetch.NewClient(fetch.WithLogger(p.logger))
	}

	if p.transformer == nil {
		p.transformer = trace.NewHermes(trace.WithLogger(p.logger))
	}

	return &p
}

// Candidates lists, parses and filters the profiles on the device.
func (p *Pipeline) Candidates(ctx context.Context) ([]capture.Candidate, error) {
	raw, err := p.bridge.ListProfiles(ctx, p.config.Package)
	if err != nil {
		return nil, pkg.ErrDevice.Wrap(err)
	}

	candidates, err := capture.ParseListing(raw)
	if err != nil {
		return nil, pkg.ErrSelection.Wrap(err)
	}

	candidates, err = p.filter.Apply(candidates)
	if err != nil {
		return nil, pkg.ErrSelection.Wrap(err)
	}

	p.logger.DebugContext(ctx, "profiles found",
		slog.String("package", p.config.Package),
		slog.Int("count", len(candidates)),
		slog.String("filter", p.filter.String()),
	)

	return candidates, nil
}

// Run executes every stage and returns the path of the written trace.
func (p *Pipeline) Run(ctx context.Context) (string, error) {
	if err := p.config.Validate(); err != nil {
		return "", err
	}

	candidates, err := p.Candidates(ctx)
	if err != nil {
		return "", err
	}

	if len(candidates) == 0 {
		return "", pkg.ErrSelection.Wrap(capture.ErrNoCandidates)
	}

	selected, err := p.selector.Select(ctx, candidates)
	if err != nil {
		return "", pkg.ErrSelection.Wrap(err)
	}

	p.logger.InfoContext(ctx, "processing profile",
		slog.String("path", selected.DevicePath),
	)

	artifacts, err := p.stage(ctx, selected)
	if err != nil {
		return "", err
	}

	p.logger.InfoContext(ctx, "converting profile",
		slog.String("profile", artifacts.Profile),
	)

	t, err := p.transformer.Transform(ctx, trace.Inputs{
		Profile:   artifacts.Profile,
		SourceMap: artifacts.SourceMap,
		Bundle:    artifacts.Bundle,
	})
	if err != nil {
		return "", pkg.ErrTransform.Wrap(err)
	}

	data, err := trace.Marshal(t)
	if err != nil {
		return "", pkg.ErrTransform.Wrap(err)
	}

	out := OutputPath(p.config.Output, selected.FileName)
	if err := WriteFile(out, data); err != nil {
		return "", pkg.ErrWriteOutput.Wrap(err)
	}

	p.logger.InfoContext(ctx, "trace written",
		slog.String("file", out),
		slog.Int("events", len(t)),
	)

	return out, nil
}

// stage pulls the selected profile while downloading the bundle and then the
// source map. All three transfers complete before it returns.
func (p *Pipeline) stage(ctx context.Context, selected capture.Candidate) (Artifacts, error) {
	scratch := p.config.Scratch
	artifacts := ScratchArtifacts(scratch, selected.FileName)

	if err := prepareScratch(scratch, artifacts); err != nil {
		return artifacts, pkg.ErrTransfer.Wrap(err)
	}

	bundleURL, err := p.config.Endpoints.BundleURL(p.config.App)
	if err != nil {
		return artifacts, pkg.ErrConfig.Wrap(err)
	}

	mapURL, err := p.config.Endpoints.MapURL(p.config.App)
	if err != nil {
		return artifacts, pkg.ErrConfig.Wrap(err)
	}

	var pulled string

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		local, err := p.bridge.Pull(gctx, selected.DevicePath, scratch)
		if err != nil {
			p.logger.ErrorContext(gctx, "pull failed",
				slog.String("path", selected.DevicePath),
				slog.Any("error", err),
			)

			return pkg.ErrDevice.Wrap(err)
		}

		pulled = local

		p.logger.InfoContext(gctx, "profile pulled", slog.String("file", local))

		return nil
	})

	g.Go(func() error {
		for _, dl := range []struct{ name, url, dest string }{
			{"bundle", bundleURL, artifacts.Bundle},
			{"map", mapURL, artifacts.SourceMap},
		} {
			p.logger.InfoContext(gctx, "downloading "+dl.name, slog.String("url", dl.url))

			if _, err := p.downloader.Download(gctx, dl.url, dl.dest); err != nil {
				return pkg.ErrTransfer.Wrap(err)
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return artifacts, err
	}

	artifacts.Profile = pulled

	return artifacts, nil
}

// prepareScratch creates dir and removes artifacts left by a previous run.
func prepareScratch(dir string, a Artifacts) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, name := range []string{a.Bundle, a.SourceMap, a.Profile} {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}

// WriteFile atomically replaces name with data, creating its directory if
// needed. A failed write leaves no file behind.
func WriteFile(name string, data []byte) (err error) {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".*")
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}

	if err = tmp.Chmod(0o644); err != nil {
		return err
	}

	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), name)
}
