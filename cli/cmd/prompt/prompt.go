package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/ardnew/rnprof/capture"
	"github.com/ardnew/rnprof/log"
)

// DefaultMessage is the question shown above the list.
const DefaultMessage = "Select a profile to use:"

var (
	// ErrAborted is returned when the user dismisses the prompt.
	ErrAborted = errors.New("selection aborted")

	// ErrNoTerminal is returned when the prompt cannot interact with a
	// terminal.
	ErrNoTerminal = errors.New("interactive selection requires a terminal (use --latest)")
)

// Prompt presents candidates for interactive selection.
type Prompt struct {
	message string
	input   io.Reader
	output  io.Writer
	logger  log.Logger
}

// Option configures a Prompt.
type Option func(Prompt) Prompt

// WithMessage sets the question shown above the list.
func WithMessage(message string) Option {
	return func(p Prompt) Prompt {
		p.message = message

		return p
	}
}

// WithInput sets the source of key presses. The default is stdin.
func WithInput(r io.Reader) Option {
	return func(p Prompt) Prompt {
		p.input = r

		return p
	}
}

// WithOutput sets where the prompt is drawn. The default is stderr, which
// keeps stdout free for results.
func WithOutput(w io.Writer) Option {
	return func(p Prompt) Prompt {
		p.output = w

		return p
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(p Prompt) Prompt {
		p.logger = logger

		return p
	}
}

// New returns a Prompt.
func New(opts ...Option) *Prompt {
	p := Prompt{
		message: DefaultMessage,
		input:   os.Stdin,
		output:  os.Stderr,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		p = opt(p)
	}

	return &p
}

// Select shows candidates in order and returns the one chosen.
func (p *Prompt) Select(
	ctx context.Context,
	candidates []capture.Candidate,
) (capture.Candidate, error) {
	if len(candidates) == 0 {
		return capture.Candidate{}, capture.ErrNoCandidates
	}

	if !isTerminal(p.input) || !isTerminal(p.output) {
		return capture.Candidate{}, ErrNoTerminal
	}

	p.logger.TraceContext(ctx, "prompt start", slog.Int("candidates", len(candidates)))

	prog := tea.NewProgram(
		newModel(p.message, capture.Displays(candidates)),
		tea.WithContext(ctx),
		tea.WithInput(p.input),
		tea.WithOutput(p.output),
	)

	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return capture.Candidate{}, ctx.Err()
		}

		if errors.Is(err, tea.ErrInterrupted) {
			return capture.Candidate{}, ErrAborted
		}

		return capture.Candidate{}, fmt.Errorf("prompt: %w", err)
	}

	return result(final, candidates)
}

// result maps the final model state to a candidate.
func result(final tea.Model, candidates []capture.Candidate) (capture.Candidate, error) {
	m, ok := final.(model)
	if !ok || m.aborted || !m.done {
		return capture.Candidate{}, ErrAborted
	}

	return capture.Resolve(candidates, m.choice)
}

// isTerminal reports whether v is a terminal. Streams that are not files are
// accepted so that callers can drive the prompt programmatically.
func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return true
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
