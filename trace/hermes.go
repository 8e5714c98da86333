package trace

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/go-sourcemap/sourcemap"

	"github.com/ardnew/rnprof/log"
)

// ErrProfileFormat is returned for input that is not a Hermes profile.
var ErrProfileFormat = errors.New("malformed profile")

// categoryJS marks frames that can be located in the bundle.
const categoryJS = "JavaScript"

type hermesProfile struct {
	TraceEvents []json.RawMessage      `json:"traceEvents"`
	Samples     []hermesSample         `json:"samples"`
	StackFrames map[string]hermesFrame `json:"stackFrames"`
}

type hermesSample struct {
	Timestamp Number `json:"ts"`
	ProcessID Number `json:"pid"`
	ThreadID  Number `json:"tid"`
	Frame     Number `json:"sf"`
}

type hermesFrame struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Parent     *Number `json:"parent"`
	Line       Number  `json:"line"`
	Column     Number  `json:"column"`
	FuncLine   Number  `json:"funcLine"`
	FuncColumn Number  `json:"funcColumn"`
}

// position returns the 1-based bundle location of the frame.
func (f hermesFrame) position() (line, column int) {
	if f.Line > 0 {
		return int(f.Line), int(f.Column)
	}

	return int(f.FuncLine), int(f.FuncColumn)
}

// Hermes converts Hermes sampling profiles.
//
// Consecutive samples of one thread are compared frame by frame: frames that
// leave the stack produce end events and frames that enter it produce begin
// events, both at the timestamp of the later sample. Frames still open after
// the last sample are closed at that sample's timestamp.
type Hermes struct {
	logger log.Logger
}

// HermesOption configures a Hermes transformer.
type HermesOption func(Hermes) Hermes

// WithLogger sets the logger for symbolication diagnostics.
func WithLogger(logger log.Logger) HermesOption {
	return func(h Hermes) Hermes {
		h.logger = logger

		return h
	}
}

// NewHermes returns a Hermes transformer.
func NewHermes(opts ...HermesOption) *Hermes {
	h := Hermes{logger: log.Default()}
	for _, opt := range opts {
		h = opt(h)
	}

	return &h
}

// Transform implements [Transformer].
func (h *Hermes) Transform(ctx context.Context, in Inputs) (Trace, error) {
	prof, err := readProfile(in.Profile)
	if err != nil {
		return nil, err
	}

	sym, err := newSymbolicator(in.SourceMap, in.Bundle)
	if err != nil {
		return nil, err
	}

	conv := converter{
		frames: prof.StackFrames,
		stacks: make(map[Number][]Number),
		events: make(map[Number]Event),
		sym:    sym,
	}

	out := metadata(prof.TraceEvents)

	events, err := conv.run(ctx, prof.Samples)
	if err != nil {
		return nil, err
	}

	if sym.outside > 0 {
		h.logger.DebugContext(ctx, "frames outside bundle left unsymbolicated",
			slog.Int("count", sym.outside),
			slog.Int("bundle_lines", sym.lines),
		)
	}

	if sym.unmapped > 0 {
		h.logger.DebugContext(ctx, "frames without source mapping",
			slog.Int("count", sym.unmapped),
		)
	}

	t, err := FromEvents(events...)
	if err != nil {
		return nil, err
	}

	h.logger.TraceContext(ctx, "profile converted",
		slog.Int("samples", len(prof.Samples)),
		slog.Int("frames", len(prof.StackFrames)),
		slog.Int("events", len(out)+len(t)),
	)

	return append(out, t...), nil
}

func readProfile(name string) (hermesProfile, error) {
	var prof hermesProfile

	b, err := os.ReadFile(name)
	if err != nil {
		return prof, err
	}

	if err := json.Unmarshal(b, &prof); err != nil {
		return prof, fmt.Errorf("%w: %s: %w", ErrProfileFormat, name, err)
	}

	if prof.StackFrames == nil || prof.Samples == nil {
		return prof, fmt.Errorf("%w: %s: missing samples or stackFrames", ErrProfileFormat, name)
	}

	return prof, nil
}

// metadata returns the metadata events of the original trace, in order.
func metadata(events []json.RawMessage) Trace {
	var out Trace

	for _, raw := range events {
		var ev struct {
			Phase Phase `json:"ph"`
		}

		if json.Unmarshal(raw, &ev) == nil && ev.Phase == PhaseMetadata {
			out = append(out, raw)
		}
	}

	return out
}

// threadKey identifies a thread; thread IDs are only unique within a process.
type threadKey struct {
	pid, tid Number
}

type thread struct {
	pid, tid Number
	open     []Number
	last     Number
}

type converter struct {
	frames map[string]hermesFrame
	stacks map[Number][]Number
	events map[Number]Event
	sym    *symbolicator
}

func (c *converter) run(ctx context.Context, samples []hermesSample) ([]Event, error) {
	samples = slices.Clone(samples)
	slices.SortStableFunc(samples, func(a, b hermesSample) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})

	var (
		out     []Event
		order   []threadKey
		threads = make(map[threadKey]*thread)
	)

	for i, s := range samples {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		key := threadKey{pid: s.ProcessID, tid: s.ThreadID}

		th, ok := threads[key]
		if !ok {
			th = &thread{pid: s.ProcessID, tid: s.ThreadID}
			threads[key] = th
			order = append(order, key)
		}

		stack, err := c.stack(s.Frame)
		if err != nil {
			return nil, err
		}

		common := 0
		for common < len(th.open) && common < len(stack) && th.open[common] == stack[common] {
			common++
		}

		for j := len(th.open) - 1; j >= common; j-- {
			out = append(out, c.event(th.open[j], PhaseEnd, s.Timestamp, th))
		}

		for _, id := range stack[common:] {
			out = append(out, c.event(id, PhaseBegin, s.Timestamp, th))
		}

		th.open = stack
		th.last = s.Timestamp
	}

	for _, key := range order {
		th := threads[key]
		for j := len(th.open) - 1; j >= 0; j-- {
			out = append(out, c.event(th.open[j], PhaseEnd, th.last, th))
		}
	}

	return out, nil
}

// stack returns the frame IDs from the root to id.
func (c *converter) stack(id Number) ([]Number, error) {
	if s, ok := c.stacks[id]; ok {
		return s, nil
	}

	var rev []Number

	for cur := &id; cur != nil; {
		f, ok := c.frames[cur.String()]
		if !ok {
			return nil, fmt.Errorf("%w: unknown stack frame %s", ErrProfileFormat, cur)
		}

		if len(rev) > len(c.frames) {
			return nil, fmt.Errorf("%w: cyclic stack at frame %s", ErrProfileFormat, id)
		}

		rev = append(rev, *cur)
		cur = f.Parent
	}

	slices.Reverse(rev)
	c.stacks[id] = rev

	return rev, nil
}

func (c *converter) event(id Number, ph Phase, ts Number, th *thread) Event {
	ev, ok := c.events[id]
	if !ok {
		f := c.frames[id.String()]
		ev = Event{
			Name:     f.Name,
			Category: f.Category,
			Args:     c.sym.resolve(f),
		}
		c.events[id] = ev
	}

	ev.Phase = ph
	ev.Timestamp = int64(ts)
	ev.ProcessID = int64(th.pid)
	ev.ThreadID = int64(th.tid)

	return ev
}

type symbolicator struct {
	consumer *sourcemap.Consumer
	lines    int
	outside  int
	unmapped int
}

func newSymbolicator(mapFile, bundleFile string) (*symbolicator, error) {
	m, err := os.ReadFile(mapFile)
	if err != nil {
		return nil, err
	}

	consumer, err := sourcemap.Parse("", m)
	if err != nil {
		return nil, fmt.Errorf("parse source map %s: %w", mapFile, err)
	}

	b, err := os.ReadFile(bundleFile)
	if err != nil {
		return nil, err
	}

	lines := bytes.Count(b, []byte{'\n'})
	if len(b) > 0 && b[len(b)-1] != '\n' {
		lines++
	}

	return &symbolicator{consumer: consumer, lines: lines}, nil
}

// resolve maps a frame's 1-based bundle position to its original source.
// The source map library takes 0-based columns.
func (s *symbolicator) resolve(f hermesFrame) *Args {
	if f.Category != categoryJS {
		return nil
	}

	line, column := f.position()
	if line <= 0 {
		return nil
	}

	args := &Args{BundleLine: line, BundleColumn: column}

	if line > s.lines {
		s.outside++

		return args
	}

	source, name, srcLine, srcColumn, ok := s.consumer.Source(line, max(column-1, 0))
	if !ok {
		s.unmapped++

		return args
	}

	args.URL = source
	args.Line = srcLine
	args.Column = srcColumn + 1
	args.Name = name

	return args
}
