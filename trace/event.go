package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Phase is the single-character type of a trace event.
type Phase string

// Phases emitted or preserved by this package.
const (
	PhaseBegin    Phase = "B"
	PhaseEnd      Phase = "E"
	PhaseComplete Phase = "X"
	PhaseMetadata Phase = "M"
)

// ErrInvalidEvent is returned when a trace element is not valid JSON.
var ErrInvalidEvent = errors.New("invalid trace event")

// Event is one Chrome Trace Event.
type Event struct {
	Name      string `json:"name"`
	Category  string `json:"cat,omitempty"`
	Phase     Phase  `json:"ph"`
	Timestamp int64  `json:"ts"`
	ProcessID int64  `json:"pid"`
	ThreadID  int64  `json:"tid"`
	Args      *Args  `json:"args,omitempty"`
}

// Args carries the source location of a stack frame. URL, Line, Column and
// Name refer to the original source when the frame could be symbolicated;
// BundleLine and BundleColumn always refer to the generated bundle.
type Args struct {
	URL          string `json:"url,omitempty"`
	Line         int    `json:"line,omitempty"`
	Column       int    `json:"column,omitempty"`
	Name         string `json:"name,omitempty"`
	BundleLine   int    `json:"bundleLine,omitempty"`
	BundleColumn int    `json:"bundleColumn,omitempty"`
}

// Trace is an ordered sequence of serialized trace events.
type Trace []json.RawMessage

// FromEvents serializes events in order.
func FromEvents(events ...Event) (Trace, error) {
	t := make(Trace, 0, len(events))

	for _, ev := range events {
		b, err := json.Marshal(ev)
		if err != nil {
			return nil, err
		}

		t = append(t, b)
	}

	return t, nil
}

// Marshal returns t as one compact JSON array. Each element is copied
// verbatim.
func Marshal(t Trace) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, t); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Encode writes t to w as a JSON array.
func Encode(w io.Writer, t Trace) error {
	var buf bytes.Buffer

	buf.WriteByte('[')

	for i, raw := range t {
		if !json.Valid(raw) {
			return fmt.Errorf("%w: element %d", ErrInvalidEvent, i)
		}

		if i > 0 {
			buf.WriteByte(',')
		}

		buf.Write(raw)
	}

	buf.WriteByte(']')

	_, err := buf.WriteTo(w)

	return err
}
