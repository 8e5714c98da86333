package capture

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// Extension is the file extension of Hermes sampling profiles.
const Extension = ".cpuprofile"

// Column positions of the fields used from a toybox "ls -l" line:
//
//	-rw------- 1 u0_a123 u0_a123 40312 2024-01-01 12:00 /data/.../trace1.cpuprofile
const (
	dateField = 5
	timeField = 6
	pathField = 7
	minFields = pathField + 1
)

var (
	// ErrMalformedListing is returned when a listing line names a profile but
	// does not have the expected columns.
	ErrMalformedListing = errors.New("malformed device listing")

	// ErrNoCandidates is returned when there is no profile to choose from.
	ErrNoCandidates = errors.New("no profiles found")

	// ErrInvalidSelection is returned when a selection does not identify any
	// candidate.
	ErrInvalidSelection = errors.New("invalid selection")
)

// Candidate is a profile file discovered on the device.
type Candidate struct {
	Date       string `json:"date"        yaml:"date"`
	Time       string `json:"time"        yaml:"time"`
	FileName   string `json:"file_name"   yaml:"file_name"`
	DevicePath string `json:"device_path" yaml:"device_path"`
}

// Display returns the single-line form shown to the user: "date time file".
func (c Candidate) Display() string {
	return c.Date + " " + c.Time + " " + c.FileName
}

// BaseName returns the file name without its extension.
func (c Candidate) BaseName() string {
	return strings.TrimSuffix(c.FileName, path.Ext(c.FileName))
}

// ParseError reports a listing line that could not be parsed.
type ParseError struct {
	Line   int    // 1-based line number in the listing
	Text   string // the offending line
	Fields int    // number of whitespace-separated fields found
}

func (e *ParseError) Error() string {
	return fmt.Sprintf(
		"%s: line %d has %d fields, want at least %d: %q",
		ErrMalformedListing, e.Line, e.Fields, minFields, e.Text,
	)
}

func (e *ParseError) Unwrap() error { return ErrMalformedListing }

// ParseListing parses the output of a long-format, time-sorted directory
// listing into candidates, preserving the listing order.
//
// Lines that do not mention [Extension] (such as the "total" header) are
// ignored. A line that mentions it but has too few columns is reported as a
// [*ParseError].
func ParseListing(raw string) ([]Candidate, error) {
	var out []Candidate

	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, Extension) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < minFields {
			return nil, &ParseError{Line: i + 1, Text: line, Fields: len(fields)}
		}

		// Anything after the time column belongs to the path, which may
		// contain spaces.
		devicePath := strings.Join(fields[pathField:], " ")

		out = append(out, Candidate{
			Date:       fields[dateField],
			Time:       fields[timeField],
			FileName:   path.Base(devicePath),
			DevicePath: devicePath,
		})
	}

	return out, nil
}

// Resolve maps an answer produced from [Candidate.Display] back to the
// candidate it names.
//
// The file name is taken from the answer's third column onward. A candidate
// whose FileName equals it is preferred; otherwise the first candidate whose
// FileName contains it is returned.
func Resolve(candidates []Candidate, answer string) (Candidate, error) {
	fields := strings.Fields(answer)
	if len(fields) <= 2 {
		return Candidate{}, fmt.Errorf("%w: %q", ErrInvalidSelection, answer)
	}

	name := strings.Join(fields[2:], " ")

	for _, c := range candidates {
		if c.FileName == name {
			return c, nil
		}
	}

	for _, c := range candidates {
		if strings.Contains(c.FileName, name) {
			return c, nil
		}
	}

	return Candidate{}, fmt.Errorf("%w: no profile named %q", ErrInvalidSelection, name)
}

// Displays returns the display line of every candidate, in order.
func Displays(candidates []Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Display()
	}

	return out
}
