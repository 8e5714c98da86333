package trace

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrNumber is returned when a numeric profile field cannot be decoded.
var ErrNumber = errors.New("invalid number")

// Number is an integer encoded either as a JSON number or as a string.
// Empty strings and null decode as zero.
type Number int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(b, `"`))
	if s == "" || s == "null" {
		*n = 0

		return nil
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = Number(v)

		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s", ErrNumber, b)
	}

	*n = Number(f)

	return nil
}

// String returns the decimal form of n.
func (n Number) String() string { return strconv.FormatInt(int64(n), 10) }
