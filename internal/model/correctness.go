package model

import (
	"bytes"

	"github.com/rotisserie/eris"
)

// Correctness is the tri-state verdict on a record: the backend serializes it
// as a nullable boolean, where null means the validator has not decided yet.
// Modeling it as an enum keeps the unset state distinct from false.
type Correctness int

const (
	Unset Correctness = iota
	Correct
	Incorrect
)

func (c Correctness) String() string {
	switch c {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "unset"
	}
}

// Decided reports whether a verdict has been recorded.
func (c Correctness) Decided() bool { return c != Unset }

var jsonNull = []byte("null")

// MarshalJSON encodes Correct/Incorrect as true/false and Unset as null.
func (c Correctness) MarshalJSON() ([]byte, error) {
	switch c {
	case Correct:
		return []byte("true"), nil
	case Incorrect:
		return []byte("false"), nil
	default:
		return jsonNull, nil
	}
}

// UnmarshalJSON decodes true/false/null into the three states.
func (c *Correctness) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, jsonNull):
		*c = Unset
	case bytes.Equal(data, []byte("true")):
		*c = Correct
	case bytes.Equal(data, []byte("false")):
		*c = Incorrect
	default:
		return eris.Errorf("model: invalid correctness value %q", string(data))
	}
	return nil
}
