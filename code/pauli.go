package code

import (
	"strconv"

	"github.com/go-faster/errors"
)

type Pauli int

const (
	I Pauli = iota
	X
	Y
	Z
)

func (p Pauli) String() string {
	switch p {
	case I:
		return "I"
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	default:
		return "unknown"
	}
}

func ToPauli(s string) (Pauli, error) {
	switch s {
	case "I":
		return I, nil
	case "X":
		return X, nil
	case "Y":
		return Y, nil
	case "Z":
		return Z, nil
	default:
		return I, errors.Errorf("unknown pauli: %s", s)
	}
}

// HasXComponent reports whether the error flips Z-basis checks.
func (p Pauli) HasXComponent() bool {
	return p == X || p == Y
}

// HasZComponent reports whether the error flips X-basis checks.
func (p Pauli) HasZComponent() bool {
	return p == Z || p == Y
}

// PauliError is a weight-1 error hypothesis: one Pauli on one data qubit.
type PauliError struct {
	Qubit int   `json:"qubit"`
	Pauli Pauli `json:"pauli"`
}

func (e PauliError) String() string {
	return e.Pauli.String() + strconv.Itoa(e.Qubit)
}
