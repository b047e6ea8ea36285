package code

import (
	"strings"

	"github.com/go-faster/errors"
)

// Syndrome is an ordered bit-vector, one bit per stabilizer, in layout
// ordering (X-basis checks first, then Z-basis checks). A set bit means the
// check measured odd parity.
type Syndrome []uint8

func NewSyndrome(length int) Syndrome {
	return make(Syndrome, length)
}

func (s Syndrome) IsZero() bool {
	for _, b := range s {
		if b != 0 {
			return false
		}
	}
	return true
}

// String renders the syndrome as a bitstring, e.g. "01000100".
// The bitstring is the lookup-table key and the counts-histogram key.
func (s Syndrome) String() string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, b := range s {
		if b == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

// Xor folds another syndrome into this one in place. Errors compose by
// parity, so the syndrome of a multi-error shot is the XOR of the per-error
// syndromes.
func (s Syndrome) Xor(other Syndrome) {
	for i := range s {
		if i < len(other) {
			s[i] ^= other[i]
		}
	}
}

// FlipBit toggles one check bit, modelling a readout error on that ancilla.
func (s Syndrome) FlipBit(i int) {
	if i >= 0 && i < len(s) {
		s[i] ^= 1
	}
}

func (s Syndrome) Clone() Syndrome {
	c := make(Syndrome, len(s))
	copy(c, s)
	return c
}

func ToSyndrome(bits string) (Syndrome, error) {
	s := make(Syndrome, 0, len(bits))
	for i := 0; i < len(bits); i++ {
		switch bits[i] {
		case '0':
			s = append(s, 0)
		case '1':
			s = append(s, 1)
		default:
			return nil, errors.Errorf("invalid syndrome bit %q at position %d", bits[i], i)
		}
	}
	return s, nil
}

type Outcome int

const (
	NoError Outcome = iota
	Corrected
	Unresolved
)

func (o Outcome) String() string {
	switch o {
	case NoError:
		return "no_error"
	case Corrected:
		return "corrected"
	case Unresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// Decision is the result of decoding one syndrome. Qubit and Pauli are only
// meaningful when Outcome is Corrected.
type Decision struct {
	Outcome Outcome
	Qubit   int
	Pauli   Pauli
}

func (d Decision) String() string {
	if d.Outcome == Corrected {
		return d.Outcome.String() + ":" + PauliError{Qubit: d.Qubit, Pauli: d.Pauli}.String()
	}
	return d.Outcome.String()
}
