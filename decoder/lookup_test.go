//go:build unit
// +build unit

package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qec-dojo/surface17-engine/code"
)

func TestDecodeAllZero(t *testing.T) {
	d, err := New(code.Surface17())
	assert.Nil(t, err)
	dec, err := d.Decode(code.NewSyndrome(8))
	assert.Nil(t, err)
	assert.Equal(t, code.NoError, dec.Outcome)
}

func TestDecodeRoundTrip(t *testing.T) {
	// Decode(SyndromeOf(E)) == E for every weight-1 error, modulo the four
	// boundary degeneracies where the canonical representative comes back.
	l := code.Surface17()
	d, err := New(l)
	assert.Nil(t, err)

	canonical := map[string]code.PauliError{
		"X1": {Qubit: 0, Pauli: code.X},
		"X8": {Qubit: 7, Pauli: code.X},
		"Z5": {Qubit: 2, Pauli: code.Z},
		"Z6": {Qubit: 3, Pauli: code.Z},
	}
	for q := 0; q < l.DataQubits; q++ {
		for _, p := range []code.Pauli{code.X, code.Y, code.Z} {
			e := code.PauliError{Qubit: q, Pauli: p}
			want := e
			if c, ok := canonical[e.String()]; ok {
				want = c
			}
			dec, err := d.Decode(l.SyndromeOf(q, p))
			assert.Nil(t, err)
			assert.Equal(t, code.Corrected, dec.Outcome, "error %s", e)
			assert.Equal(t, want.Qubit, dec.Qubit, "error %s", e)
			assert.Equal(t, want.Pauli, dec.Pauli, "error %s", e)
		}
	}
}

func TestDegeneracies(t *testing.T) {
	d, err := New(code.Surface17())
	assert.Nil(t, err)

	degs := d.Degeneracies()
	assert.Equal(t, 4, len(degs))
	got := make(map[string]string)
	for _, deg := range degs {
		got[deg.Canonical.String()+"~"+deg.Alias.String()] = deg.Via
	}
	assert.Equal(t, map[string]string{
		"X0~X1": "X0",
		"X7~X8": "X3",
		"Z2~Z5": "Z1",
		"Z3~Z6": "Z2",
	}, got)

	// 27 hypotheses collapse to 23 distinct syndromes.
	assert.Equal(t, 23, d.TableSize())
}

func TestDecodeUnresolved(t *testing.T) {
	d, err := New(code.Surface17())
	assert.Nil(t, err)

	// X4 and X6 together light Z0, Z2 and Z3; no weight-1 error does.
	s, err := code.ToSyndrome("00001011")
	assert.Nil(t, err)
	dec, err := d.Decode(s)
	assert.Nil(t, err)
	assert.Equal(t, code.Unresolved, dec.Outcome)
}

func TestDecodeInvalidLength(t *testing.T) {
	d, err := New(code.Surface17())
	assert.Nil(t, err)

	for _, n := range []int{0, 7, 9} {
		_, err := d.Decode(code.NewSyndrome(n))
		assert.NotNil(t, err)
		assert.ErrorIs(t, err, ErrInvalidSyndrome)
	}
}

func TestNewRejectsUndetectableError(t *testing.T) {
	// Qubit 2 is covered by no check at all, so X errors on it are
	// invisible.
	l := &code.Layout{
		Name:       "leaky",
		Distance:   1,
		DataQubits: 4,
		Stabilizers: []code.Stabilizer{
			{Name: "X0", Basis: "X", Support: []int{0, 1, 3}},
			{Name: "Z0", Basis: "Z", Support: []int{0, 1}},
			{Name: "Z1", Basis: "Z", Support: []int{1, 3}},
		},
	}
	_, err := New(l)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "undetectable")
}

func TestNewRejectsAmbiguousLayout(t *testing.T) {
	// One Z check covering all four qubits: every single X error lights the
	// same bit, but only pairs joined by one of the X checks are equivalent
	// up to a stabilizer, so construction must fail.
	l := &code.Layout{
		Name:       "ambiguous",
		Distance:   1,
		DataQubits: 4,
		Stabilizers: []code.Stabilizer{
			{Name: "X0", Basis: "X", Support: []int{0, 1}},
			{Name: "X1", Basis: "X", Support: []int{2, 3}},
			{Name: "Z0", Basis: "Z", Support: []int{0, 1, 2, 3}},
		},
	}
	_, err := New(l)
	assert.NotNil(t, err)
	assert.ErrorIs(t, err, ErrAmbiguousLayout)
}
