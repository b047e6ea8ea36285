//go:build unit
// +build unit

package code

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
)

func TestSurface17Validate(t *testing.T) {
	l := Surface17()
	assert.Nil(t, l.Validate())
	assert.Equal(t, 9, l.DataQubits)
	assert.Equal(t, 8, l.NumStabilizers())
	assert.Equal(t, 3, l.Distance)
}

func TestValidateRejectsBrokenLayouts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Layout)
		wantErr string
	}{
		{
			name:    "qubit out of range",
			mutate:  func(l *Layout) { l.Stabilizers[0].Support = []int{0, 9} },
			wantErr: "stabilizer X0: qubit 9 is out of range [0,9)",
		},
		{
			name:    "duplicate qubit in support",
			mutate:  func(l *Layout) { l.Stabilizers[0].Support = []int{1, 1} },
			wantErr: "stabilizer X0: qubit 1 appears twice in support",
		},
		{
			name:    "empty support",
			mutate:  func(l *Layout) { l.Stabilizers[3].Support = nil },
			wantErr: "stabilizer X3 has empty support",
		},
		{
			name:    "bad basis",
			mutate:  func(l *Layout) { l.Stabilizers[1].Basis = "Y" },
			wantErr: "stabilizer X1: basis must be X or Z, got Y",
		},
		{
			name: "anticommuting checks",
			// X0={0,1} against Z0={0,1,3,4} overlaps evenly; shrinking Z0
			// to {0,3,4} makes the overlap odd.
			mutate:  func(l *Layout) { l.Stabilizers[4].Support = []int{0, 3, 4} },
			wantErr: "stabilizers X0 and Z0 anticommute (odd overlap)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Surface17()
			tt.mutate(l)
			err := l.Validate()
			assert.NotNil(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSyndromeOf(t *testing.T) {
	l := Surface17()
	tests := []struct {
		name     string
		qubit    int
		pauli    Pauli
		wantBits string
	}{
		// ordering is X0 X1 X2 X3 Z0 Z1 Z2 Z3
		{name: "identity", qubit: 4, pauli: I, wantBits: "00000000"},
		{name: "X on center", qubit: 4, pauli: X, wantBits: "00001001"},
		{name: "Z on center", qubit: 4, pauli: Z, wantBits: "01100000"},
		{name: "Y on center", qubit: 4, pauli: Y, wantBits: "01101001"},
		{name: "X on corner 2", qubit: 2, pauli: X, wantBits: "00000100"},
		{name: "Z on corner 2", qubit: 2, pauli: Z, wantBits: "01000000"},
		{name: "X on corner 0", qubit: 0, pauli: X, wantBits: "00001000"},
		{name: "Z on corner 8", qubit: 8, pauli: Z, wantBits: "00010000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantBits, l.SyndromeOf(tt.qubit, tt.pauli).String())
		})
	}
}

func TestStabilizerBySupport(t *testing.T) {
	l := Surface17()
	st, ok := l.StabilizerBySupport(X, []int{1, 0})
	assert.True(t, ok)
	assert.Equal(t, "X0", st.Name)

	st, ok = l.StabilizerBySupport(Z, []int{2, 5})
	assert.True(t, ok)
	assert.Equal(t, "Z1", st.Name)

	_, ok = l.StabilizerBySupport(X, []int{2, 5})
	assert.False(t, ok)
	_, ok = l.StabilizerBySupport(Z, []int{0, 8})
	assert.False(t, ok)
}

func TestLoadLayout(t *testing.T) {
	blob := heredoc.Doc(`
		name = "two-qubit-zz"
		distance = 1
		data_qubits = 2

		[[stabilizers]]
		name = "Z0"
		basis = "Z"
		support = [0, 1]
	`)
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.toml")
	assert.Nil(t, os.WriteFile(path, []byte(blob), 0644))

	l, err := LoadLayout(path)
	assert.Nil(t, err)
	assert.Equal(t, "two-qubit-zz", l.Name)
	assert.Equal(t, 2, l.DataQubits)
	assert.Equal(t, 1, l.NumStabilizers())
	assert.Equal(t, "1", l.SyndromeOf(0, X).String())
	assert.Equal(t, "1", l.SyndromeOf(1, X).String())
	assert.Equal(t, "0", l.SyndromeOf(1, Z).String())

	_, err = LoadLayout(filepath.Join(dir, "missing.toml"))
	assert.NotNil(t, err)
}

func TestSyndromeString(t *testing.T) {
	s, err := ToSyndrome("01000100")
	assert.Nil(t, err)
	assert.Equal(t, "01000100", s.String())
	assert.False(t, s.IsZero())
	assert.True(t, NewSyndrome(8).IsZero())

	_, err = ToSyndrome("01x")
	assert.NotNil(t, err)

	c := s.Clone()
	c[0] = 1
	assert.Equal(t, "01000100", s.String())
	assert.Equal(t, "11000100", c.String())
}

func TestPauliRoundTrip(t *testing.T) {
	for _, p := range []Pauli{I, X, Y, Z} {
		got, err := ToPauli(p.String())
		assert.Nil(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ToPauli("H")
	assert.NotNil(t, err)
}
