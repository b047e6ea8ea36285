//go:build unit
// +build unit

package code

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquivalentToIdentity(t *testing.T) {
	l := Surface17()
	tests := []struct {
		name string
		errs []PauliError
		want bool
	}{
		{
			name: "no errors",
			errs: nil,
			want: true,
		},
		{
			name: "boundary X pair is the X0 generator",
			errs: []PauliError{{Qubit: 0, Pauli: X}, {Qubit: 1, Pauli: X}},
			want: true,
		},
		{
			name: "bulk X error is not a stabilizer",
			errs: []PauliError{{Qubit: 4, Pauli: X}},
			want: false,
		},
		{
			name: "boundary Z pair is the Z2 generator",
			errs: []PauliError{{Qubit: 3, Pauli: Z}, {Qubit: 6, Pauli: Z}},
			want: true,
		},
		{
			name: "weight-4 X generator",
			errs: []PauliError{
				{Qubit: 1, Pauli: X}, {Qubit: 2, Pauli: X},
				{Qubit: 4, Pauli: X}, {Qubit: 5, Pauli: X},
			},
			want: true,
		},
		{
			name: "product of two X generators",
			errs: []PauliError{
				{Qubit: 0, Pauli: X}, {Qubit: 1, Pauli: X},
				{Qubit: 7, Pauli: X}, {Qubit: 8, Pauli: X},
			},
			want: true,
		},
		{
			name: "mixed-basis generator product",
			errs: []PauliError{
				{Qubit: 0, Pauli: X}, {Qubit: 1, Pauli: X},
				{Qubit: 2, Pauli: Z}, {Qubit: 5, Pauli: Z},
			},
			want: true,
		},
		{
			name: "single Y error",
			errs: []PauliError{{Qubit: 4, Pauli: Y}},
			want: false,
		},
		{
			name: "Y pair needs both bases in span",
			errs: []PauliError{{Qubit: 0, Pauli: Y}, {Qubit: 1, Pauli: Y}},
			want: false,
		},
		{
			name: "error cancels itself",
			errs: []PauliError{{Qubit: 4, Pauli: X}, {Qubit: 4, Pauli: X}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.EquivalentToIdentity(tt.errs))
		})
	}
}
