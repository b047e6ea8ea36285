package code

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Stabilizer is one parity check of the code: a measurement basis and the
// set of data qubits it touches.
type Stabilizer struct {
	Name    string `toml:"name" json:"name"`
	Basis   string `toml:"basis" json:"basis"` // "X" or "Z"
	Support []int  `toml:"support" json:"support"`
}

func (s *Stabilizer) BasisPauli() (Pauli, error) {
	p, err := ToPauli(s.Basis)
	if err != nil {
		return I, err
	}
	if p != X && p != Z {
		return I, errors.Errorf("stabilizer %s: basis must be X or Z, got %s", s.Name, s.Basis)
	}
	return p, nil
}

// Detects reports whether an error of the given Pauli on a qubit inside the
// support anticommutes with this check.
func (s *Stabilizer) Detects(p Pauli) bool {
	basis, err := s.BasisPauli()
	if err != nil {
		return false
	}
	if basis == Z {
		return p.HasXComponent()
	}
	return p.HasZComponent()
}

func (s *Stabilizer) Contains(qubit int) bool {
	for _, q := range s.Support {
		if q == qubit {
			return true
		}
	}
	return false
}

// Layout is the fixed stabilizer-to-qubit support structure of a code
// instance. It is supplied to the decoder as a constant and never mutated.
type Layout struct {
	Name        string       `toml:"name" json:"name"`
	Distance    int          `toml:"distance" json:"distance"`
	DataQubits  int          `toml:"data_qubits" json:"data_qubits"`
	Stabilizers []Stabilizer `toml:"stabilizers" json:"stabilizers"`
}

const Surface17Name = "surface-17"

// Surface17 is the distance-3 rotated surface code on 9 data qubits laid out
// on a 3x3 grid:
//
//	0 1 2
//	3 4 5
//	6 7 8
//
// Syndrome ordering is X-basis checks X0..X3 then Z-basis checks Z0..Z3.
func Surface17() *Layout {
	return &Layout{
		Name:       Surface17Name,
		Distance:   3,
		DataQubits: 9,
		Stabilizers: []Stabilizer{
			{Name: "X0", Basis: "X", Support: []int{0, 1}},
			{Name: "X1", Basis: "X", Support: []int{1, 2, 4, 5}},
			{Name: "X2", Basis: "X", Support: []int{3, 4, 6, 7}},
			{Name: "X3", Basis: "X", Support: []int{7, 8}},
			{Name: "Z0", Basis: "Z", Support: []int{0, 1, 3, 4}},
			{Name: "Z1", Basis: "Z", Support: []int{2, 5}},
			{Name: "Z2", Basis: "Z", Support: []int{3, 6}},
			{Name: "Z3", Basis: "Z", Support: []int{4, 5, 7, 8}},
		},
	}
}

// LoadLayout reads a layout from a TOML file. A missing or unreadable file
// is an error; the caller decides whether to fall back to Surface17.
func LoadLayout(path string) (*Layout, error) {
	l := &Layout{}
	if _, err := toml.DecodeFile(path, l); err != nil {
		zap.L().Error(fmt.Sprintf("failed to decode layout file:%s/reason:%s", path, err))
		return nil, errors.Wrap(err, "decode layout")
	}
	if err := l.Validate(); err != nil {
		zap.L().Error(fmt.Sprintf("invalid layout in %s/reason:%s", path, err))
		return nil, err
	}
	return l, nil
}

func (l *Layout) NumStabilizers() int {
	return len(l.Stabilizers)
}

// SpecJson renders the layout as JSON for the CodeInfo payload.
func (l *Layout) SpecJson() string {
	b, err := json.Marshal(l)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal layout %s/reason:%s", l.Name, err))
		return ""
	}
	return string(b)
}

// Validate checks support bounds, basis labels and X/Z commutation (every
// X-basis check must overlap every Z-basis check on an even number of
// qubits).
func (l *Layout) Validate() error {
	if l.DataQubits <= 0 {
		return errors.Errorf("layout %s has no data qubits", l.Name)
	}
	if len(l.Stabilizers) == 0 {
		return errors.Errorf("layout %s has no stabilizers", l.Name)
	}
	for i := range l.Stabilizers {
		s := &l.Stabilizers[i]
		if _, err := s.BasisPauli(); err != nil {
			return err
		}
		if len(s.Support) == 0 {
			return errors.Errorf("stabilizer %s has empty support", s.Name)
		}
		seen := make(map[int]struct{})
		for _, q := range s.Support {
			if q < 0 || q >= l.DataQubits {
				return errors.Errorf("stabilizer %s: qubit %d is out of range [0,%d)",
					s.Name, q, l.DataQubits)
			}
			if _, ok := seen[q]; ok {
				return errors.Errorf("stabilizer %s: qubit %d appears twice in support", s.Name, q)
			}
			seen[q] = struct{}{}
		}
	}
	for i := range l.Stabilizers {
		for j := i + 1; j < len(l.Stabilizers); j++ {
			a, b := &l.Stabilizers[i], &l.Stabilizers[j]
			if a.Basis == b.Basis {
				continue
			}
			if overlap(a.Support, b.Support)%2 != 0 {
				return errors.Errorf("stabilizers %s and %s anticommute (odd overlap)",
					a.Name, b.Name)
			}
		}
	}
	return nil
}

func overlap(a, b []int) int {
	n := 0
	for _, qa := range a {
		for _, qb := range b {
			if qa == qb {
				n++
			}
		}
	}
	return n
}

// SyndromeOf computes the syndrome a weight-1 error produces: bit i is set
// when stabilizer i contains the qubit and detects the Pauli.
func (l *Layout) SyndromeOf(qubit int, p Pauli) Syndrome {
	s := NewSyndrome(l.NumStabilizers())
	if p == I {
		return s
	}
	for i := range l.Stabilizers {
		st := &l.Stabilizers[i]
		if st.Contains(qubit) && st.Detects(p) {
			s[i] = 1
		}
	}
	return s
}

// StabilizerBySupport returns the stabilizer of the given basis whose support
// is exactly the given qubit set, if any. Used to recognize degenerate
// weight-1 error pairs.
func (l *Layout) StabilizerBySupport(basis Pauli, qubits []int) (*Stabilizer, bool) {
	for i := range l.Stabilizers {
		s := &l.Stabilizers[i]
		bp, err := s.BasisPauli()
		if err != nil || bp != basis {
			continue
		}
		if len(s.Support) != len(qubits) {
			continue
		}
		all := true
		for _, q := range qubits {
			if !s.Contains(q) {
				all = false
				break
			}
		}
		if all {
			return s, true
		}
	}
	return nil, false
}
