package decoder

import (
	"fmt"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/qec-dojo/surface17-engine/code"
)

var (
	ErrInvalidSyndrome = errors.New("syndrome length does not match the stabilizer count")
	ErrAmbiguousLayout = errors.New("two inequivalent weight-1 errors share a syndrome")
)

// Degeneracy records two weight-1 errors that produce the same syndrome and
// are equivalent up to a stabilizer. Decoding returns the canonical one.
type Degeneracy struct {
	Canonical code.PauliError
	Alias     code.PauliError
	Via       string // name of the stabilizer connecting them
}

func (d Degeneracy) String() string {
	return fmt.Sprintf("%s~%s(via %s)", d.Canonical, d.Alias, d.Via)
}

// LookupDecoder maps syndromes to the most likely weight-1 Pauli error for a
// fixed layout. The table is built once at construction and is immutable, so
// Decode is safe for concurrent callers.
type LookupDecoder struct {
	layout       *code.Layout
	table        map[string]code.PauliError
	degeneracies []Degeneracy
}

// hypothesis order: qubit-major, X before Y before Z. The first error to
// claim a syndrome is the canonical correction for it.
var hypothesisPaulis = []code.Pauli{code.X, code.Y, code.Z}

func New(layout *code.Layout) (*LookupDecoder, error) {
	if err := layout.Validate(); err != nil {
		return nil, errors.Wrap(err, "decoder construction")
	}
	d := &LookupDecoder{
		layout: layout,
		table:  make(map[string]code.PauliError),
	}
	for q := 0; q < layout.DataQubits; q++ {
		for _, p := range hypothesisPaulis {
			e := code.PauliError{Qubit: q, Pauli: p}
			s := layout.SyndromeOf(q, p)
			if s.IsZero() {
				// A weight-1 error no check can see would silently corrupt
				// data. Refuse the layout.
				return nil, errors.Errorf("error %s is undetectable in layout %s", e, layout.Name)
			}
			key := s.String()
			prev, ok := d.table[key]
			if !ok {
				d.table[key] = e
				continue
			}
			deg, degErr := degeneracyOf(layout, prev, e)
			if degErr != nil {
				zap.L().Error(fmt.Sprintf("layout %s: syndrome %s claimed by both %s and %s",
					layout.Name, key, prev, e))
				return nil, ErrAmbiguousLayout
			}
			zap.L().Info(fmt.Sprintf("layout %s: degenerate weight-1 errors %s", layout.Name, deg))
			d.degeneracies = append(d.degeneracies, deg)
		}
	}
	zap.L().Debug(fmt.Sprintf("built lookup table for %s: %d syndromes, %d degeneracies",
		layout.Name, len(d.table), len(d.degeneracies)))
	return d, nil
}

// degeneracyOf checks that two same-syndrome errors are equivalent, i.e.
// their product is a stabilizer. For same-basis errors a and b that is the
// case exactly when some stabilizer of that basis has support {a,b}.
func degeneracyOf(layout *code.Layout, canonical, alias code.PauliError) (Degeneracy, error) {
	if canonical.Pauli != alias.Pauli {
		return Degeneracy{}, errors.Errorf("%s and %s differ in basis", canonical, alias)
	}
	if canonical.Pauli == code.Y {
		// Y_a Y_b is a stabilizer only if both the X and the Z part are,
		// which no single check provides.
		return Degeneracy{}, errors.Errorf("%s and %s are Y errors", canonical, alias)
	}
	st, ok := layout.StabilizerBySupport(canonical.Pauli, []int{canonical.Qubit, alias.Qubit})
	if !ok {
		return Degeneracy{}, errors.Errorf("no stabilizer connects %s and %s", canonical, alias)
	}
	return Degeneracy{Canonical: canonical, Alias: alias, Via: st.Name}, nil
}

func (d *LookupDecoder) Layout() *code.Layout {
	return d.layout
}

// Degeneracies lists the weight-1 error pairs the table could not tell
// apart. For Surface17 these are the four boundary pairs.
func (d *LookupDecoder) Degeneracies() []Degeneracy {
	out := make([]Degeneracy, len(d.degeneracies))
	copy(out, d.degeneracies)
	return out
}

func (d *LookupDecoder) TableSize() int {
	return len(d.table)
}

// Decode returns the decision for one syndrome. The only error condition is
// a length mismatch; an unknown-but-well-formed syndrome is the normal
// Unresolved outcome, never a fabricated correction.
func (d *LookupDecoder) Decode(s code.Syndrome) (code.Decision, error) {
	if len(s) != d.layout.NumStabilizers() {
		return code.Decision{}, errors.Wrapf(ErrInvalidSyndrome,
			"got %d bits, want %d", len(s), d.layout.NumStabilizers())
	}
	if s.IsZero() {
		return code.Decision{Outcome: code.NoError}, nil
	}
	if e, ok := d.table[s.String()]; ok {
		return code.Decision{Outcome: code.Corrected, Qubit: e.Qubit, Pauli: e.Pauli}, nil
	}
	return code.Decision{Outcome: code.Unresolved}, nil
}
