package code

// EquivalentToIdentity reports whether a combined set of Pauli errors acts
// trivially on the code space, i.e. composes (phases ignored) to a product of
// stabilizer generators. Because every generator here is pure X or pure Z,
// the check factorizes into two GF(2) span memberships over the qubit masks.
func (l *Layout) EquivalentToIdentity(errs []PauliError) bool {
	if l.DataQubits > 64 {
		return false
	}
	var xVec, zVec uint64
	for _, e := range errs {
		if e.Pauli.HasXComponent() {
			xVec ^= 1 << uint(e.Qubit)
		}
		if e.Pauli.HasZComponent() {
			zVec ^= 1 << uint(e.Qubit)
		}
	}
	var xBasis, zBasis []uint64
	for i := range l.Stabilizers {
		s := &l.Stabilizers[i]
		var mask uint64
		for _, q := range s.Support {
			mask |= 1 << uint(q)
		}
		bp, err := s.BasisPauli()
		if err != nil {
			return false
		}
		if bp == X {
			xBasis = append(xBasis, mask)
		} else {
			zBasis = append(zBasis, mask)
		}
	}
	return spanContains(xBasis, xVec) && spanContains(zBasis, zVec)
}

// spanContains reports whether target is in the GF(2) span of the basis
// vectors. The basis is brought to row echelon form, then the target is
// reduced against each pivot.
func spanContains(basis []uint64, target uint64) bool {
	var pivots []uint64
	for _, v := range basis {
		for v != 0 {
			lead := highestBit(v)
			cleared := false
			for _, p := range pivots {
				if highestBit(p) == lead {
					v ^= p
					cleared = true
					break
				}
			}
			if !cleared {
				pivots = append(pivots, v)
				break
			}
		}
	}
	for target != 0 {
		reduced := false
		for _, p := range pivots {
			if highestBit(p) == highestBit(target) {
				target ^= p
				reduced = true
				break
			}
		}
		if !reduced {
			return false
		}
	}
	return true
}

func highestBit(v uint64) uint64 {
	b := uint64(1)
	for v > 1 {
		v >>= 1
		b <<= 1
	}
	return b
}
