// Package bitdecomp implements the bit-decomposition gadget: decomposing
// a witnessed field element into booleans that reconstruct it, and
// rejecting — via constraint unsatisfiability, not a side check — any
// value that does not fit in the requested bit width. This is the only
// range check the membership circuit performs on a leaf index; there is
// no separate range-check gate.
package bitdecomp

import (
	"github.com/consensys/gnark/frontend"
)

// Decompose constrains v to equal the reconstruction of n booleans and
// returns those booleans, bit 0 first (least significant). gnark's
// api.ToBinary already emits both the booleanity constraint for each bit
// (b[i]*b[i] = b[i]) and the reconstruction constraint (sum(b[i]*2^i) ==
// v); a v that does not fit in n bits makes that reconstruction
// constraint unsatisfiable, which is exactly the out-of-range rejection
// this gadget provides. There is no separate range-check gate.
func Decompose(api frontend.API, v frontend.Variable, n int) []frontend.Variable {
	return api.ToBinary(v, n)
}

// Reconstruct is the inverse of Decompose: given a little-endian boolean
// vector, it returns the field element those bits represent. Used to
// rebuild a constrained value (e.g. a Select'd index) from bits computed
// elsewhere in a circuit.
func Reconstruct(api frontend.API, bits []frontend.Variable) frontend.Variable {
	return api.FromBinary(bits...)
}
