// Package merkle implements the Merkle verifier gadget: a depth-fixed
// path verifier that computes both the "current node is the left child"
// and "current node is the right child" hypotheses at every level and
// multiplexes between them on the index's bit, so the bit is the only
// place that influences the result.
package merkle

import (
	"fmt"

	"github.com/consensys/gnark/frontend"

	"github.com/shadowatlas/districtproof/bitdecomp"
	"github.com/shadowatlas/districtproof/poseidon"
)

// Verify walks a depth-level Merkle path starting from leaf and returns
// the computed root as a circuit variable. It does not assert the result
// against any expected root — the caller exposes it as a public output
// and leaves whitelist membership to the verifier outside the circuit.
//
// index is decomposed into depth bits via bitdecomp.Decompose, which both
// supplies the per-level direction bits and constrains index itself to be
// a valid depth-bit value, so every caller of Verify gets the range check
// for free.
//
// Precondition: len(siblings) == depth. A mismatched length is a
// programming error caught before any circuit is built, not a
// constraint-system failure, so Verify panics rather than silently
// truncating or zero-extending.
func Verify(api frontend.API, h *poseidon.Hasher, leaf, index frontend.Variable, siblings []frontend.Variable, depth int) frontend.Variable {
	if len(siblings) != depth {
		panic(fmt.Sprintf("merkle.Verify: siblings length %d != depth %d", len(siblings), depth))
	}

	bits := bitdecomp.Decompose(api, index, depth)

	cur := leaf
	for i := 0; i < depth; i++ {
		sibling := siblings[i]
		bit := bits[i]

		hLeft := h.Hash2(cur, sibling)
		hRight := h.Hash2(sibling, cur)

		cur = api.Select(bit, hRight, hLeft)
	}

	return cur
}
