// Package membership implements the district-membership circuit: prove
// that a private identity commitment opens to a leaf of a public district
// tree at a private index, and derive a nullifier bound to a public
// action id, without ever constraining the root or the action id to any
// expected value — that policy decision belongs to the verifier, outside
// the circuit.
package membership

import (
	"github.com/consensys/gnark/frontend"

	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/merkle"
	"github.com/shadowatlas/districtproof/poseidon"
)

// Circuit is the single-tier membership circuit. Public outputs are
// exposed in the fixed order (DistrictRoot, Nullifier, ActionID); callers
// of the prover must never reorder this triple, since the verifier-side
// contract and the EVM calldata layout both assume it.
type Circuit struct {
	// Public outputs, in the order the prover must expose them.
	DistrictRoot frontend.Variable `gnark:",public"`
	Nullifier    frontend.Variable `gnark:",public"`
	ActionID     frontend.Variable `gnark:",public"`

	// Private witnesses.
	IdentityCommitment frontend.Variable
	LeafIndex          frontend.Variable
	MerklePath         [config.Depth]frontend.Variable
}

// Define wires up the membership relation:
//  1. instantiate the Poseidon hasher once,
//  2. hash the identity commitment into a leaf,
//  3. verify the Merkle path and expose the resulting root,
//  4. derive the nullifier as hash2(identity, action_id),
//  5. expose (district_root, nullifier, action_id) as the public triple.
//
// The circuit never asserts DistrictRoot against an expected value, never
// restricts ActionID to a whitelist, and never checks Nullifier against a
// spent-nullifier set — all three are verifier-side duties.
func (c *Circuit) Define(api frontend.API) error {
	h := poseidon.NewHasher(api)

	leaf := h.Hash1(c.IdentityCommitment)

	path := make([]frontend.Variable, config.Depth)
	copy(path, c.MerklePath[:])
	root := merkle.Verify(api, h, leaf, c.LeafIndex, path, config.Depth)

	nullifier := h.Hash2(c.IdentityCommitment, c.ActionID)

	api.AssertIsEqual(c.DistrictRoot, root)
	api.AssertIsEqual(c.Nullifier, nullifier)

	return nil
}
