// Package legacy implements a two-tier membership circuit: a local
// district tree nested under a global atlas tree, with a ternary
// nullifier that binds the proof to a specific atlas snapshot. Current
// deployments use the single-tier membership package instead; this
// variant is kept for the timeline-desync defense it provides when a
// verifier cannot move the district-to-atlas mapping on-chain.
package legacy

import (
	"github.com/consensys/gnark/frontend"

	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/merkle"
	"github.com/shadowatlas/districtproof/poseidon"
)

// Circuit proves membership in a district tree whose root is itself
// registered as a leaf of a global atlas tree, and derives a nullifier
// that additionally binds to the atlas snapshot (AtlasVersion) so a proof
// valid under one atlas snapshot cannot be replayed against the next.
type Circuit struct {
	// Public outputs, in order.
	AtlasRoot frontend.Variable `gnark:",public"`
	Nullifier frontend.Variable `gnark:",public"`
	ActionID  frontend.Variable `gnark:",public"`

	// Private witnesses.
	IdentityCommitment frontend.Variable
	LeafIndex          frontend.Variable
	DistrictPath       [config.LegacyDistrictDepth]frontend.Variable
	AtlasIndex         frontend.Variable
	AtlasPath          [config.LegacyAtlasDepth]frontend.Variable
	AtlasVersion       frontend.Variable
}

// Define implements the two-tier relation:
//  1. hasher instantiated once and shared across both tiers and the
//     nullifier,
//  2. district_leaf = hash1(identity_commitment),
//  3. district_root = merkle_verify(district_leaf, leaf_index, district_path, DistrictDepth),
//  4. atlas_leaf = hash1(district_root) — the district's root becomes the
//     atlas tree's leaf value, binding a specific district snapshot into
//     a specific atlas snapshot,
//  5. atlas_root = merkle_verify(atlas_leaf, atlas_index, atlas_path, AtlasDepth),
//  6. nullifier = hash3(identity_commitment, action_id, atlas_version),
//  7. expose (atlas_root, nullifier, action_id).
func (c *Circuit) Define(api frontend.API) error {
	h := poseidon.NewHasher(api)

	districtLeaf := h.Hash1(c.IdentityCommitment)

	districtPath := make([]frontend.Variable, config.LegacyDistrictDepth)
	copy(districtPath, c.DistrictPath[:])
	districtRoot := merkle.Verify(api, h, districtLeaf, c.LeafIndex, districtPath, config.LegacyDistrictDepth)

	atlasLeaf := h.Hash1(districtRoot)

	atlasPath := make([]frontend.Variable, config.LegacyAtlasDepth)
	copy(atlasPath, c.AtlasPath[:])
	atlasRoot := merkle.Verify(api, h, atlasLeaf, c.AtlasIndex, atlasPath, config.LegacyAtlasDepth)

	nullifier := h.Hash3(c.IdentityCommitment, c.ActionID, c.AtlasVersion)

	api.AssertIsEqual(c.AtlasRoot, atlasRoot)
	api.AssertIsEqual(c.Nullifier, nullifier)

	return nil
}
