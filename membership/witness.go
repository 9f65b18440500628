package membership

import (
	"fmt"

	"github.com/shadowatlas/districtproof/bitdecomp"
	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/merkle"
	"github.com/shadowatlas/districtproof/poseidon"
)

// WitnessResult holds the fully populated circuit assignment plus the
// derived public values callers typically need for logging or for
// assembling the public-input vector passed to the verifier.
type WitnessResult struct {
	Assignment   Circuit
	DistrictRoot field.F
	Nullifier    field.F
	ActionID     field.F
}

// PrepareWitness builds a Circuit assignment for one member proving
// membership in tree at leafIndex, for the given public action id.
//
// It validates leafIndex against config.Depth before touching the tree, so
// an out-of-range index fails with a descriptive error here rather than
// surfacing only as an opaque mock-prover constraint violation later: both
// checks exist, but this one gives a better error message before any
// circuit work happens.
func PrepareWitness(tree *merkle.Tree, identityCommitment field.F, leafIndex int, actionID field.F) (*WitnessResult, error) {
	var leafIndexField field.F
	leafIndexField.SetInt64(int64(leafIndex))
	if err := bitdecomp.Validate(leafIndexField, config.Depth); err != nil {
		return nil, fmt.Errorf("membership.PrepareWitness: %w", err)
	}

	proof, err := tree.Open(leafIndex)
	if err != nil {
		return nil, fmt.Errorf("membership.PrepareWitness: %w", err)
	}

	nullifier := poseidon.Hash2(identityCommitment, actionID)

	var assignment Circuit
	assignment.DistrictRoot = tree.Root
	assignment.Nullifier = nullifier
	assignment.ActionID = actionID
	assignment.IdentityCommitment = identityCommitment
	assignment.LeafIndex = leafIndexField
	for i, s := range proof.Siblings {
		assignment.MerklePath[i] = s
	}

	return &WitnessResult{
		Assignment:   assignment,
		DistrictRoot: tree.Root,
		Nullifier:    nullifier,
		ActionID:     actionID,
	}, nil
}
