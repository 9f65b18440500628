package legacy

import (
	"fmt"

	"github.com/shadowatlas/districtproof/bitdecomp"
	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/merkle"
	"github.com/shadowatlas/districtproof/poseidon"
)

// WitnessResult holds the populated legacy circuit assignment plus the
// derived public values.
type WitnessResult struct {
	Assignment Circuit
	AtlasRoot  field.F
	Nullifier  field.F
	ActionID   field.F
}

// PrepareWitness builds a Circuit assignment proving that identityCommitment
// opens districtTree at districtIndex, and that districtTree's root opens
// atlasTree at atlasIndex, under the given atlasVersion and actionID.
func PrepareWitness(
	districtTree *merkle.Tree,
	districtIndex int,
	identityCommitment field.F,
	atlasTree *merkle.Tree,
	atlasIndex int,
	atlasVersion field.F,
	actionID field.F,
) (*WitnessResult, error) {
	var districtIdxField, atlasIdxField field.F
	districtIdxField.SetInt64(int64(districtIndex))
	atlasIdxField.SetInt64(int64(atlasIndex))

	if err := bitdecomp.Validate(districtIdxField, config.LegacyDistrictDepth); err != nil {
		return nil, fmt.Errorf("legacy.PrepareWitness: district index: %w", err)
	}
	if err := bitdecomp.Validate(atlasIdxField, config.LegacyAtlasDepth); err != nil {
		return nil, fmt.Errorf("legacy.PrepareWitness: atlas index: %w", err)
	}

	districtProof, err := districtTree.Open(districtIndex)
	if err != nil {
		return nil, fmt.Errorf("legacy.PrepareWitness: district tree: %w", err)
	}

	// The atlas tree's leaf at atlasIndex must equal hash1(district root);
	// this is a precondition on how the caller constructed atlasTree, not
	// something this function can fix up, so it is checked rather than
	// silently assumed.
	expectedAtlasLeaf := poseidon.Hash1(districtTree.Root)
	atlasProof, err := atlasTree.Open(atlasIndex)
	if err != nil {
		return nil, fmt.Errorf("legacy.PrepareWitness: atlas tree: %w", err)
	}
	if !atlasProof.LeafHash.Equal(&expectedAtlasLeaf) {
		return nil, fmt.Errorf("legacy.PrepareWitness: atlas tree leaf at index %d does not equal hash1(district root)", atlasIndex)
	}

	nullifier := poseidon.Hash3(identityCommitment, actionID, atlasVersion)

	var assignment Circuit
	assignment.AtlasRoot = atlasTree.Root
	assignment.Nullifier = nullifier
	assignment.ActionID = actionID
	assignment.IdentityCommitment = identityCommitment
	assignment.LeafIndex = districtIdxField
	for i, s := range districtProof.Siblings {
		assignment.DistrictPath[i] = s
	}
	assignment.AtlasIndex = atlasIdxField
	for i, s := range atlasProof.Siblings {
		assignment.AtlasPath[i] = s
	}
	assignment.AtlasVersion = atlasVersion

	return &WitnessResult{
		Assignment: assignment,
		AtlasRoot:  atlasTree.Root,
		Nullifier:  nullifier,
		ActionID:   actionID,
	}, nil
}
