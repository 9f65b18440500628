package prover

import (
	"github.com/consensys/gnark/backend/plonk"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/membership"
)

// PublicAssignment builds a membership.Circuit populated with only the
// three public fields, suitable for Verify: its secret fields are left
// as their zero frontend.Variable value, which frontend.PublicOnly()
// ignores when building the witness.
func PublicAssignment(districtRoot, nullifier, actionID field.F) *membership.Circuit {
	return &membership.Circuit{
		DistrictRoot: districtRoot,
		Nullifier:    nullifier,
		ActionID:     actionID,
	}
}

// ProveMembership proves a fully populated membership.Circuit
// assignment against a proving key loaded by LoadKeys.
func ProveMembership(assignment *membership.Circuit, pk plonk.ProvingKey, persistedCfg ConfigParams) (*Result, error) {
	return Prove(&membership.Circuit{}, assignment, pk, persistedCfg)
}

// VerifyMembership verifies proof against vk using only the three
// public values.
func VerifyMembership(districtRoot, nullifier, actionID field.F, vk plonk.VerifyingKey, proof plonk.Proof) error {
	return Verify(PublicAssignment(districtRoot, nullifier, actionID), vk, proof)
}

