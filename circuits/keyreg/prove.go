package keyreg

import (
	"encoding/hex"
	"fmt"

	"github.com/consensys/gnark/backend/plonk"
	plonkbn254 "github.com/consensys/gnark/backend/plonk/bn254"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/prover"
)

// NumPublicInputs is this circuit's public arity: (IdentityCommitment,
// RegistrationNonce). It differs from prover.NumPublicInputs, which is
// the district-membership circuits' arity, so registration proofs call
// prover.VerifyN directly rather than prover.Verify.
const NumPublicInputs = 2

// PublicAssignment builds a Circuit populated with only the two public
// fields, suitable for Verify.
func PublicAssignment(identityCommitment, registrationNonce field.F) *Circuit {
	return &Circuit{
		IdentityCommitment: identityCommitment,
		RegistrationNonce:  registrationNonce,
	}
}

// Prove proves a fully populated registration assignment against a
// proving key produced for this circuit shape.
func Prove(assignment *Circuit, pk plonk.ProvingKey, persistedCfg prover.ConfigParams) (*prover.Result, error) {
	return prover.Prove(&Circuit{}, assignment, pk, persistedCfg)
}

// Verify verifies proof against vk using only the two public values.
func Verify(identityCommitment, registrationNonce field.F, vk plonk.VerifyingKey, proof plonk.Proof) error {
	return prover.VerifyN(PublicAssignment(identityCommitment, registrationNonce), vk, proof, NumPublicInputs)
}

// EVMCalldata is the Solidity-facing encoding of a registration proof:
// hex-encoded proof bytes plus the two public inputs in circuit order.
type EVMCalldata struct {
	ProofHex     string   `json:"proof"`
	PublicInputs []string `json:"public_inputs"`
}

// MarshalSolidity encodes res for the on-chain registration verifier.
func MarshalSolidity(res *prover.Result) (*EVMCalldata, error) {
	bn254Proof, ok := res.Proof.(*plonkbn254.Proof)
	if !ok {
		return nil, fmt.Errorf("keyreg: EVM export requires a BN254 PLONK proof, got %T", res.Proof)
	}
	if len(res.PublicInputs) != NumPublicInputs {
		return nil, fmt.Errorf("keyreg: expected %d public inputs, got %d", NumPublicInputs, len(res.PublicInputs))
	}

	raw := bn254Proof.MarshalSolidity()

	inputs := make([]string, len(res.PublicInputs))
	for i, v := range res.PublicInputs {
		inputs[i] = field.ToHex(v)
	}

	return &EVMCalldata{
		ProofHex:     "0x" + hex.EncodeToString(raw),
		PublicInputs: inputs,
	}, nil
}
