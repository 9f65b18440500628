package prover

import (
	"encoding/hex"
	"fmt"

	plonkbn254 "github.com/consensys/gnark/backend/plonk/bn254"

	"github.com/shadowatlas/districtproof/field"
)

// EVMCalldata is the canonical on-chain verifier input: Solidity-encoded
// proof bytes plus the public instance vector in the order the Solidity
// verifier expects. There is deliberately no "EVM wrapper circuit" type
// distinct from the native one — Result.Proof from Prove is the exact
// object MarshalSolidity below encodes, so there is no route by which
// keygen's wrapper and the EVM exporter's wrapper could disagree about
// NumInstances()/Instances() semantics; they are the same circuit value.
type EVMCalldata struct {
	ProofHex     string   `json:"proof"`
	PublicInputs []string `json:"public_inputs"`
}

// MarshalSolidity encodes res for on-chain verification. It must be
// called on the same *Result a native Verify call was already run
// against; a type assertion failure here (proof produced by a different
// backend or curve) is a programming error, not a runtime input problem,
// so it is reported distinctly from a proof-invalid error.
func MarshalSolidity(res *Result) (*EVMCalldata, error) {
	bn254Proof, ok := res.Proof.(*plonkbn254.Proof)
	if !ok {
		return nil, fmt.Errorf("prover: EVM export requires a BN254 PLONK proof, got %T", res.Proof)
	}
	if len(res.PublicInputs) != NumPublicInputs {
		return nil, fmt.Errorf("%w: got %d", ErrWrongPublicInputCount, len(res.PublicInputs))
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
