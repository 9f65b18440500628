package prover

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
)

// ErrWrongPublicInputCount is returned whenever a public-input vector's
// length differs from the expected arity: 3 (district_root, nullifier,
// action_id) for the membership circuits, or the count passed to VerifyN.
var ErrWrongPublicInputCount = fmt.Errorf("prover: public input vector has the wrong number of elements")

// NumPublicInputs is the fixed public-instance arity of the
// district-membership circuits (DistrictRoot, Nullifier, ActionID).
// Other circuits in this repository (circuits/keyreg) have a different
// arity and call VerifyN directly instead of this convenience constant.
const NumPublicInputs = 3

// Verify checks proof against vk using only the public fields set on
// publicAssignment (its secret fields are ignored and need not be
// populated), requiring exactly the three-element membership arity. It
// is a thin convenience wrapper over VerifyN for the common case.
func Verify(publicAssignment frontend.Circuit, vk plonk.VerifyingKey, proof plonk.Proof) error {
	return VerifyN(publicAssignment, vk, proof, NumPublicInputs)
}

// VerifyN checks proof against vk using only the public fields set on
// publicAssignment (its secret fields are ignored and need not be
// populated), rejecting any witness whose public-input vector is not
// exactly expectedPublicInputs elements before ever calling into the
// verifier, since a length mismatch there is always an input-shape
// error, never a proof-invalid one. This mirrors Prove's structure.
func VerifyN(publicAssignment frontend.Circuit, vk plonk.VerifyingKey, proof plonk.Proof, expectedPublicInputs int) error {
	witness, err := frontend.NewWitness(publicAssignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("prover: build public witness: %w", err)
	}

	vec, ok := witness.Vector().(fr.Vector)
	if !ok {
		return fmt.Errorf("prover: unexpected public witness vector type %T", witness.Vector())
	}
	if len(vec) != expectedPublicInputs {
		return fmt.Errorf("%w: got %d, want %d", ErrWrongPublicInputCount, len(vec), expectedPublicInputs)
	}

	if err := plonk.Verify(proof, vk, witness); err != nil {
		return fmt.Errorf("prover: proof rejected: %w", err)
	}
	return nil
}
