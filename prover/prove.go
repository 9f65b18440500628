package prover

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/google/uuid"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/pkg/logging"
)

// ErrShapeMismatch reports that a freshly compiled circuit's shape
// disagrees with the configuration params persisted at keygen time.
var ErrShapeMismatch = fmt.Errorf("prover: circuit shape disagrees with persisted configuration")

// Result is everything a caller needs from a successful proof: the
// opaque proof bytes-bearing object and the circuit's public field
// elements in circuit order: for the membership circuits, the three
// elements (district_root, nullifier, action_id).
type Result struct {
	Proof         plonk.Proof
	PublicInputs  []field.F
	CorrelationID string
}

// Prove recompiles circuitShape (to obtain the constraint system the
// proving key operates over), checks its shape against persistedCfg, and
// produces a proof for assignment. The same wrapper type, a
// frontend.Circuit, is used for both compiling and proving so there is
// no chance of a type mismatch between the two stages.
//
// Blinding randomness is drawn from gnark's default cryptographically
// secure source; nothing in this function seeds it deterministically,
// since a deterministic seed would make proofs linkable across runs.
func Prove(circuitShape frontend.Circuit, assignment frontend.Circuit, pk plonk.ProvingKey, persistedCfg ConfigParams) (*Result, error) {
	correlationID := uuid.New()
	log := logging.Logger().With().Str("correlation_id", correlationID.String()).Str("stage", "prove").Logger()

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, circuitShape)
	if err != nil {
		return nil, fmt.Errorf("prover: prove-stage compile: %w", err)
	}
	currentCfg := DeriveConfigParams(ccs, persistedCfg.K)
	if err := persistedCfg.Matches(currentCfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("prover: build witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return nil, fmt.Errorf("prover: extract public witness: %w", err)
	}

	proof, err := plonk.Prove(ccs, pk, witness)
	if err != nil {
		return nil, fmt.Errorf("prover: prove: %w", err)
	}

	vec, ok := publicWitness.Vector().(fr.Vector)
	if !ok {
		return nil, fmt.Errorf("prover: unexpected public witness vector type %T", publicWitness.Vector())
	}
	public := make([]field.F, len(vec))
	copy(public, vec)

	log.Debug().Int("num_public", len(public)).Msg("proof generated")

	return &Result{Proof: proof, PublicInputs: public, CorrelationID: correlationID.String()}, nil
}
