package bitdecomp_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"

	"github.com/shadowatlas/districtproof/bitdecomp"
	"github.com/shadowatlas/districtproof/field"
)

// decomposeCircuit reconstructs V from an n-bit decomposition and exposes
// the reconstructed value, letting the mock prover tell us whether V fits.
type decomposeCircuit struct {
	V frontend.Variable `gnark:",public"`
	N int
}

func (c *decomposeCircuit) Define(api frontend.API) error {
	bits := bitdecomp.Decompose(api, c.V, c.N)
	reconstructed := bitdecomp.Reconstruct(api, bits)
	api.AssertIsEqual(reconstructed, c.V)
	return nil
}

// TestDecomposeInRangeSucceeds is the positive half of I5: a value that
// fits in n bits solves.
func TestDecomposeInRangeSucceeds(t *testing.T) {
	assert := test.NewAssert(t)
	const n = 2
	circuit := &decomposeCircuit{N: n}
	assignment := &decomposeCircuit{V: 3, N: n}
	assert.SolvingSucceeded(circuit, assignment, test.WithCurves(ecc.BN254))
}

// TestDecomposeOutOfRangeFails exercises the range-check invariant
// directly: depth=2, leaf_index=5 against a 2-bit decomposition must be
// unsatisfiable because the reconstruction constraint cannot hold.
func TestDecomposeOutOfRangeFails(t *testing.T) {
	assert := test.NewAssert(t)
	const n = 2
	circuit := &decomposeCircuit{N: n}
	assignment := &decomposeCircuit{V: 5, N: n}
	assert.SolvingFailed(circuit, assignment, test.WithCurves(ecc.BN254))
}

// TestDecomposeBoundaryValue checks that 2^n - 1, the largest in-range
// value, still solves.
func TestDecomposeBoundaryValue(t *testing.T) {
	assert := test.NewAssert(t)
	const n = 4
	circuit := &decomposeCircuit{N: n}
	assignment := &decomposeCircuit{V: 15, N: n}
	assert.SolvingSucceeded(circuit, assignment, test.WithCurves(ecc.BN254))
}

func TestValidateAcceptsInRangeValues(t *testing.T) {
	var v field.F
	v.SetUint64(15)
	if err := bitdecomp.Validate(v, 4); err != nil {
		t.Fatalf("Validate rejected an in-range value: %v", err)
	}
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	var v field.F
	v.SetUint64(16)
	if err := bitdecomp.Validate(v, 4); err == nil {
		t.Fatalf("Validate accepted 16 against a 4-bit width")
	}
}

func TestValidateBoundaryIsExclusive(t *testing.T) {
	var zero, max field.F
	zero.SetUint64(0)
	if err := bitdecomp.Validate(zero, 0); err != nil {
		t.Fatalf("Validate rejected zero against a 0-bit width: %v", err)
	}

	max = field.FromBigInt(big.NewInt(1))
	if err := bitdecomp.Validate(max, 0); err == nil {
		t.Fatalf("Validate accepted 1 against a 0-bit width")
	}
}
