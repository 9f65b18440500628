package keyreg_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test"
	"github.com/consensys/gnark/test/unsafekzg"

	"github.com/shadowatlas/districtproof/circuits/keyreg"
	"github.com/shadowatlas/districtproof/field"
)

func fieldOf(v uint64) field.F {
	var f field.F
	f.SetUint64(v)
	return f
}

// TestHappyPathMockProver checks that a genuine (secret, nonce) pair
// satisfies the circuit and that the exposed commitment matches what
// PrepareWitness independently derived.
func TestHappyPathMockProver(t *testing.T) {
	secret, err := keyreg.GenerateIdentitySecret()
	if err != nil {
		t.Fatalf("GenerateIdentitySecret: %v", err)
	}
	nonce := fieldOf(42)

	result := keyreg.PrepareWitness(secret, nonce)

	expected := keyreg.DeriveIdentityCommitment(secret)
	if !result.IdentityCommitment.Equal(&expected) {
		t.Fatalf("commitment mismatch")
	}

	assert := test.NewAssert(t)
	assert.SolvingSucceeded(&keyreg.Circuit{}, &result.Assignment, test.WithCurves(ecc.BN254))
}

// TestWrongSecretMockProverFails checks that a secret not matching the
// claimed commitment is rejected by the constraint system.
func TestWrongSecretMockProverFails(t *testing.T) {
	secret, err := keyreg.GenerateIdentitySecret()
	if err != nil {
		t.Fatalf("GenerateIdentitySecret: %v", err)
	}
	wrongSecret, err := keyreg.GenerateIdentitySecret()
	if err != nil {
		t.Fatalf("GenerateIdentitySecret: %v", err)
	}

	result := keyreg.PrepareWitness(secret, fieldOf(1))
	tampered := result.Assignment
	tampered.IdentitySecret = wrongSecret

	assert := test.NewAssert(t)
	assert.SolvingFailed(&keyreg.Circuit{}, &tampered, test.WithCurves(ecc.BN254))
}

// TestZeroSecretMockProverFails checks that a zero secret, which would
// trivially derive a known commitment, is rejected outright.
func TestZeroSecretMockProverFails(t *testing.T) {
	assignment := &keyreg.Circuit{
		IdentityCommitment: field.Zero(),
		RegistrationNonce:  fieldOf(1),
		IdentitySecret:     field.Zero(),
	}

	assert := test.NewAssert(t)
	assert.SolvingFailed(&keyreg.Circuit{}, assignment, test.WithCurves(ecc.BN254))
}

// TestEndToEndPlonk compiles, runs an unsafe dev PLONK setup, proves, and
// verifies a registration proof end to end.
func TestEndToEndPlonk(t *testing.T) {
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, &keyreg.Circuit{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		t.Fatalf("generate SRS: %v", err)
	}

	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		t.Fatalf("plonk setup: %v", err)
	}

	secret, err := keyreg.GenerateIdentitySecret()
	if err != nil {
		t.Fatalf("GenerateIdentitySecret: %v", err)
	}
	result := keyreg.PrepareWitness(secret, fieldOf(7))

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("build witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}

	proof, err := plonk.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := plonk.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}
