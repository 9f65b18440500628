package keyreg

import (
	"crypto/rand"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/poseidon"
)

// WitnessResult holds the fully populated circuit assignment plus the
// derived identity commitment callers need to register on-chain.
type WitnessResult struct {
	Assignment         Circuit
	IdentityCommitment field.F
	RegistrationNonce  field.F
}

// GenerateIdentitySecret draws a random non-zero BN254 scalar to use as a
// new identity's secret.
func GenerateIdentitySecret() (field.F, error) {
	for {
		bi, err := rand.Int(rand.Reader, ecc.BN254.ScalarField())
		if err != nil {
			return field.Zero(), fmt.Errorf("keyreg: generate identity secret: %w", err)
		}
		if bi.Sign() != 0 {
			return field.FromBigInt(bi), nil
		}
	}
}

// DeriveIdentityCommitment computes the public commitment for a secret,
// matching the circuit's in-circuit derivation exactly.
func DeriveIdentityCommitment(secret field.F) field.F {
	return poseidon.Hash1(secret)
}

// PrepareWitness builds a Circuit assignment proving knowledge of secret
// for the given registration nonce.
func PrepareWitness(secret, nonce field.F) *WitnessResult {
	commitment := DeriveIdentityCommitment(secret)

	return &WitnessResult{
		Assignment: Circuit{
			IdentityCommitment: commitment,
			RegistrationNonce:  nonce,
			IdentitySecret:     secret,
		},
		IdentityCommitment: commitment,
		RegistrationNonce:  nonce,
	}
}
