// Package keyreg implements the identity-registration circuit: proof of
// knowledge of the secret behind a public identity commitment, bound to a
// public registration nonce so a front-runner cannot intercept and replay
// someone else's registration transaction under their own nonce.
package keyreg

import (
	"github.com/consensys/gnark/frontend"

	"github.com/shadowatlas/districtproof/poseidon"
)

// Circuit proves IdentityCommitment == Hash1(IdentitySecret) without
// revealing IdentitySecret. RegistrationNonce is a public input with no
// algebraic constraint on it; its only role is to bind the proof to one
// specific registration transaction, the same way an unconstrained
// reporter address binds a report to one specific reporter.
type Circuit struct {
	// Public inputs, in the order the prover must expose them.
	IdentityCommitment frontend.Variable `gnark:",public"`
	RegistrationNonce  frontend.Variable `gnark:",public"`

	// Private witness.
	IdentitySecret frontend.Variable
}

func (c *Circuit) Define(api frontend.API) error {
	// A zero secret or zero commitment would be trivially known/forgeable.
	api.AssertIsEqual(api.IsZero(c.IdentitySecret), 0)
	api.AssertIsEqual(api.IsZero(c.IdentityCommitment), 0)

	h := poseidon.NewHasher(api)
	derived := h.Hash1(c.IdentitySecret)
	api.AssertIsEqual(c.IdentityCommitment, derived)

	_ = c.RegistrationNonce

	return nil
}
