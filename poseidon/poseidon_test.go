package poseidon_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/test"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/poseidon"
)

func mustField(t *testing.T, v uint64) field.F {
	t.Helper()
	var f field.F
	f.SetUint64(v)
	return f
}

// TestHash2NonCommutative exercises I6: swapping the two Hash2 arguments
// must change the output whenever the arguments differ.
func TestHash2NonCommutative(t *testing.T) {
	a := mustField(t, 11)
	b := mustField(t, 97)

	ab := poseidon.Hash2(a, b)
	ba := poseidon.Hash2(b, a)

	if ab.Equal(&ba) {
		t.Fatalf("Hash2(a, b) == Hash2(b, a) for distinct a, b")
	}
}

// TestHashDeterministic is I7: the same inputs always produce the same
// output, across Hash1, Hash2, and Hash3.
func TestHashDeterministic(t *testing.T) {
	a := mustField(t, 7)
	b := mustField(t, 8)
	c := mustField(t, 9)

	h1a := poseidon.Hash1(a)
	h1b := poseidon.Hash1(a)
	if !h1a.Equal(&h1b) {
		t.Fatalf("Hash1 not deterministic")
	}

	h2a := poseidon.Hash2(a, b)
	h2b := poseidon.Hash2(a, b)
	if !h2a.Equal(&h2b) {
		t.Fatalf("Hash2 not deterministic")
	}

	h3a := poseidon.Hash3(a, b, c)
	h3b := poseidon.Hash3(a, b, c)
	if !h3a.Equal(&h3b) {
		t.Fatalf("Hash3 not deterministic")
	}
}

// TestHashesAreDomainSeparated checks that Hash1, Hash2, and Hash3 disagree
// on inputs that would otherwise collide (e.g. Hash1(a) vs Hash2(a, 0)).
func TestHashesAreDomainSeparated(t *testing.T) {
	a := mustField(t, 123)
	zero := field.Zero()

	h1 := poseidon.Hash1(a)
	h2 := poseidon.Hash2(a, zero)
	if h1.Equal(&h2) {
		t.Fatalf("Hash1(a) collides with Hash2(a, 0)")
	}
}

// hasherCircuit exercises the in-circuit Hasher against public inputs A, B
// and asserts the output equals the out-of-circuit poseidon.Hash2(A, B),
// supplied as the public Expected input.
type hasherCircuit struct {
	A        frontend.Variable `gnark:",public"`
	B        frontend.Variable `gnark:",public"`
	Expected frontend.Variable `gnark:",public"`
}

func (c *hasherCircuit) Define(api frontend.API) error {
	h := poseidon.NewHasher(api)
	out := h.Hash2(c.A, c.B)
	api.AssertIsEqual(out, c.Expected)
	return nil
}

// TestHasherGadgetMatchesOutOfCircuit checks that the in-circuit Hash2
// gadget computes the same value as the out-of-circuit Hash2 function for
// the same inputs, using gnark's mock prover.
func TestHasherGadgetMatchesOutOfCircuit(t *testing.T) {
	assert := test.NewAssert(t)

	a := mustField(t, 1001)
	b := mustField(t, 2002)
	expected := poseidon.Hash2(a, b)

	assignment := &hasherCircuit{
		A:        a,
		B:        b,
		Expected: expected,
	}

	assert.SolvingSucceeded(&hasherCircuit{}, assignment, test.WithCurves(ecc.BN254))
}

// TestHasherGadgetRejectsWrongExpectedValue is the negative counterpart:
// an Expected value that does not match Hash2(A, B) must fail to solve.
func TestHasherGadgetRejectsWrongExpectedValue(t *testing.T) {
	assert := test.NewAssert(t)

	a := mustField(t, 1001)
	b := mustField(t, 2002)
	wrong := mustField(t, 9999)

	assignment := &hasherCircuit{
		A:        a,
		B:        b,
		Expected: wrong,
	}

	assert.SolvingFailed(&hasherCircuit{}, assignment, test.WithCurves(ecc.BN254))
}
