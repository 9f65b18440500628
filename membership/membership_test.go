package membership_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test"
	"github.com/consensys/gnark/test/unsafekzg"

	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/membership"
	"github.com/shadowatlas/districtproof/merkle"
	"github.com/shadowatlas/districtproof/poseidon"
)

func fieldOf(v uint64) field.F {
	var f field.F
	f.SetUint64(v)
	return f
}

// buildSingleMemberTree builds a config.Depth tree with one real member at
// leafIndex, which the scenarios below open and prove against.
func buildSingleMemberTree(t *testing.T, leafIndex int, identity field.F) *merkle.Tree {
	t.Helper()
	return buildMemberTree(t, config.Depth, leafIndex, identity)
}

func buildMemberTree(t *testing.T, depth, leafIndex int, identity field.F) *merkle.Tree {
	t.Helper()
	tr, err := merkle.Build(depth, map[int]field.F{leafIndex: identity})
	if err != nil {
		t.Fatalf("merkle.Build: %v", err)
	}
	return tr
}

// TestHappyPathMockProver is end-to-end scenario 1 at the constraint
// level: a genuine opening satisfies the circuit and the exposed outputs
// match what PrepareWitness independently computed.
func TestHappyPathMockProver(t *testing.T) {
	identity := fieldOf(1001)
	actionID := fieldOf(555)
	tr := buildSingleMemberTree(t, 0, identity)

	result, err := membership.PrepareWitness(tr, identity, 0, actionID)
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}

	if !result.DistrictRoot.Equal(&tr.Root) {
		t.Fatalf("district root mismatch")
	}
	expectedNullifier := poseidon.Hash2(identity, actionID)
	if !result.Nullifier.Equal(&expectedNullifier) {
		t.Fatalf("nullifier mismatch")
	}

	assert := test.NewAssert(t)
	assert.SolvingSucceeded(&membership.Circuit{}, &result.Assignment, test.WithCurves(ecc.BN254))
}

// TestWrongSiblingStillSatisfiesButRootDiverges is end-to-end scenario 4:
// a tampered sibling still solves the circuit (the circuit honestly
// computes from whatever witnesses it is given) but the emitted root no
// longer matches the real tree's root, which is exactly what the
// out-of-circuit whitelist check is supposed to catch.
func TestWrongSiblingStillSatisfiesButRootDiverges(t *testing.T) {
	identity := fieldOf(1001)
	actionID := fieldOf(555)
	tr := buildSingleMemberTree(t, 0, identity)

	result, err := membership.PrepareWitness(tr, identity, 0, actionID)
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}

	tampered := result.Assignment
	tampered.MerklePath[0] = fieldOf(999999999)
	// DistrictRoot must match whatever the circuit actually computes, or
	// the mock prover rejects the assignment outright; scenario 4 is about
	// the *computed* root diverging from the tree's real root, which we
	// check directly below rather than through a failing solve.
	tamperedPath := make([]field.F, len(tampered.MerklePath))
	for i, v := range tampered.MerklePath {
		tamperedPath[i] = v.(field.F)
	}
	tampered.DistrictRoot = computeRootFromTamperedPath(t, identity, 0, tamperedPath)

	assert := test.NewAssert(t)
	assert.SolvingSucceeded(&membership.Circuit{}, &tampered, test.WithCurves(ecc.BN254))

	if tampered.DistrictRoot == tr.Root {
		t.Fatalf("tampered root unexpectedly matches the real tree root")
	}
}

// computeRootFromTamperedPath mirrors merkle.Verify out-of-circuit so the
// test can predict what the circuit will compute for a tampered path,
// without needing a second mock-prover run just to read the output.
func computeRootFromTamperedPath(t *testing.T, identity field.F, leafIndex int, path []field.F) field.F {
	t.Helper()
	cur := poseidon.Hash1(identity)
	idx := leafIndex
	for i := 0; i < len(path); i++ {
		sibling := path[i]
		if idx%2 == 0 {
			cur = poseidon.Hash2(cur, sibling)
		} else {
			cur = poseidon.Hash2(sibling, cur)
		}
		idx /= 2
	}
	return cur
}

// TestCrossActionUnlinkability is end-to-end scenario 5: two nullifiers
// for the same identity under different actions must differ.
func TestCrossActionUnlinkability(t *testing.T) {
	identity := fieldOf(1001)
	actionA := fieldOf(1)
	actionB := fieldOf(2)

	nullifierA := poseidon.Hash2(identity, actionA)
	nullifierB := poseidon.Hash2(identity, actionB)

	if nullifierA.Equal(&nullifierB) {
		t.Fatalf("nullifiers for distinct actions must differ")
	}
}

// TestOutOfRangeIndexMockProverUnsatisfiable is end-to-end scenario 3 /
// invariant I5, run against a small depth-2 circuit so the reconstruction
// failure is cheap to exercise.
type smallCircuit struct {
	DistrictRoot frontend.Variable `gnark:",public"`
	Nullifier    frontend.Variable `gnark:",public"`
	ActionID     frontend.Variable `gnark:",public"`

	IdentityCommitment frontend.Variable
	LeafIndex          frontend.Variable
	MerklePath         [2]frontend.Variable
}

func (c *smallCircuit) Define(api frontend.API) error {
	h := poseidon.NewHasher(api)
	leaf := h.Hash1(c.IdentityCommitment)
	path := []frontend.Variable{c.MerklePath[0], c.MerklePath[1]}
	root := merkle.Verify(api, h, leaf, c.LeafIndex, path, 2)
	nullifier := h.Hash2(c.IdentityCommitment, c.ActionID)
	api.AssertIsEqual(c.DistrictRoot, root)
	api.AssertIsEqual(c.Nullifier, nullifier)
	return nil
}

func TestOutOfRangeIndexMockProverUnsatisfiable(t *testing.T) {
	identity := fieldOf(42)
	actionID := fieldOf(7)
	tr := buildSingleMemberTree2(t, 0, identity)

	proof, err := tr.Open(0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	assignment := &smallCircuit{
		DistrictRoot:       tr.Root,
		Nullifier:          poseidon.Hash2(identity, actionID),
		ActionID:           actionID,
		IdentityCommitment: identity,
		LeafIndex:          fieldOf(5), // out of range for depth 2
	}
	assignment.MerklePath[0] = proof.Siblings[0]
	assignment.MerklePath[1] = proof.Siblings[1]

	assert := test.NewAssert(t)
	assert.SolvingFailed(&smallCircuit{}, assignment, test.WithCurves(ecc.BN254))
}

func buildSingleMemberTree2(t *testing.T, leafIndex int, identity field.F) *merkle.Tree {
	t.Helper()
	tr, err := merkle.Build(2, map[int]field.F{leafIndex: identity})
	if err != nil {
		t.Fatalf("merkle.Build: %v", err)
	}
	return tr
}

// TestEndToEndPlonkProveVerify is the full-prover counterpart of the
// happy-path scenario: compile, unsafe PLONK setup, prove, verify.
func TestEndToEndPlonkProveVerify(t *testing.T) {
	identity := fieldOf(2002)
	actionID := fieldOf(77)
	tr := buildSingleMemberTree(t, 3, identity)

	result, err := membership.PrepareWitness(tr, identity, 3, actionID)
	if err != nil {
		t.Fatalf("PrepareWitness: %v", err)
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, &membership.Circuit{})
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

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
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
