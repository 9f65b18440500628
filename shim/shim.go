// Package shim is the foreign-language-facing surface: every input and
// output crosses the boundary as hex strings or opaque byte slices, never
// as a gnark type, so this package is the only place in the repository
// that needs to know about the host's hex convention. wasmbind/ binds
// this package's exported API to syscall/js; any other embedder (a CGO
// host, a native test harness) can call it directly instead.
package shim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark/backend/plonk"
	plonkbn254 "github.com/consensys/gnark/backend/plonk/bn254"

	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/membership"
	"github.com/shadowatlas/districtproof/merkle"
	"github.com/shadowatlas/districtproof/poseidon"
	"github.com/shadowatlas/districtproof/prover"
)

// Prover is a loaded proving/verifying key pair for one supported k,
// ready to prove and verify district-membership proofs. It holds no
// mutable state after construction: the same Prover is safe to use for
// multiple proofs concurrently, from multiple goroutines, since pk/vk
// are read-only and prover.Prove/Verify each build their own witness.
type Prover struct {
	k      int
	srsRaw []byte
	pk     plonk.ProvingKey
	vk     plonk.VerifyingKey
	cfg    prover.ConfigParams
	bp     prover.BreakPoints
}

// Keygen runs the full compile-load-ceremony-setup sequence for the
// district-membership circuit at k and persists the resulting artifacts
// to keysDir, so a later New call only has to load, never regenerate.
func Keygen(k int, ceremonyDir, keysDir string) error {
	if k < config.MinK || k > config.MaxK {
		return fmt.Errorf("shim: unsupported k=%d, must be in [%d, %d]", k, config.MinK, config.MaxK)
	}
	return prover.Keygen(&membership.Circuit{}, k, ceremonyDir, keysDir, prefixFor(k))
}

// New loads a previously generated key pair for k from keysDir (see
// Keygen), plus the ceremony file it was built from (needed only so
// ExportCache can round-trip the SRS without a second keygen run). It
// rejects k outside [config.MinK, config.MaxK] before ever touching the
// filesystem.
func New(k int, ceremonyDir, keysDir string) (*Prover, error) {
	if k < config.MinK || k > config.MaxK {
		return nil, fmt.Errorf("shim: unsupported k=%d, must be in [%d, %d]", k, config.MinK, config.MaxK)
	}
	srsRaw, err := prover.LoadCeremonyParams(ceremonyDir, k)
	if err != nil {
		return nil, err
	}
	pk, vk, cfg, bp, err := prover.LoadKeys(keysDir, prefixFor(k))
	if err != nil {
		return nil, err
	}
	return &Prover{k: k, srsRaw: srsRaw, pk: pk, vk: vk, cfg: cfg, bp: bp}, nil
}

// NewFromRaw builds a Prover directly from in-memory bytes rather than
// filesystem paths, for embedders (the WASM binding) whose ceremony
// parameters and keys are go:embed-ed into the binary instead of read
// from disk. ceremonyRaw is verified against k's canonical digest exactly
// as LoadCeremonyParams would verify a file's contents.
func NewFromRaw(k int, ceremonyRaw []byte, pk plonk.ProvingKey, vk plonk.VerifyingKey, cfg prover.ConfigParams, bp prover.BreakPoints) (*Prover, error) {
	if k < config.MinK || k > config.MaxK {
		return nil, fmt.Errorf("shim: unsupported k=%d, must be in [%d, %d]", k, config.MinK, config.MaxK)
	}
	if err := prover.VerifyCeremonyParams(ceremonyRaw, k); err != nil {
		return nil, err
	}
	return &Prover{k: k, srsRaw: ceremonyRaw, pk: pk, vk: vk, cfg: cfg, bp: bp}, nil
}

func prefixFor(k int) string {
	return fmt.Sprintf("membership_k%d", k)
}

// Prove builds a membership witness from externally supplied hex/decimal
// values and a sibling path, proves it, and returns the opaque proof
// bytes. The public instance triple is not returned here — a caller that
// needs it separately (e.g. to submit alongside the proof bytes) derives
// it itself with HashSingle/HashPair, matching the "prove returns just
// bytes" contract.
func (p *Prover) Prove(identityHex, actionIDStr string, leafIndex int, siblingHex []string) ([]byte, error) {
	identity, err := field.FromHex(identityHex)
	if err != nil {
		return nil, fmt.Errorf("shim: identity: %w", err)
	}
	actionID, err := field.ParseActionID(actionIDStr)
	if err != nil {
		return nil, fmt.Errorf("shim: action id: %w", err)
	}
	if len(siblingHex) != config.Depth {
		return nil, fmt.Errorf("shim: expected %d siblings, got %d", config.Depth, len(siblingHex))
	}
	siblings := make([]field.F, config.Depth)
	for i, s := range siblingHex {
		siblings[i], err = field.FromHex(s)
		if err != nil {
			return nil, fmt.Errorf("shim: sibling %d: %w", i, err)
		}
	}

	leafIndexField := field.FromBigInt(big.NewInt(int64(leafIndex)))
	directions, err := directionsOf(leafIndex, config.Depth)
	if err != nil {
		return nil, fmt.Errorf("shim: %w", err)
	}

	leafHash := poseidon.Hash1(identity)
	opening := &merkle.Proof{LeafHash: leafHash, Siblings: siblings, Directions: directions}
	root, ok := merkle.RootFromProof(leafHash, opening)
	if !ok {
		return nil, fmt.Errorf("shim: malformed merkle opening")
	}
	nullifier := poseidon.Hash2(identity, actionID)

	var assignment membership.Circuit
	assignment.DistrictRoot = root
	assignment.Nullifier = nullifier
	assignment.ActionID = actionID
	assignment.IdentityCommitment = identity
	assignment.LeafIndex = leafIndexField
	for i, s := range siblings {
		assignment.MerklePath[i] = s
	}

	result, err := prover.ProveMembership(&assignment, p.pk, p.cfg)
	if err != nil {
		return nil, err
	}

	bn254Proof, ok := result.Proof.(*plonkbn254.Proof)
	if !ok {
		return nil, fmt.Errorf("shim: unexpected proof type %T", result.Proof)
	}
	var buf bytes.Buffer
	if _, err := bn254Proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("shim: serialize proof: %w", err)
	}
	return buf.Bytes(), nil
}

// Verify checks proofBytes against the three public instances
// (district_root, nullifier, action_id), and reports whether it is valid.
// district_root and nullifier are hex; action_id is hex or decimal per
// the action-id convention.
func (p *Prover) Verify(proofBytes []byte, instanceHex [3]string) (bool, error) {
	districtRoot, err := field.FromHex(instanceHex[0])
	if err != nil {
		return false, fmt.Errorf("shim: district_root: %w", err)
	}
	nullifier, err := field.FromHex(instanceHex[1])
	if err != nil {
		return false, fmt.Errorf("shim: nullifier: %w", err)
	}
	actionID, err := field.ParseActionID(instanceHex[2])
	if err != nil {
		return false, fmt.Errorf("shim: action_id: %w", err)
	}

	var proof plonkbn254.Proof
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return false, fmt.Errorf("shim: deserialize proof: %w", err)
	}

	if err := prover.VerifyMembership(districtRoot, nullifier, actionID, p.vk, &proof); err != nil {
		return false, err
	}
	return true, nil
}

// ExportCache serializes (ceremony params, pk, vk, config, break points)
// for host-side persistence. It never touches the filesystem: the
// ceremony bytes it packages are the ones New/NewFromRaw already loaded.
func (p *Prover) ExportCache() ([]byte, error) {
	return prover.ExportCacheJSON(p.k, p.srsRaw, p.pk, p.vk, p.cfg, p.bp)
}

// FromCache restores a Prover from a blob produced by ExportCache,
// without touching the filesystem. The restored Prover's pk/vk carry the
// config params and break points from the blob, never re-derived.
func FromCache(blobJSON []byte) (*Prover, error) {
	var blob prover.CacheBlob
	if err := unmarshalCacheBlob(blobJSON, &blob); err != nil {
		return nil, err
	}
	srsRaw, pk, vk, cfg, bp, err := prover.FromCache(&blob)
	if err != nil {
		return nil, err
	}
	return &Prover{k: blob.K, srsRaw: srsRaw, pk: pk, vk: vk, cfg: cfg, bp: bp}, nil
}

// HashPair is the standalone two-input Poseidon hash exposed for hosts
// that want to precompute Merkle siblings off-circuit without linking
// the whole prover.
func HashPair(leftHex, rightHex string) (string, error) {
	l, err := field.FromHex(leftHex)
	if err != nil {
		return "", fmt.Errorf("shim: left: %w", err)
	}
	r, err := field.FromHex(rightHex)
	if err != nil {
		return "", fmt.Errorf("shim: right: %w", err)
	}
	return field.ToHex(poseidon.Hash2(l, r)), nil
}

// HashSingle is the standalone one-input Poseidon hash exposed so a host
// can derive an identity_commitment from a raw identity secret without
// linking the whole prover.
func HashSingle(valueHex string) (string, error) {
	v, err := field.FromHex(valueHex)
	if err != nil {
		return "", fmt.Errorf("shim: value: %w", err)
	}
	return field.ToHex(poseidon.Hash1(v)), nil
}

// directionsOf extracts depth direction bits from leafIndex, using the
// same convention as merkle.Tree.Open: 0 when the current node is the
// left child at that level (leafIndex bit clear), 1 otherwise. It
// rejects an out-of-range leafIndex before any hashing happens.
func directionsOf(leafIndex, depth int) ([]int, error) {
	maxLeaves := 1 << depth
	if leafIndex < 0 || leafIndex >= maxLeaves {
		return nil, fmt.Errorf("leaf index %d out of range for depth %d", leafIndex, depth)
	}
	directions := make([]int, depth)
	idx := leafIndex
	for lvl := 0; lvl < depth; lvl++ {
		directions[lvl] = idx % 2
		idx /= 2
	}
	return directions, nil
}

func unmarshalCacheBlob(blobJSON []byte, blob *prover.CacheBlob) error {
	if err := json.Unmarshal(blobJSON, blob); err != nil {
		return fmt.Errorf("shim: decode cache blob: %w", err)
	}
	return nil
}
