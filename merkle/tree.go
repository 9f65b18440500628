package merkle

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/poseidon"
)

// Tree is a fixed-depth sparse Merkle tree over identity commitments. Only
// real leaves are stored; every other position is implied by the
// zero-subtree hash chain, so a district with a handful of members still
// has a well-defined root at the full Depth. Leaf indices are integers in
// [0, 2^Depth).
type Tree struct {
	Root       field.F
	Depth      int
	NumLeaves  int
	Levels     []map[int]field.F // Levels[0] = leaves, Levels[Depth] holds the root
	ZeroHashes []field.F         // ZeroHashes[i] = hash of an all-zero subtree at level i
}

// zeroLeaf is the leaf hash of an absent member: Poseidon(0), matching the
// domain-separated hash1 used for real identity commitments so a proof
// about an empty slot hashes the same way a real leaf would.
func zeroLeaf() field.F {
	return poseidon.Hash1(field.Zero())
}

// precomputeZeroHashes builds the zero-subtree hash chain:
//
//	zero[0] = zeroLeafHash
//	zero[i] = Hash2(zero[i-1], zero[i-1])
func precomputeZeroHashes(depth int, zeroLeafHash field.F) []field.F {
	zh := make([]field.F, depth+1)
	zh[0] = zeroLeafHash
	for i := 1; i <= depth; i++ {
		zh[i] = poseidon.Hash2(zh[i-1], zh[i-1])
	}
	return zh
}

// Build constructs a fixed-depth sparse Merkle tree from identity
// commitments, indexed by leafIndex. commitments maps leafIndex to the
// member's identity_commitment; every index outside that map is treated
// as an absent, zero-hashed slot.
func Build(depth int, commitments map[int]field.F) (*Tree, error) {
	maxLeaves := 1 << depth
	for idx := range commitments {
		if idx < 0 || idx >= maxLeaves {
			return nil, fmt.Errorf("merkle.Build: leaf index %d out of range for depth %d", idx, depth)
		}
	}

	zeroHashes := precomputeZeroHashes(depth, zeroLeaf())

	levels := make([]map[int]field.F, depth+1)
	for i := range levels {
		levels[i] = make(map[int]field.F)
	}

	for idx, commitment := range commitments {
		levels[0][idx] = poseidon.Hash1(commitment)
	}

	for lvl := 0; lvl < depth; lvl++ {
		parentIndices := make(map[int]bool)
		for idx := range levels[lvl] {
			parentIndices[idx/2] = true
		}
		for parentIdx := range parentIndices {
			leftIdx := parentIdx * 2
			rightIdx := parentIdx*2 + 1

			left, ok := levels[lvl][leftIdx]
			if !ok {
				left = zeroHashes[lvl]
			}
			right, ok := levels[lvl][rightIdx]
			if !ok {
				right = zeroHashes[lvl]
			}
			levels[lvl+1][parentIdx] = poseidon.Hash2(left, right)
		}
	}

	root, ok := levels[depth][0]
	if !ok {
		root = zeroHashes[depth]
	}

	return &Tree{
		Root:       root,
		Depth:      depth,
		NumLeaves:  len(commitments),
		Levels:     levels,
		ZeroHashes: zeroHashes,
	}, nil
}

// Proof is a fixed-size Merkle opening for one leaf index: Siblings has
// exactly Depth elements, Siblings[i] is the sibling at level i, and
// Directions[i] follows the circuit convention — 0 when the current node
// is the left child (sibling on the right), 1 when it is the right child
// (sibling on the left).
type Proof struct {
	LeafHash   field.F
	Siblings   []field.F
	Directions []int
}

// Open returns the Merkle opening for leafIndex. It always succeeds for
// any in-range index, real or absent, since absent slots have a
// well-defined zero hash.
func (t *Tree) Open(leafIndex int) (*Proof, error) {
	maxLeaves := 1 << t.Depth
	if leafIndex < 0 || leafIndex >= maxLeaves {
		return nil, fmt.Errorf("merkle.Open: leaf index %d out of range for depth %d", leafIndex, t.Depth)
	}

	siblings := make([]field.F, t.Depth)
	directions := make([]int, t.Depth)

	idx := leafIndex
	for lvl := 0; lvl < t.Depth; lvl++ {
		var siblingIdx int
		if idx%2 == 0 {
			siblingIdx = idx + 1
			directions[lvl] = 0
		} else {
			siblingIdx = idx - 1
			directions[lvl] = 1
		}
		sib, ok := t.Levels[lvl][siblingIdx]
		if !ok {
			sib = t.ZeroHashes[lvl]
		}
		siblings[lvl] = sib
		idx /= 2
	}

	leafHash, ok := t.Levels[0][leafIndex]
	if !ok {
		leafHash = t.ZeroHashes[0]
	}

	return &Proof{LeafHash: leafHash, Siblings: siblings, Directions: directions}, nil
}

// VerifyProof recomputes the root from a leaf hash and opening,
// out-of-circuit, and reports whether it matches root. It is the
// non-circuit counterpart of the in-circuit gadget (gadget.go), used by
// tests and by tooling that wants to sanity-check a witness before
// spending a proving run on it.
func VerifyProof(leafHash field.F, proof *Proof, root field.F) bool {
	cur, ok := RootFromProof(leafHash, proof)
	if !ok {
		return false
	}
	return cur.Equal(&root)
}

// RootFromProof recomputes the root implied by a leaf hash and opening,
// out-of-circuit, without comparing it against any expected value. A
// caller that only has a leaf and a sibling path — never a full Tree, as
// is the case for the foreign-language shim, which receives its path
// from an external caller rather than building a tree locally — uses
// this to derive the public district_root it must expose.
func RootFromProof(leafHash field.F, proof *Proof) (field.F, bool) {
	if len(proof.Siblings) != len(proof.Directions) {
		return field.Zero(), false
	}
	cur := leafHash
	for i := range proof.Siblings {
		sib := proof.Siblings[i]
		if proof.Directions[i] == 1 {
			cur = poseidon.Hash2(sib, cur)
		} else {
			cur = poseidon.Hash2(cur, sib)
		}
	}
	return cur, true
}

// Save writes the tree to w in a deterministic binary format:
//
//	uint32(depth) | uint32(numLeaves)
//	for each level 0..depth:
//	  uint32(count)
//	  for each entry (sorted by index): uint32(index) | [32]byte(hash)
//
// Zero hashes are not stored; they are recomputed from the well-known
// zero leaf on load.
func (t *Tree) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(t.Depth)); err != nil {
		return fmt.Errorf("write depth: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(t.NumLeaves)); err != nil {
		return fmt.Errorf("write numLeaves: %w", err)
	}
	for lvl := 0; lvl <= t.Depth; lvl++ {
		m := t.Levels[lvl]
		if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
			return fmt.Errorf("write level %d count: %w", lvl, err)
		}
		indices := sortedKeys(m)
		for _, idx := range indices {
			if err := binary.Write(w, binary.BigEndian, uint32(idx)); err != nil {
				return fmt.Errorf("write level %d index: %w", lvl, err)
			}
			h := m[idx]
			b := h.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return fmt.Errorf("write level %d hash: %w", lvl, err)
			}
		}
	}
	return nil
}

// Load reads a tree written by Save.
func Load(r io.Reader) (*Tree, error) {
	var depth, numLeaves uint32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return nil, fmt.Errorf("read depth: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numLeaves); err != nil {
		return nil, fmt.Errorf("read numLeaves: %w", err)
	}

	zeroHashes := precomputeZeroHashes(int(depth), zeroLeaf())

	levels := make([]map[int]field.F, depth+1)
	for lvl := 0; lvl <= int(depth); lvl++ {
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return nil, fmt.Errorf("read level %d count: %w", lvl, err)
		}
		m := make(map[int]field.F, count)
		var buf [32]byte
		for j := uint32(0); j < count; j++ {
			var idx uint32
			if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
				return nil, fmt.Errorf("read level %d index: %w", lvl, err)
			}
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return nil, fmt.Errorf("read level %d hash: %w", lvl, err)
			}
			var h field.F
			h.SetBytes(buf[:])
			m[int(idx)] = h
		}
		levels[lvl] = m
	}

	root := zeroHashes[depth]
	if top, ok := levels[depth][0]; ok {
		root = top
	}

	return &Tree{
		Root:       root,
		Depth:      int(depth),
		NumLeaves:  int(numLeaves),
		Levels:     levels,
		ZeroHashes: zeroHashes,
	}, nil
}

func sortedKeys(m map[int]field.F) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		key := keys[i]
		j := i - 1
		for j >= 0 && keys[j] > key {
			keys[j+1] = keys[j]
			j--
		}
		keys[j+1] = key
	}
	return keys
}
