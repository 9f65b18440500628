package merkle

import (
	"encoding/binary"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/poseidon"
)

func hashLeafFromCommitment(commitment field.F) field.F {
	return poseidon.Hash1(commitment)
}

func hashNodesPublic(left, right field.F) field.F {
	return poseidon.Hash2(left, right)
}

// CheckpointScheme lists which tree levels get persisted. Levels must be
// sorted ascending with the last element equal to the tree depth.
//
// A district tree only has 2^Depth leaves (4096 at the production depth),
// so unlike a multi-gigabyte file-chunk tree the gap between checkpoints
// is cheap to rebuild either way; the scheme exists so registries that
// hold many districts can trade a little rebuild latency for a lot less
// storage without changing the proof format.
type CheckpointScheme struct {
	Levels []int
}

// SchemeCompact stores only the root: every opening is rebuilt from the
// commitment set in full.
var SchemeCompact = CheckpointScheme{Levels: []int{12}}

// SchemeBalanced stores two intermediate levels plus the root, splitting
// rebuild work into three parallel gaps.
var SchemeBalanced = CheckpointScheme{Levels: []int{4, 8, 12}}

// CheckpointedTree holds only the entries at checkpoint levels.
type CheckpointedTree struct {
	Root       field.F
	Depth      int
	NumLeaves  int
	Scheme     CheckpointScheme
	Levels     map[int]map[int]field.F
	ZeroHashes []field.F
}

// SaveCheckpointed writes only the checkpoint-level entries of t.
func (t *Tree) SaveCheckpointed(w io.Writer, scheme CheckpointScheme) error {
	if err := validateScheme(scheme, t.Depth); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, uint32(t.Depth)); err != nil {
		return fmt.Errorf("write depth: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(t.NumLeaves)); err != nil {
		return fmt.Errorf("write numLeaves: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(len(scheme.Levels))); err != nil {
		return fmt.Errorf("write level count: %w", err)
	}
	for _, lvl := range scheme.Levels {
		if err := binary.Write(w, binary.BigEndian, uint32(lvl)); err != nil {
			return fmt.Errorf("write level number: %w", err)
		}
	}
	for _, lvl := range scheme.Levels {
		m := t.Levels[lvl]
		if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
			return fmt.Errorf("write level %d count: %w", lvl, err)
		}
		for _, idx := range sortedKeys(m) {
			if err := binary.Write(w, binary.BigEndian, uint32(idx)); err != nil {
				return fmt.Errorf("write level %d index: %w", lvl, err)
			}
			b := m[idx].Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return fmt.Errorf("write level %d hash: %w", lvl, err)
			}
		}
	}
	return nil
}

// LoadCheckpointed reads a tree written by SaveCheckpointed.
func LoadCheckpointed(r io.Reader) (*CheckpointedTree, error) {
	var depth, numLeaves, numLevels uint32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return nil, fmt.Errorf("read depth: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numLeaves); err != nil {
		return nil, fmt.Errorf("read numLeaves: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numLevels); err != nil {
		return nil, fmt.Errorf("read level count: %w", err)
	}

	checkpointLevels := make([]int, numLevels)
	for i := range checkpointLevels {
		var lvl uint32
		if err := binary.Read(r, binary.BigEndian, &lvl); err != nil {
			return nil, fmt.Errorf("read level number: %w", err)
		}
		checkpointLevels[i] = int(lvl)
	}

	zeroHashes := precomputeZeroHashes(int(depth), zeroLeaf())

	levels := make(map[int]map[int]field.F, numLevels)
	for _, lvl := range checkpointLevels {
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
	if rootLevel, ok := levels[int(depth)]; ok {
		if v, ok := rootLevel[0]; ok {
			root = v
		}
	}

	return &CheckpointedTree{
		Root:       root,
		Depth:      int(depth),
		NumLeaves:  int(numLeaves),
		Scheme:     CheckpointScheme{Levels: checkpointLevels},
		Levels:     levels,
		ZeroHashes: zeroHashes,
	}, nil
}

// segment is a contiguous range of tree levels [lo, hi) rebuilt from the
// entries stored at level lo.
type segment struct {
	lo, hi      int
	needsLeaves bool
}

// RebuildProof reconstructs a full Depth-sized Merkle opening by rebuilding
// the gaps between checkpoint levels in parallel. commitmentAt supplies the
// identity commitment for leaf indices in the bottom gap; it is called for
// every leaf index of the bottom-gap subtree that contains leafIndex, and
// an absent slot for which it returns zero hashes to the tree's zero leaf,
// Hash1(0).
func (ct *CheckpointedTree) RebuildProof(leafIndex int, commitmentAt func(int) field.F) (*Proof, error) {
	if leafIndex < 0 || leafIndex >= (1<<ct.Depth) {
		return nil, fmt.Errorf("merkle.RebuildProof: leaf index %d out of range for depth %d", leafIndex, ct.Depth)
	}

	siblings := make([]field.F, ct.Depth)
	directions := make([]int, ct.Depth)
	idx := leafIndex
	for lvl := 0; lvl < ct.Depth; lvl++ {
		if idx%2 == 0 {
			directions[lvl] = 0
		} else {
			directions[lvl] = 1
		}
		idx /= 2
	}

	segments := ct.buildSegments()

	type segResult struct {
		siblings map[int]field.F
		leafHash *field.F
	}
	results := make([]segResult, len(segments))

	var wg sync.WaitGroup
	for si, seg := range segments {
		wg.Add(1)
		go func(si int, seg segment) {
			defer wg.Done()
			gapDepth := seg.hi - seg.lo
			if gapDepth == 0 {
				return
			}
			subtreeAtHi := leafIndex >> seg.hi
			baseStart := subtreeAtHi << gapDepth
			subtreeSize := 1 << gapDepth

			baseEntries := make(map[int]field.F)
			var leafHash *field.F

			if seg.needsLeaves {
				baseEntries, leafHash = ct.rebuildBottomEntries(baseStart, subtreeSize, leafIndex, commitmentAt)
			} else if stored, ok := ct.Levels[seg.lo]; ok {
				for i := 0; i < subtreeSize; i++ {
					absIdx := baseStart + i
					if h, ok := stored[absIdx]; ok {
						baseEntries[absIdx] = h
					}
				}
			}

			segSiblings := ct.buildGap(baseEntries, seg.lo, gapDepth, leafIndex)
			results[si].siblings = segSiblings
			results[si].leafHash = leafHash
		}(si, seg)
	}
	wg.Wait()

	var leafHash field.F
	haveLeaf := false
	filled := make([]bool, ct.Depth)
	for _, res := range results {
		for lvl, sib := range res.siblings {
			siblings[lvl] = sib
			filled[lvl] = true
		}
		if res.leafHash != nil {
			leafHash = *res.leafHash
			haveLeaf = true
		}
	}
	if !haveLeaf {
		leafHash = ct.ZeroHashes[0]
	}
	for i := range siblings {
		if !filled[i] {
			siblings[i] = ct.ZeroHashes[i]
		}
	}

	return &Proof{LeafHash: leafHash, Siblings: siblings, Directions: directions}, nil
}

func (ct *CheckpointedTree) buildSegments() []segment {
	_, hasLevel0 := ct.Levels[0]
	var segments []segment
	prev := 0
	for _, cp := range ct.Scheme.Levels {
		if cp > prev {
			segments = append(segments, segment{lo: prev, hi: cp, needsLeaves: prev == 0 && !hasLevel0})
		}
		prev = cp
	}
	return segments
}

func (ct *CheckpointedTree) rebuildBottomEntries(baseStart, subtreeSize, leafIndex int, commitmentAt func(int) field.F) (map[int]field.F, *field.F) {
	hashes := make([]*field.F, subtreeSize)

	numWorkers := runtime.NumCPU()
	if numWorkers > subtreeSize {
		numWorkers = subtreeSize
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	work := make(chan int, subtreeSize)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for localIdx := range work {
				absIdx := baseStart + localIdx
				h := hashLeafFromCommitment(commitmentAt(absIdx))
				hashes[localIdx] = &h
			}
		}()
	}
	for i := 0; i < subtreeSize; i++ {
		work <- i
	}
	close(work)
	wg.Wait()

	baseEntries := make(map[int]field.F, subtreeSize)
	for i, h := range hashes {
		if h != nil {
			baseEntries[baseStart+i] = *h
		}
	}

	localOffset := leafIndex - baseStart
	var leafHash *field.F
	if localOffset >= 0 && localOffset < subtreeSize && hashes[localOffset] != nil {
		leafHash = hashes[localOffset]
	} else {
		zero := ct.ZeroHashes[0]
		leafHash = &zero
	}
	return baseEntries, leafHash
}

func (ct *CheckpointedTree) buildGap(baseEntries map[int]field.F, baseLvl, gapDepth, leafIndex int) map[int]field.F {
	segSiblings := make(map[int]field.F, gapDepth)
	currentEntries := baseEntries

	for relLvl := 0; relLvl < gapDepth; relLvl++ {
		absLvl := baseLvl + relLvl

		nodeIdx := leafIndex >> absLvl
		sibIdx := nodeIdx ^ 1
		if h, ok := currentEntries[sibIdx]; ok {
			segSiblings[absLvl] = h
		} else {
			segSiblings[absLvl] = ct.ZeroHashes[absLvl]
		}

		nextEntries := make(map[int]field.F)
		parentIndices := make(map[int]bool)
		for idx := range currentEntries {
			parentIndices[idx/2] = true
		}
		for parentIdx := range parentIndices {
			leftIdx := parentIdx * 2
			rightIdx := parentIdx*2 + 1
			left, ok := currentEntries[leftIdx]
			if !ok {
				left = ct.ZeroHashes[absLvl]
			}
			right, ok := currentEntries[rightIdx]
			if !ok {
				right = ct.ZeroHashes[absLvl]
			}
			nextEntries[parentIdx] = hashNodesPublic(left, right)
		}
		currentEntries = nextEntries
	}
	return segSiblings
}

func validateScheme(scheme CheckpointScheme, depth int) error {
	if len(scheme.Levels) == 0 {
		return fmt.Errorf("checkpoint scheme has no levels")
	}
	if scheme.Levels[len(scheme.Levels)-1] != depth {
		return fmt.Errorf("checkpoint scheme must end with tree depth %d, got %d", depth, scheme.Levels[len(scheme.Levels)-1])
	}
	for i := 1; i < len(scheme.Levels); i++ {
		if scheme.Levels[i] <= scheme.Levels[i-1] {
			return fmt.Errorf("checkpoint levels must be sorted ascending: %d <= %d", scheme.Levels[i], scheme.Levels[i-1])
		}
	}
	if scheme.Levels[0] < 0 {
		return fmt.Errorf("checkpoint levels must be non-negative")
	}
	return nil
}
