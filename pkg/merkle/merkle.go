// Package merkle implements the binary authenticated tree over Poseidon
// field elements described by the attestation scheme: a dense flat-array
// tree for ordinary membership sets, plus a sparse/checkpointed variant
// (in sparse.go and checkpoint.go) for sets too large to keep fully
// materialized in memory.
package merkle

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
)

// MaxDepth is the maximum permitted tree depth.
const MaxDepth = 30

// HashFunc hashes two child values into their parent. Exported so callers
// assembling leaves from raw data can reuse the same hashing primitive.
type HashFunc func(left, right *big.Int) *big.Int

// LeafHashFunc hashes a single raw chunk into a leaf-level field element.
// Distinct from HashFunc because a checkpointed tree's bottom gap is
// rebuilt from caller-supplied source data, not from two existing nodes.
type LeafHashFunc func(chunk []byte) *big.Int

// HashNodes is the canonical two-to-one hash used throughout this package:
// Poseidon over the canonical field encoding of left and right.
func HashNodes(left, right *big.Int) *big.Int {
	return poseidon.HashTwo(left, right)
}

// Tree is a complete binary tree over field elements, padded to the next
// power of two with zero. Stored as a flat level-order array of
// 2*paddedSize-1 elements: root at index 0, children of node i at 2i+1 and
// 2i+2.
//
// Padding leaves are zero, so a real leaf equal to zero cannot be told
// apart from padding inside the membership circuit: a path to any padding
// slot proves membership of zero. Real leaves are expected to be nonzero.
type Tree struct {
	nodes     []*big.Int
	depth     int
	numLeaves int
	leafIndex map[[32]byte]int // canonical leaf encoding -> index, real leaves only
}

// computeDepth returns ceil(log2(max(numLeaves, 2))).
func computeDepth(numLeaves int) int {
	if numLeaves <= 1 {
		return 1
	}
	d := 0
	n := numLeaves - 1
	for n > 0 {
		n >>= 1
		d++
	}
	return d
}

func canonicalKey(v *big.Int) [32]byte {
	var e fr.Element
	e.SetBigInt(v)
	return e.Bytes()
}

// Build constructs a tree from leaves, padding to the next power of two
// with the zero field element. An empty slice produces a single-node tree
// with root zero and depth 0; a single leaf uses depth 1 (padded to 2).
// Building a tree that would require depth > MaxDepth is rejected.
func Build(leaves []*big.Int) (*Tree, error) {
	if len(leaves) == 0 {
		return &Tree{
			nodes:     []*big.Int{big.NewInt(0)},
			depth:     0,
			numLeaves: 0,
			leafIndex: map[[32]byte]int{},
		}, nil
	}

	depth := computeDepth(len(leaves))
	if depth > MaxDepth {
		return nil, fmt.Errorf("merkle: tree depth %d exceeds maximum %d", depth, MaxDepth)
	}

	paddedSize := 1 << uint(depth)
	totalNodes := 2*paddedSize - 1
	leafStart := paddedSize - 1

	nodes := make([]*big.Int, totalNodes)
	for i := 0; i < paddedSize; i++ {
		if i < len(leaves) {
			nodes[leafStart+i] = leaves[i]
		} else {
			nodes[leafStart+i] = big.NewInt(0)
		}
	}

	if err := hashLevelsParallel(nodes, leafStart); err != nil {
		return nil, err
	}

	leafIndex := make(map[[32]byte]int, len(leaves))
	for i, l := range leaves {
		leafIndex[canonicalKey(l)] = i
	}

	return &Tree{
		nodes:     nodes,
		depth:     depth,
		numLeaves: len(leaves),
		leafIndex: leafIndex,
	}, nil
}

// hashLevelsParallel computes every internal node bottom-up, sharding each
// level's work across an errgroup of workers.
func hashLevelsParallel(nodes []*big.Int, leafStart int) error {
	// Levels run from depth-1 down to 0: level d occupies node indices
	// [2^d - 1, 2^(d+1) - 2]. leafStart == 2^depth - 1 is the leaf level
	// itself, so internal levels are 0..depth-1.
	numLevels := 0
	for (1<<uint(numLevels))-1 < leafStart {
		numLevels++
	}

	for lvl := numLevels - 1; lvl >= 0; lvl-- {
		start := (1 << uint(lvl)) - 1
		end := (1 << uint(lvl+1)) - 2 // inclusive
		if end > leafStart-1 {
			end = leafStart - 1
		}

		var g errgroup.Group
		for idx := start; idx <= end; idx++ {
			idx := idx
			g.Go(func() error {
				nodes[idx] = HashNodes(nodes[2*idx+1], nodes[2*idx+2])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// Root returns the tree's root field element.
func (t *Tree) Root() *big.Int {
	return t.nodes[0]
}

// Depth returns the tree depth.
func (t *Tree) Depth() int { return t.depth }

// NumLeaves returns the number of real (non-padding) leaves.
func (t *Tree) NumLeaves() int { return t.numLeaves }

// FindLeaf returns the zero-based index of leaf, or ok=false if it is not a
// real leaf of this tree.
func (t *Tree) FindLeaf(leaf *big.Int) (index int, ok bool) {
	idx, ok := t.leafIndex[canonicalKey(leaf)]
	return idx, ok
}

// Contains reports whether leaf is a real leaf of this tree.
func (t *Tree) Contains(leaf *big.Int) bool {
	_, ok := t.FindLeaf(leaf)
	return ok
}

// MerklePath is the witness needed to recompute a tree's root from one leaf.
// indices[k] == true iff, at level k counting up from the leaf, the current
// node is the RIGHT child (sibling is the LEFT one).
type MerklePath struct {
	Leaf      *big.Int
	Siblings  []*big.Int
	Indices   []bool
}

// ComputeRoot replays the verification formula and returns the resulting
// root candidate.
func (p *MerklePath) ComputeRoot() *big.Int {
	current := p.Leaf
	for k := 0; k < len(p.Siblings); k++ {
		if p.Indices[k] {
			current = HashNodes(p.Siblings[k], current)
		} else {
			current = HashNodes(current, p.Siblings[k])
		}
	}
	return current
}

// Verify reports whether replaying this path reproduces root.
func (p *MerklePath) Verify(root *big.Int) bool {
	return p.ComputeRoot().Cmp(root) == 0
}

// GetPath returns the Merkle path for leaf index i, or ok=false if
// i >= NumLeaves().
func (t *Tree) GetPath(i int) (path *MerklePath, ok bool) {
	if i < 0 || i >= t.numLeaves {
		return nil, false
	}

	paddedSize := 1 << uint(t.depth)
	leafStart := paddedSize - 1
	nodeIndex := leafStart + i

	siblings := make([]*big.Int, t.depth)
	indices := make([]bool, t.depth)

	for k := 0; k < t.depth; k++ {
		isRight := nodeIndex%2 == 0 // in a 0-indexed flat array, left child is at 2p+1 (odd), right at 2p+2 (even)
		var siblingIndex int
		if isRight {
			siblingIndex = nodeIndex - 1
		} else {
			siblingIndex = nodeIndex + 1
		}
		siblings[k] = t.nodes[siblingIndex]
		indices[k] = isRight
		nodeIndex = (nodeIndex - 1) / 2
	}

	return &MerklePath{Leaf: t.nodes[leafStart+i], Siblings: siblings, Indices: indices}, true
}

// GetPathForLeaf composes FindLeaf and GetPath.
func (t *Tree) GetPathForLeaf(leaf *big.Int) (path *MerklePath, ok bool) {
	idx, ok := t.FindLeaf(leaf)
	if !ok {
		return nil, false
	}
	return t.GetPath(idx)
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------
//
// Binary format: uint32(depth) | uint32(numLeaves) | uint32(nodeCount) |
// nodeCount * [32]byte (canonical big-endian field encoding, level order).
// The sidecar leaf-index map is not persisted; from_bytes rebuilds it from
// the first numLeaves leaf positions.

// ToBytes serializes the flat node array plus depth and leaf count.
func (t *Tree) ToBytes() ([]byte, error) {
	buf := make([]byte, 0, 12+len(t.nodes)*32)
	var hdr [12]byte
	binary.BigEndian.PutUint32(hdr[0:4], uint32(t.depth))
	binary.BigEndian.PutUint32(hdr[4:8], uint32(t.numLeaves))
	binary.BigEndian.PutUint32(hdr[8:12], uint32(len(t.nodes)))
	buf = append(buf, hdr[:]...)

	for _, n := range t.nodes {
		var e fr.Element
		e.SetBigInt(n)
		b := e.Bytes()
		buf = append(buf, b[:]...)
	}
	return buf, nil
}

// FromBytes deserializes a tree written by ToBytes and rebuilds the
// sidecar leaf-index map.
func FromBytes(data []byte) (*Tree, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("merkle: truncated tree data")
	}
	depth := int(binary.BigEndian.Uint32(data[0:4]))
	numLeaves := int(binary.BigEndian.Uint32(data[4:8]))
	nodeCount := int(binary.BigEndian.Uint32(data[8:12]))

	expected := 12 + nodeCount*32
	if len(data) != expected {
		return nil, fmt.Errorf("merkle: tree data length %d, expected %d", len(data), expected)
	}

	nodes := make([]*big.Int, nodeCount)
	off := 12
	for i := 0; i < nodeCount; i++ {
		var e fr.Element
		e.SetBytes(data[off : off+32])
		nodes[i] = new(big.Int)
		e.BigInt(nodes[i])
		off += 32
	}

	leafIndex := map[[32]byte]int{}
	if nodeCount > 1 {
		paddedSize := 1 << uint(depth)
		leafStart := paddedSize - 1
		for i := 0; i < numLeaves; i++ {
			leafIndex[canonicalKey(nodes[leafStart+i])] = i
		}
	}

	return &Tree{nodes: nodes, depth: depth, numLeaves: numLeaves, leafIndex: leafIndex}, nil
}

// Save writes ToBytes' output to w.
func (t *Tree) Save(w io.Writer) error {
	b, err := t.ToBytes()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Load reads a tree previously written by Save.
func Load(r io.Reader) (*Tree, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("merkle: read tree: %w", err)
	}
	return FromBytes(b)
}
