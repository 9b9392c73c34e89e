package merkle

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"
)

// ---------------------------------------------------------------------------
// Sparse Merkle Tree
// ---------------------------------------------------------------------------
//
// SparseMerkleTree is the fixed-depth alternative to Tree for membership
// sets too large to materialize as a dense node array: only real (non-zero,
// already-hashed) leaves are stored, per level, and missing positions fall
// back to a precomputed zero-subtree hash chain.

// SparseMerkleTree represents a fixed-depth Merkle tree where only real
// leaves are stored. Missing (padding) positions use precomputed
// zero-subtree hashes.
type SparseMerkleTree struct {
	Root       *big.Int
	Depth      int
	NumLeaves  int                // count of real (non-padding) leaves
	Levels     []map[int]*big.Int // levels[0] = leaves, levels[depth] has the root
	ZeroHashes []*big.Int         // zeroHashes[i] = hash of an all-zero subtree at level i
	RealLeaves *bitset.BitSet     // bit i set iff leaf index i is a real member, not zero padding
}

// PrecomputeZeroHashes builds the zero-subtree hash chain:
//
//	zeroHashes[0] = zeroLeafHash
//	zeroHashes[i] = HashNodes(zeroHashes[i-1], zeroHashes[i-1])
//
// The returned slice has length depth+1 (indices 0..depth).
func PrecomputeZeroHashes(depth int, zeroLeafHash *big.Int) []*big.Int {
	zh := make([]*big.Int, depth+1)
	zh[0] = new(big.Int).Set(zeroLeafHash)
	for i := 1; i <= depth; i++ {
		zh[i] = HashNodes(zh[i-1], zh[i-1])
	}
	return zh
}

// GenerateSparseMerkleTree builds a fixed-depth sparse Merkle tree from a
// set of pre-hashed leaves keyed by their (possibly non-contiguous) index —
// membership sets that have had members revoked leave holes rather than
// shifting every later index down. Any index absent from leaves falls back
// to the precomputed zero-subtree hash at that level. depth must not exceed
// MaxDepth.
func GenerateSparseMerkleTree(leaves map[int]*big.Int, depth int, zeroLeafHash *big.Int) (*SparseMerkleTree, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("merkle: sparse tree depth %d exceeds maximum %d", depth, MaxDepth)
	}

	zeroHashes := PrecomputeZeroHashes(depth, zeroLeafHash)

	levels := make([]map[int]*big.Int, depth+1)
	for i := range levels {
		levels[i] = make(map[int]*big.Int)
	}

	realLeaves := bitset.New(uint(len(leaves)))
	var mu sync.Mutex
	var g errgroup.Group
	leafLevel := levels[0]
	for i, l := range leaves {
		i, l := i, l
		g.Go(func() error {
			mu.Lock()
			leafLevel[i] = l
			realLeaves.Set(uint(i))
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // assignments never error; goroutines only shard the write fan-out

	for lvl := 0; lvl < depth; lvl++ {
		parentIndices := make(map[int]bool)
		for idx := range levels[lvl] {
			parentIndices[idx/2] = true
		}
		for parentIdx := range parentIndices {
			left, ok := levels[lvl][parentIdx*2]
			if !ok {
				left = zeroHashes[lvl]
			}
			right, ok := levels[lvl][parentIdx*2+1]
			if !ok {
				right = zeroHashes[lvl]
			}
			levels[lvl+1][parentIdx] = HashNodes(left, right)
		}
	}

	root, ok := levels[depth][0]
	if !ok {
		root = zeroHashes[depth]
	}

	return &SparseMerkleTree{
		Root:       root,
		Depth:      depth,
		NumLeaves:  len(leaves),
		Levels:     levels,
		ZeroHashes: zeroHashes,
		RealLeaves: realLeaves,
	}, nil
}

// IsReal reports whether leafIndex holds a real (non-padding) member.
func (smt *SparseMerkleTree) IsReal(leafIndex int) bool {
	return smt.RealLeaves != nil && smt.RealLeaves.Test(uint(leafIndex))
}

// GetProof returns a fixed-size Merkle proof for the leaf at the given
// index. The proof has exactly smt.Depth elements. siblings[i] is the
// sibling hash at level i; directions[i] follows the same convention as
// MerklePath.Indices: true iff the current node is the right child.
func (smt *SparseMerkleTree) GetProof(leafIndex int) (siblings []*big.Int, directions []bool) {
	siblings = make([]*big.Int, smt.Depth)
	directions = make([]bool, smt.Depth)

	idx := leafIndex
	for lvl := 0; lvl < smt.Depth; lvl++ {
		var siblingIdx int
		if idx%2 == 0 {
			siblingIdx = idx + 1
			directions[lvl] = false
		} else {
			siblingIdx = idx - 1
			directions[lvl] = true
		}

		sib, ok := smt.Levels[lvl][siblingIdx]
		if !ok {
			sib = smt.ZeroHashes[lvl]
		}
		siblings[lvl] = sib

		idx /= 2
	}

	return siblings, directions
}

// GetLeafHash returns the hash at the given leaf index, using the zero leaf
// hash for positions beyond the real leaves.
func (smt *SparseMerkleTree) GetLeafHash(leafIndex int) *big.Int {
	h, ok := smt.Levels[0][leafIndex]
	if !ok {
		return smt.ZeroHashes[0]
	}
	return h
}

// ---------------------------------------------------------------------------
// SMT Serialization
// ---------------------------------------------------------------------------
//
// Format:
//   uint32(depth) | uint32(numLeaves)
//   For each level 0..depth:
//     uint32(count)
//     For each entry: uint32(index) | [32]byte(hash as big-endian fr.Element)
//
// Zero hashes are NOT stored — they are recomputed from zeroLeafHash on load.

// Save writes the sparse Merkle tree to w in a deterministic binary format.
func (smt *SparseMerkleTree) Save(w io.Writer) error {
	if err := binary.Write(w, binary.BigEndian, uint32(smt.Depth)); err != nil {
		return fmt.Errorf("write depth: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, uint32(smt.NumLeaves)); err != nil {
		return fmt.Errorf("write numLeaves: %w", err)
	}

	for lvl := 0; lvl <= smt.Depth; lvl++ {
		m := smt.Levels[lvl]
		if err := binary.Write(w, binary.BigEndian, uint32(len(m))); err != nil {
			return fmt.Errorf("write level %d count: %w", lvl, err)
		}

		indices := make([]int, 0, len(m))
		for idx := range m {
			indices = append(indices, idx)
		}
		sortInts(indices)

		for _, idx := range indices {
			if err := binary.Write(w, binary.BigEndian, uint32(idx)); err != nil {
				return fmt.Errorf("write level %d index %d: %w", lvl, idx, err)
			}
			var elem fr.Element
			elem.SetBigInt(m[idx])
			b := elem.Bytes()
			if _, err := w.Write(b[:]); err != nil {
				return fmt.Errorf("write level %d hash %d: %w", lvl, idx, err)
			}
		}
	}
	return nil
}

// LoadSparseMerkleTree reads a sparse Merkle tree from r that was written by
// Save. zeroLeafHash is needed to recompute the zero-subtree hash chain.
func LoadSparseMerkleTree(r io.Reader, zeroLeafHash *big.Int) (*SparseMerkleTree, error) {
	var depth, numLeaves uint32
	if err := binary.Read(r, binary.BigEndian, &depth); err != nil {
		return nil, fmt.Errorf("read depth: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &numLeaves); err != nil {
		return nil, fmt.Errorf("read numLeaves: %w", err)
	}

	zeroHashes := PrecomputeZeroHashes(int(depth), zeroLeafHash)

	levels := make([]map[int]*big.Int, depth+1)
	for lvl := 0; lvl <= int(depth); lvl++ {
		var count uint32
		if err := binary.Read(r, binary.BigEndian, &count); err != nil {
			return nil, fmt.Errorf("read level %d count: %w", lvl, err)
		}

		m := make(map[int]*big.Int, int(count))
		var hashBuf [32]byte
		for j := 0; j < int(count); j++ {
			var idx uint32
			if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
				return nil, fmt.Errorf("read level %d index: %w", lvl, err)
			}
			if _, err := io.ReadFull(r, hashBuf[:]); err != nil {
				return nil, fmt.Errorf("read level %d hash: %w", lvl, err)
			}
			var elem fr.Element
			elem.SetBytes(hashBuf[:])
			m[int(idx)] = new(big.Int)
			elem.BigInt(m[int(idx)])
		}
		levels[lvl] = m
	}

	root, ok := levels[depth][0]
	if !ok {
		root = zeroHashes[depth]
	}

	realLeaves := bitset.New(uint(numLeaves))
	for idx := range levels[0] {
		realLeaves.Set(uint(idx))
	}

	return &SparseMerkleTree{
		Root:       root,
		Depth:      int(depth),
		NumLeaves:  int(numLeaves),
		Levels:     levels,
		RealLeaves: realLeaves,
		ZeroHashes: zeroHashes,
	}, nil
}

// sortInts sorts a slice of ints in ascending order (insertion sort,
// suitable for the typically small per-level entry counts).
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		key := s[i]
		j := i - 1
		for j >= 0 && s[j] > key {
			s[j+1] = s[j]
			j--
		}
		s[j+1] = key
	}
}
