package membership

import (
	"fmt"
	"math/big"

	"github.com/Cosmos-Harry/zk-vault/pkg/merkle"
	"github.com/Cosmos-Harry/zk-vault/pkg/vaulterr"
)

// WitnessResult bundles the circuit assignment with the public values a
// caller typically wants for fixture export or logging.
type WitnessResult struct {
	Assignment Assignment
	Root       *big.Int
	Leaf       *big.Int
	Depth      int
}

// PrepareWitness derives the full membership witness for leaf from tree.
func PrepareWitness(tree *merkle.Tree, leaf *big.Int) (*WitnessResult, error) {
	index, ok := tree.FindLeaf(leaf)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vaulterr.ErrLeafNotFound, leaf.String())
	}

	assignment, err := ForLeafIndex(tree, index)
	if err != nil {
		return nil, err
	}

	return &WitnessResult{
		Assignment: *assignment,
		Root:       tree.Root(),
		Leaf:       leaf,
		Depth:      tree.Depth(),
	}, nil
}

// ForSparseLeaf builds an Assignment from a merkle.SparseMerkleTree.
// ForLeafIndex serves a dense Tree, for leaf sets small enough to
// materialize in full; large authenticated sets use this instead, deriving
// the same Siblings/Indices shape from the sparse tree's padding-aware proof.
func ForSparseLeaf(tree *merkle.SparseMerkleTree, leafIndex int) (*Assignment, error) {
	if !tree.IsReal(leafIndex) {
		return nil, fmt.Errorf("%w: index %d is padding, not a real member", vaulterr.ErrLeafNotFound, leafIndex)
	}

	siblings, directions := tree.GetProof(leafIndex)
	path := &merkle.MerklePath{
		Leaf:     tree.GetLeafHash(leafIndex),
		Siblings: siblings,
		Indices:  directions,
	}
	return FromPath(tree.Root, path), nil
}

// ForCheckpointedLeaf builds an Assignment from a merkle.CheckpointedSMT,
// rebuilding whatever levels weren't persisted via readChunk/hashLeaf
// before deriving the membership path. A padding index is rejected only
// when the tree's scheme checkpoints level 0; otherwise the index is not
// classified and its path is rebuilt as is.
func ForCheckpointedLeaf(tree *merkle.CheckpointedSMT, leafIndex int, readChunk func(int) []byte, hashLeaf merkle.LeafHashFunc) (*Assignment, error) {
	if tree.RealLeaves != nil && !tree.IsReal(leafIndex) {
		return nil, fmt.Errorf("%w: index %d is padding, not a real member", vaulterr.ErrLeafNotFound, leafIndex)
	}

	rebuilt := tree.RebuildProof(leafIndex, readChunk, hashLeaf)
	directions := make([]bool, len(rebuilt.Directions))
	for i, d := range rebuilt.Directions {
		directions[i] = d == 1
	}
	path := &merkle.MerklePath{
		Leaf:     rebuilt.LeafHash,
		Siblings: rebuilt.Siblings,
		Indices:  directions,
	}
	return FromPath(tree.Root, path), nil
}
