package membership

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/pkg/merkle"
)

// Assignment is the fully populated witness for one membership proof: same
// field layout as Shape, values filled in from a concrete MerklePath.
type Assignment struct {
	Root frontend.Variable `gnark:"root,public"`

	Leaf     frontend.Variable   `gnark:"leaf"`
	Siblings []frontend.Variable `gnark:"siblings"`
	Indices  []frontend.Variable `gnark:"indices"`
}

// Define is identical to Shape's: gnark's witness machinery requires
// Assignment to satisfy frontend.Circuit, but the constraints it would
// generate are only ever exercised when Assignment is compiled directly
// (e.g. in tests that skip the Shape/Assignment split).
func (a *Assignment) Define(api frontend.API) error {
	s := Shape{Root: a.Root, Leaf: a.Leaf, Siblings: a.Siblings, Indices: a.Indices}
	return s.Define(api)
}

// FromPath builds an Assignment from a merkle.MerklePath and the root it
// should verify against. The path's Siblings/Indices length becomes the
// circuit depth, so it must match the depth the Shape was compiled with.
func FromPath(root *big.Int, path *merkle.MerklePath) *Assignment {
	depth := len(path.Siblings)
	siblings := make([]frontend.Variable, depth)
	indices := make([]frontend.Variable, depth)
	for i := 0; i < depth; i++ {
		siblings[i] = path.Siblings[i]
		if path.Indices[i] {
			indices[i] = 1
		} else {
			indices[i] = 0
		}
	}

	return &Assignment{
		Root:     root,
		Leaf:     path.Leaf,
		Siblings: siblings,
		Indices:  indices,
	}
}

// ForLeafIndex composes Tree.GetPath and FromPath in one call.
func ForLeafIndex(tree *merkle.Tree, index int) (*Assignment, error) {
	path, ok := tree.GetPath(index)
	if !ok {
		return nil, fmt.Errorf("membership: leaf index %d out of range (numLeaves=%d)", index, tree.NumLeaves())
	}
	return FromPath(tree.Root(), path), nil
}
