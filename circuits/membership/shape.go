// Package membership implements the Merkle-tree membership proof circuit:
// proving knowledge of a leaf and an authentication path to a public root
// without revealing which leaf or where it sits in the tree.
package membership

import (
	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
)

// Shape is the compile-time circuit skeleton: field sizes fixed, values
// absent. Depth is baked in at construction since gnark sizes a circuit's
// slices once, at Compile, from whatever schema the Shape instance exposes.
type Shape struct {
	Root frontend.Variable `gnark:"root,public"`

	Leaf     frontend.Variable   `gnark:"leaf"`
	Siblings []frontend.Variable `gnark:"siblings"`
	Indices  []frontend.Variable `gnark:"indices"`
}

// NewShape returns a Shape sized for a tree of the given depth, ready to be
// passed to frontend.Compile.
func NewShape(depth int) *Shape {
	return &Shape{
		Siblings: make([]frontend.Variable, depth),
		Indices:  make([]frontend.Variable, depth),
	}
}

// Define constrains: starting from Leaf, fold in each sibling according to
// its boolean index (1 = current node is the right child), and assert the
// final value equals Root. No escape hatch for "ran out of real path" —
// Siblings/Indices must carry exactly depth real entries, matching
// merkle.MerklePath for a tree built at that depth.
func (s *Shape) Define(api frontend.API) error {
	g := poseidon.NewGadget(api)

	current := s.Leaf
	for i, sibling := range s.Siblings {
		direction := s.Indices[i]
		api.AssertIsBoolean(direction)

		left := api.Select(direction, sibling, current)
		right := api.Select(direction, current, sibling)
		current = g.HashTwo(left, right)
	}

	api.AssertIsEqual(current, s.Root)
	return nil
}
