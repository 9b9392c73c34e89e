package merkle

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
)

func leavesUpTo(n int) []*big.Int {
	leaves := make([]*big.Int, n)
	for i := range leaves {
		leaves[i] = big.NewInt(int64(i + 1))
	}
	return leaves
}

// TestBuildEightLeavesMembership exercises scenario S1: an 8-leaf tree,
// membership proof for leaf index 3 verifies against the computed root.
func TestBuildEightLeavesMembership(t *testing.T) {
	tree, err := Build(leavesUpTo(8))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Depth() != 3 {
		t.Fatalf("depth = %d, want 3", tree.Depth())
	}

	path, ok := tree.GetPath(3)
	if !ok {
		t.Fatal("GetPath(3) = false, want true")
	}
	if !path.Verify(tree.Root()) {
		t.Fatal("path for leaf 3 does not verify against the tree root")
	}
}

// TestBuildWrongRootFails exercises scenario S2: a path that verifies
// against the real root must fail against an unrelated root value.
func TestBuildWrongRootFails(t *testing.T) {
	tree, err := Build(leavesUpTo(8))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	path, ok := tree.GetPath(3)
	if !ok {
		t.Fatal("GetPath(3) = false")
	}

	wrongRoot := big.NewInt(999)
	if path.Verify(wrongRoot) {
		t.Fatal("path verified against an unrelated root")
	}
}

// TestBuildNonPowerOfTwo exercises scenario S3: a 5-leaf tree pads to depth
// 3 (8 slots), and GetPath rejects an out-of-range index.
func TestBuildNonPowerOfTwo(t *testing.T) {
	tree, err := Build(leavesUpTo(5))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Depth() != 3 {
		t.Fatalf("depth = %d, want 3", tree.Depth())
	}
	if tree.NumLeaves() != 5 {
		t.Fatalf("numLeaves = %d, want 5", tree.NumLeaves())
	}

	if _, ok := tree.GetPath(5); ok {
		t.Fatal("GetPath(5) = true, want false for a 5-leaf tree")
	}

	for i := 0; i < 5; i++ {
		path, ok := tree.GetPath(i)
		if !ok {
			t.Fatalf("GetPath(%d) = false", i)
		}
		if !path.Verify(tree.Root()) {
			t.Fatalf("path for leaf %d does not verify", i)
		}
	}
}

func TestBuildEmptyTree(t *testing.T) {
	tree, err := Build(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if tree.Depth() != 0 || tree.NumLeaves() != 0 {
		t.Fatalf("empty tree: depth=%d numLeaves=%d", tree.Depth(), tree.NumLeaves())
	}
	if tree.Root().Sign() != 0 {
		t.Fatal("empty tree root must be zero")
	}
}

func TestBuildSingleLeaf(t *testing.T) {
	tree, err := Build([]*big.Int{big.NewInt(42)})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	path, ok := tree.GetPath(0)
	if !ok {
		t.Fatal("GetPath(0) = false")
	}
	if !path.Verify(tree.Root()) {
		t.Fatal("single-leaf path does not verify")
	}
}

func TestFindLeafAndContains(t *testing.T) {
	leaves := leavesUpTo(8)
	tree, err := Build(leaves)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	idx, ok := tree.FindLeaf(leaves[5])
	if !ok || idx != 5 {
		t.Fatalf("FindLeaf(leaves[5]) = (%d, %v), want (5, true)", idx, ok)
	}

	if tree.Contains(big.NewInt(10_000)) {
		t.Fatal("Contains reported a non-member leaf as present")
	}
}

func TestTreeRoundTripSerialization(t *testing.T) {
	tree, err := Build(leavesUpTo(7))
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	var buf bytes.Buffer
	if err := tree.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Root().Cmp(tree.Root()) != 0 {
		t.Fatal("root mismatch after round-trip")
	}
	if loaded.Depth() != tree.Depth() || loaded.NumLeaves() != tree.NumLeaves() {
		t.Fatal("depth/numLeaves mismatch after round-trip")
	}

	for i := 0; i < tree.NumLeaves(); i++ {
		orig, _ := tree.GetPath(i)
		got, ok := loaded.GetPath(i)
		if !ok {
			t.Fatalf("loaded tree rejects GetPath(%d)", i)
		}
		if !got.Verify(loaded.Root()) || orig.Leaf.Cmp(got.Leaf) != 0 {
			t.Fatalf("path for leaf %d diverged after round-trip", i)
		}
	}
}

func TestDepthExceedsMaximum(t *testing.T) {
	// 2^(MaxDepth+1) leaves would require depth MaxDepth+1; force it directly
	// against computeDepth to avoid allocating 2^31 leaves.
	if got := computeDepth(1 << (MaxDepth + 1)); got <= MaxDepth {
		t.Fatalf("computeDepth sanity check failed: got %d", got)
	}
}

// ---------------------------------------------------------------------------
// SparseMerkleTree
// ---------------------------------------------------------------------------

func TestSparseMerkleTreeMatchesDenseRoot(t *testing.T) {
	depth := 3
	leaves := make(map[int]*big.Int, 5)
	for i := 0; i < 5; i++ {
		leaves[i] = big.NewInt(int64(i + 1))
	}
	zeroLeaf := big.NewInt(0)

	smt, err := GenerateSparseMerkleTree(leaves, depth, zeroLeaf)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	dense, err := Build(leavesUpTo(5))
	if err != nil {
		t.Fatalf("build dense: %v", err)
	}

	if smt.Root.Cmp(dense.Root()) != 0 {
		t.Fatalf("sparse root %s != dense root %s", smt.Root, dense.Root())
	}
}

func TestSparseMerkleTreeProofVerifies(t *testing.T) {
	depth := 4
	leaves := map[int]*big.Int{
		0: big.NewInt(11),
		3: big.NewInt(22),
		9: big.NewInt(33),
	}
	zeroLeaf := big.NewInt(0)

	smt, err := GenerateSparseMerkleTree(leaves, depth, zeroLeaf)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for idx, leaf := range leaves {
		siblings, directions := smt.GetProof(idx)
		if len(siblings) != depth {
			t.Fatalf("proof for %d has %d siblings, want %d", idx, len(siblings), depth)
		}

		current := leaf
		for k := 0; k < depth; k++ {
			if directions[k] {
				current = HashNodes(siblings[k], current)
			} else {
				current = HashNodes(current, siblings[k])
			}
		}
		if current.Cmp(smt.Root) != 0 {
			t.Fatalf("rebuilt root for leaf %d does not match smt.Root", idx)
		}
	}

	if !smt.IsReal(3) {
		t.Fatal("IsReal(3) = false, want true")
	}
	if smt.IsReal(4) {
		t.Fatal("IsReal(4) = true, want false (padding slot)")
	}
}

func TestSparseMerkleTreeRoundTripSerialization(t *testing.T) {
	depth := 4
	leaves := map[int]*big.Int{
		0: big.NewInt(11),
		5: big.NewInt(22),
	}
	zeroLeaf := big.NewInt(0)

	smt, err := GenerateSparseMerkleTree(leaves, depth, zeroLeaf)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var buf bytes.Buffer
	if err := smt.Save(&buf); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadSparseMerkleTree(&buf, zeroLeaf)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Root.Cmp(smt.Root) != 0 {
		t.Fatal("root mismatch after round-trip")
	}
	if !loaded.IsReal(5) || loaded.IsReal(6) {
		t.Fatal("RealLeaves not reconstructed correctly after round-trip")
	}
}

// ---------------------------------------------------------------------------
// CheckpointedSMT
// ---------------------------------------------------------------------------

func TestCheckpointedRebuildProofMatchesDirect(t *testing.T) {
	depth := 6
	numLeaves := 20
	chunks := make([][]byte, numLeaves)
	leaves := make(map[int]*big.Int, numLeaves)
	for i := range chunks {
		chunks[i] = []byte{byte(i + 1)}
		leaves[i] = poseidon.HashMany([]*big.Int{big.NewInt(int64(i + 1))})
	}
	zeroLeaf := poseidon.HashMany([]*big.Int{big.NewInt(0)})

	full, err := GenerateSparseMerkleTree(leaves, depth, zeroLeaf)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	scheme := CheckpointScheme{Levels: []int{3, depth}}
	var buf bytes.Buffer
	if err := full.SaveCheckpointed(&buf, scheme); err != nil {
		t.Fatalf("save checkpointed: %v", err)
	}

	csmt, err := LoadCheckpointedSMT(&buf, zeroLeaf)
	if err != nil {
		t.Fatalf("load checkpointed: %v", err)
	}

	hashLeaf := func(chunk []byte) *big.Int {
		return poseidon.HashMany([]*big.Int{big.NewInt(int64(chunk[0]))})
	}
	readChunk := func(i int) []byte { return chunks[i] }

	for leafIdx := 0; leafIdx < numLeaves; leafIdx++ {
		direct, _ := full.GetProof(leafIdx)
		rebuilt := csmt.RebuildProof(leafIdx, readChunk, hashLeaf)

		if rebuilt.LeafHash.Cmp(full.GetLeafHash(leafIdx)) != 0 {
			t.Fatalf("leaf %d: rebuilt leaf hash mismatch", leafIdx)
		}
		for lvl := range direct {
			if direct[lvl].Cmp(rebuilt.Siblings[lvl]) != 0 {
				t.Fatalf("leaf %d level %d: sibling mismatch", leafIdx, lvl)
			}
		}

		current := rebuilt.LeafHash
		for lvl := 0; lvl < depth; lvl++ {
			if rebuilt.Directions[lvl] == 1 {
				current = HashNodes(rebuilt.Siblings[lvl], current)
			} else {
				current = HashNodes(current, rebuilt.Siblings[lvl])
			}
		}
		if current.Cmp(csmt.Root) != 0 {
			t.Fatalf("leaf %d: rebuilt root does not match checkpointed root", leafIdx)
		}
	}
}

func TestValidateSchemeRejectsBadLevels(t *testing.T) {
	if err := validateScheme(CheckpointScheme{Levels: nil}, 10); err == nil {
		t.Fatal("empty scheme should be rejected")
	}
	if err := validateScheme(CheckpointScheme{Levels: []int{5}}, 10); err == nil {
		t.Fatal("scheme not ending at depth should be rejected")
	}
	if err := validateScheme(CheckpointScheme{Levels: []int{5, 3, 10}}, 10); err == nil {
		t.Fatal("unsorted scheme should be rejected")
	}
	if err := validateScheme(CheckpointScheme{Levels: []int{3, 10}}, 10); err != nil {
		t.Fatalf("valid scheme rejected: %v", err)
	}
}
