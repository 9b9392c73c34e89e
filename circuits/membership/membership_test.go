package membership_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/circuits/membership"
	"github.com/Cosmos-Harry/zk-vault/pkg/merkle"
	"github.com/Cosmos-Harry/zk-vault/pkg/poseidon"
	"github.com/Cosmos-Harry/zk-vault/pkg/setup"
)

func proveAndVerify(t *testing.T, ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey, assignment *membership.Assignment) {
	t.Helper()

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		t.Fatalf("extract public witness: %v", err)
	}

	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

// TestMembershipCircuitEndToEnd exercises scenario S1: an 8-leaf tree,
// membership proof for leaf index 3.
func TestMembershipCircuitEndToEnd(t *testing.T) {
	leaves := make([]*big.Int, 8)
	for i := range leaves {
		leaves[i] = big.NewInt(int64(i + 1))
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	ccs, err := setup.CompileCircuit(membership.NewShape(tree.Depth()))
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	assignment, err := membership.ForLeafIndex(tree, 3)
	if err != nil {
		t.Fatalf("build assignment: %v", err)
	}

	proveAndVerify(t, ccs, pk, vk, assignment)
}

// TestMembershipCircuitRejectsWrongRoot exercises scenario S2: substituting
// an unrelated root value leaves the witness unsatisfiable, so proving fails.
func TestMembershipCircuitRejectsWrongRoot(t *testing.T) {
	leaves := make([]*big.Int, 8)
	for i := range leaves {
		leaves[i] = big.NewInt(int64(i + 1))
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	ccs, err := setup.CompileCircuit(membership.NewShape(tree.Depth()))
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, _, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	assignment, err := membership.ForLeafIndex(tree, 3)
	if err != nil {
		t.Fatalf("build assignment: %v", err)
	}
	assignment.Root = big.NewInt(999)

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("create witness: %v", err)
	}
	if _, err := groth16.Prove(ccs, pk, witness); err == nil {
		t.Fatal("expected prove to fail against a wrong root")
	}
}

// TestMembershipCircuitNonPowerOfTwo exercises scenario S3: a 5-leaf tree
// pads to depth 3, and every real leaf still proves membership correctly.
func TestMembershipCircuitNonPowerOfTwo(t *testing.T) {
	leaves := make([]*big.Int, 5)
	for i := range leaves {
		leaves[i] = big.NewInt(int64(i + 1))
	}
	tree, err := merkle.Build(leaves)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}

	ccs, err := setup.CompileCircuit(membership.NewShape(tree.Depth()))
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	for i := 0; i < 5; i++ {
		assignment, err := membership.ForLeafIndex(tree, i)
		if err != nil {
			t.Fatalf("build assignment for leaf %d: %v", i, err)
		}
		proveAndVerify(t, ccs, pk, vk, assignment)
	}

	if _, err := membership.ForLeafIndex(tree, 5); err == nil {
		t.Fatal("expected ForLeafIndex(5) to fail for a 5-leaf tree")
	}
}

// TestMembershipCircuitSparseTree exercises the large-authenticated-set
// path: a witness derived from a merkle.SparseMerkleTree proves against
// the same circuit as a witness derived from the dense Tree.
func TestMembershipCircuitSparseTree(t *testing.T) {
	depth := 6
	leaves := map[int]*big.Int{
		3:  big.NewInt(111),
		9:  big.NewInt(222),
		40: big.NewInt(333),
	}
	zeroLeaf := big.NewInt(0)

	tree, err := merkle.GenerateSparseMerkleTree(leaves, depth, zeroLeaf)
	if err != nil {
		t.Fatalf("generate sparse tree: %v", err)
	}

	ccs, err := setup.CompileCircuit(membership.NewShape(depth))
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	for idx := range leaves {
		assignment, err := membership.ForSparseLeaf(tree, idx)
		if err != nil {
			t.Fatalf("build sparse assignment for leaf %d: %v", idx, err)
		}
		proveAndVerify(t, ccs, pk, vk, assignment)
	}

	if _, err := membership.ForSparseLeaf(tree, 7); err == nil {
		t.Fatal("expected a padding index to be rejected")
	}
}

// TestMembershipCircuitCheckpointedTree exercises the checkpointed-rebuild
// path: a witness derived from a merkle.CheckpointedSMT (only a few levels
// persisted, the rest rebuilt on demand) proves against the same circuit.
func TestMembershipCircuitCheckpointedTree(t *testing.T) {
	depth := 6
	numLeaves := 20
	chunks := make([][]byte, numLeaves)
	leaves := make(map[int]*big.Int, numLeaves)
	for i := range chunks {
		chunks[i] = []byte{byte(i + 1)}
		leaves[i] = poseidon.HashMany([]*big.Int{big.NewInt(int64(i + 1))})
	}
	zeroLeaf := poseidon.HashMany([]*big.Int{big.NewInt(0)})

	full, err := merkle.GenerateSparseMerkleTree(leaves, depth, zeroLeaf)
	if err != nil {
		t.Fatalf("generate sparse tree: %v", err)
	}

	scheme := merkle.CheckpointScheme{Levels: []int{3, depth}}
	var buf bytes.Buffer
	if err := full.SaveCheckpointed(&buf, scheme); err != nil {
		t.Fatalf("save checkpointed: %v", err)
	}
	csmt, err := merkle.LoadCheckpointedSMT(&buf, zeroLeaf)
	if err != nil {
		t.Fatalf("load checkpointed: %v", err)
	}

	hashLeaf := func(chunk []byte) *big.Int {
		return poseidon.HashMany([]*big.Int{big.NewInt(int64(chunk[0]))})
	}
	readChunk := func(i int) []byte { return chunks[i] }

	ccs, err := setup.CompileCircuit(membership.NewShape(depth))
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	for leafIdx := 0; leafIdx < numLeaves; leafIdx++ {
		assignment, err := membership.ForCheckpointedLeaf(csmt, leafIdx, readChunk, hashLeaf)
		if err != nil {
			t.Fatalf("build checkpointed assignment for leaf %d: %v", leafIdx, err)
		}
		proveAndVerify(t, ccs, pk, vk, assignment)
	}
}
