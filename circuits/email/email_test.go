package email_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/circuits/email"
	"github.com/Cosmos-Harry/zk-vault/pkg/setup"
)

// TestEmailCircuitDKIMPass exercises scenario S5: a DKIM-pass auth result
// produces a witness that proves and verifies.
func TestEmailCircuitDKIMPass(t *testing.T) {
	result, err := email.PrepareWitness(
		"alice@google.com",
		"google.com",
		"v=1;a=rsa-sha256;d=google.com;s=sel;b=abc123",
		"dkim=pass",
	)
	if err != nil {
		t.Fatalf("prepare witness: %v", err)
	}

	wantDomainHash := email.EncodeDomain("google.com")
	if result.DomainHash.Cmp(wantDomainHash) != 0 {
		t.Fatalf("domain hash = %s, want %s", result.DomainHash, wantDomainHash)
	}

	ccs, err := setup.CompileCircuit(&email.Shape{})
	if err != nil {
		t.Fatalf("compile circuit: %v", err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		t.Fatalf("groth16 setup: %v", err)
	}

	witness, err := frontend.NewWitness(&result.Assignment, ecc.BN254.ScalarField())
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

// TestEmailCircuitDKIMFailRefused exercises scenario S6: the front-end
// refuses to build a witness at all when auth_results signals dkim=fail.
func TestEmailCircuitDKIMFailRefused(t *testing.T) {
	_, err := email.PrepareWitness(
		"alice@google.com",
		"google.com",
		"v=1;a=rsa-sha256;d=google.com;s=sel;b=abc123",
		"dkim=fail",
	)
	if err == nil {
		t.Fatal("expected PrepareWitness to refuse a dkim=fail auth result")
	}
}

func TestEmailCircuitTwoDistinctWitnessesDiffer(t *testing.T) {
	a, err := email.PrepareWitness("alice@google.com", "google.com", "d=google.com", "dkim=pass")
	if err != nil {
		t.Fatalf("prepare witness a: %v", err)
	}
	b, err := email.PrepareWitness("bob@google.com", "google.com", "d=google.com", "dkim=pass")
	if err != nil {
		t.Fatalf("prepare witness b: %v", err)
	}
	if a.Commitment.Cmp(b.Commitment) == 0 {
		t.Fatal("distinct email addresses produced the same commitment")
	}
}
