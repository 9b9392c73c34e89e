package binding_test

import (
	"encoding/json"
	"testing"

	"github.com/Cosmos-Harry/zk-vault/pkg/binding"
	"github.com/Cosmos-Harry/zk-vault/pkg/countries"
)

func TestCountryProverEndToEnd(t *testing.T) {
	if init := binding.InitCountryProver(); !init.Success {
		t.Fatalf("init country prover: %s", init.Error)
	}
	if !binding.IsProverReady() {
		t.Fatal("expected country prover to report ready after init")
	}

	proved := binding.ProveCountryFromCoords(37.7749, -122.4194)
	if !proved.Success {
		t.Fatalf("prove country: %s", proved.Error)
	}

	verified := binding.VerifyCountryProof(proved.Proof, proved.Commitment)
	if !verified.Success {
		t.Fatalf("verify country proof: %s", verified.Error)
	}
}

func TestEmailProverEndToEnd(t *testing.T) {
	if init := binding.InitEmailProver(); !init.Success {
		t.Fatalf("init email prover: %s", init.Error)
	}

	proved := binding.ProveEmailDomain("alice@google.com", "google.com", "d=google.com", "dkim=pass")
	if !proved.Success {
		t.Fatalf("prove email domain: %s", proved.Error)
	}

	verified := binding.VerifyEmailProof(proved.Proof, proved.DomainHash, proved.Commitment)
	if !verified.Success {
		t.Fatalf("verify email proof: %s", verified.Error)
	}
}

func TestGetSupportedCountriesRoundTrips(t *testing.T) {
	data, err := binding.GetSupportedCountries()
	if err != nil {
		t.Fatalf("get supported countries: %v", err)
	}

	var decoded []countries.Bounds
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode JSON payload: %v", err)
	}
	if len(decoded) != len(countries.Table) {
		t.Fatalf("decoded %d entries, want %d", len(decoded), len(countries.Table))
	}
}

func TestGetVersion(t *testing.T) {
	if v := binding.GetVersion(); v != "0.1.0" {
		t.Fatalf("version = %q, want 0.1.0", v)
	}
}
