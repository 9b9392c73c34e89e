// Package binding is the host-facing surface: the small set of
// functions an embedding application (mobile binding, CLI, server
// handler) calls to set up a circuit once and then prove/verify many
// times. It wraps pkg/setup, the circuits packages, and pkg/countries
// behind a synchronous, panic-free API.
package binding

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/blang/semver/v4"
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"

	"github.com/Cosmos-Harry/zk-vault/circuits/email"
	"github.com/Cosmos-Harry/zk-vault/circuits/location"
	"github.com/Cosmos-Harry/zk-vault/pkg/countries"
	"github.com/Cosmos-Harry/zk-vault/pkg/setup"
	"github.com/Cosmos-Harry/zk-vault/pkg/vaulterr"
)

// ProverHandle holds a compiled circuit's proving/verifying keys behind
// a mutex. Most callers don't need their own handle — the package-level
// singleton functions below cover the host-binding surface — but tests
// and multi-tenant hosts that want more than one circuit instance alive
// at once can construct their own.
type ProverHandle struct {
	mu      sync.Mutex
	circuit func() frontend.Circuit
	pk      groth16.ProvingKey
	vk      groth16.VerifyingKey
	ready   bool
}

// NewProverHandle returns an uninitialized handle for the circuit newCircuit
// constructs. Call Init before Prove/Verify.
func NewProverHandle(newCircuit func() frontend.Circuit) *ProverHandle {
	return &ProverHandle{circuit: newCircuit}
}

// Init runs a dev (single-party) Groth16 setup if the handle isn't
// already initialized. It is idempotent: a second call is a no-op.
func (h *ProverHandle) Init() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ready {
		return nil
	}

	ccs, err := setup.CompileCircuit(h.circuit())
	if err != nil {
		return fmt.Errorf("%w: %v", vaulterr.ErrSetupFailed, err)
	}
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return fmt.Errorf("%w: %v", vaulterr.ErrSetupFailed, err)
	}

	h.pk, h.vk, h.ready = pk, vk, true
	return nil
}

// Ready reports whether Init has completed successfully.
func (h *ProverHandle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

// Prove compiles the constraint system fresh (cheap relative to
// proving) and produces a Groth16 proof for assignment.
func (h *ProverHandle) Prove(assignment frontend.Circuit) (groth16.Proof, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return nil, vaulterr.ErrProverNotReady
	}

	ccs, err := setup.CompileCircuit(h.circuit())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vaulterr.ErrProofGenerationFailed, err)
	}

	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vaulterr.ErrProofGenerationFailed, err)
	}

	proof, err := groth16.Prove(ccs, h.pk, witness)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vaulterr.ErrProofGenerationFailed, err)
	}
	return proof, nil
}

// Verify checks proof against the public fields of assignment.
func (h *ProverHandle) Verify(proof groth16.Proof, publicAssignment frontend.Circuit) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.ready {
		return vaulterr.ErrProverNotReady
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", vaulterr.ErrInvalidProof, r)
		}
	}()

	witness, werr := frontend.NewWitness(publicAssignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if werr != nil {
		return fmt.Errorf("%w: %v", vaulterr.ErrInvalidProof, werr)
	}

	if verr := groth16.Verify(proof, h.vk, witness); verr != nil {
		return fmt.Errorf("%w: %v", vaulterr.ErrVerificationFailed, verr)
	}
	return nil
}

// ─── Package-level singletons ───────────────────────────────────────────────

var (
	countryProver = NewProverHandle(func() frontend.Circuit { return &location.Shape{} })
	emailProver   = NewProverHandle(func() frontend.Circuit { return &email.Shape{} })
)

// Result is the small {success, error} envelope every host-binding
// function returns, with domain-specific fields layered on top.
type Result struct {
	Success bool
	Error   string
}

// InitCountryProver runs (once) the location circuit's trusted setup.
func InitCountryProver() Result {
	if err := countryProver.Init(); err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

// InitEmailProver runs (once) the email circuit's trusted setup.
func InitEmailProver() Result {
	if err := emailProver.Init(); err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

// IsProverReady reports whether InitCountryProver has completed.
func IsProverReady() bool { return countryProver.Ready() }

// IsEmailProverReady reports whether InitEmailProver has completed.
func IsEmailProverReady() bool { return emailProver.Ready() }

// ProofResult bundles a proof with its public commitment, ready for the
// host to persist or transmit alongside the proof bytes.
type ProofResult struct {
	Success    bool
	Error      string
	Proof      groth16.Proof
	Commitment *big.Int
	DomainHash *big.Int // populated only by ProveEmailDomain
}

// ProveCountryFromCoords builds a location witness from raw GPS
// coordinates, matching them against the bounding-box table, and
// produces a proof binding (lat, lng, country).
func ProveCountryFromCoords(lat, lng float64) ProofResult {
	result, err := location.FromCoordinates(lat, lng)
	if err != nil {
		return ProofResult{Error: err.Error()}
	}
	return proveLocation(result)
}

// ProveCountry produces a coarse proof from a country code alone,
// using the bounding box's center as a stand-in coordinate. This is a
// weaker attestation than ProveCountryFromCoords: it proves "the prover
// claims this country", not "the prover has a GPS fix inside it".
func ProveCountry(countryCode string) ProofResult {
	result, err := location.FromCountryCode(countryCode)
	if err != nil {
		return ProofResult{Error: err.Error()}
	}
	return proveLocation(result)
}

func proveLocation(result *location.WitnessResult) ProofResult {
	proof, err := countryProver.Prove(&result.Assignment)
	if err != nil {
		return ProofResult{Error: err.Error()}
	}
	return ProofResult{Success: true, Proof: proof, Commitment: result.Commitment}
}

// VerifyCountryProof checks proof against the public commitment a
// prior ProveCountry*/call produced.
func VerifyCountryProof(proof groth16.Proof, commitment *big.Int) Result {
	public := &location.Assignment{
		Commitment: commitment,
		Lat:        big.NewInt(0),
		Lng:        big.NewInt(0),
		Country:    big.NewInt(0),
	}
	if err := countryProver.Verify(proof, public); err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

// ProveEmailDomain validates the DKIM admission gate and produces a
// proof binding (email, domain, dkimSignature/authResults, nonce).
func ProveEmailDomain(emailAddress, domain, dkimSignature, authResults string) ProofResult {
	result, err := email.PrepareWitness(emailAddress, domain, dkimSignature, authResults)
	if err != nil {
		return ProofResult{Error: err.Error()}
	}
	proof, err := emailProver.Prove(&result.Assignment)
	if err != nil {
		return ProofResult{Error: err.Error()}
	}
	return ProofResult{Success: true, Proof: proof, Commitment: result.Commitment, DomainHash: result.DomainHash}
}

// VerifyEmailProof checks proof against the public domain hash and
// commitment a prior ProveEmailDomain call produced.
func VerifyEmailProof(proof groth16.Proof, domainHash, commitment *big.Int) Result {
	public := &email.Assignment{
		DomainHash: domainHash,
		Commitment: commitment,
		EmailHash:  big.NewInt(0),
		DkimHash:   big.NewInt(0),
		Nonce:      big.NewInt(0),
	}
	if err := emailProver.Verify(proof, public); err != nil {
		return Result{Error: err.Error()}
	}
	return Result{Success: true}
}

// GetSupportedCountries returns the built-in bounding-box table as a JSON
// array, so a host binding can display or cache it without linking Go
// structs. pkg/countries.Marshal/Unmarshal still offer a CBOR encoding of
// the same table for bindings that prefer a compact wire format.
func GetSupportedCountries() ([]byte, error) {
	return json.Marshal(countries.Table)
}

// HashToField reduces arbitrary bytes into the scalar field the same
// way the circuits do, for hosts that want to precompute a commitment
// input outside a witness.
func HashToField(data []byte) *big.Int {
	return email.HashField(data)
}

var version = semver.MustParse(rawVersion)

const rawVersion = "0.1.0"

// GetVersion returns this binding surface's semantic version.
func GetVersion() string {
	return version.String()
}
