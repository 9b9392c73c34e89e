// Package vaulterr defines the sentinel errors shared across the
// attestation library. Callers should compare against these with
// errors.Is rather than string-matching error messages.
package vaulterr

import "errors"

var (
	// ErrSetupFailed indicates circuit compilation or key generation failed.
	ErrSetupFailed = errors.New("vaulterr: setup failed")

	// ErrProofGenerationFailed indicates the prover could not produce a proof
	// for the given witness (e.g. the witness does not satisfy the circuit).
	ErrProofGenerationFailed = errors.New("vaulterr: proof generation failed")

	// ErrVerificationFailed indicates a structurally valid proof did not
	// verify against the given public inputs.
	ErrVerificationFailed = errors.New("vaulterr: verification failed")

	// ErrInvalidProof indicates proof bytes could not be deserialized or
	// otherwise are not well-formed.
	ErrInvalidProof = errors.New("vaulterr: invalid proof")

	// ErrSerializationError indicates a failure encoding or decoding keys,
	// proofs, or tree data.
	ErrSerializationError = errors.New("vaulterr: serialization error")

	// ErrLeafNotFound indicates a requested leaf value is not a member of
	// the tree it was looked up against.
	ErrLeafNotFound = errors.New("vaulterr: leaf not found")

	// ErrRootMismatch indicates a recomputed root did not match the
	// expected one (e.g. loading a tree from an inconsistent checkpoint).
	ErrRootMismatch = errors.New("vaulterr: root mismatch")

	// ErrIoError wraps an underlying filesystem/stream failure encountered
	// while reading or writing persisted artifacts.
	ErrIoError = errors.New("vaulterr: io error")

	// ErrProverNotReady indicates a binding's proving key has not been
	// initialized yet (Setup/LoadKeys not called before Prove).
	ErrProverNotReady = errors.New("vaulterr: prover not ready")
)
