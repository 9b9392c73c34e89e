// Package config holds the small set of operator-tunable knobs read from
// the environment at startup: where compiled keys live, which Merkle depth
// membership proofs assume by default, and how verbose logging should be.
// cmd/attest loads it via FromEnv and applies LogLevel; its --keydir and
// --depth flags carry their own defaults.
package config

import (
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

// Config is the runtime configuration for a single process.
type Config struct {
	// KeyDir is the directory proving/verifying keys are loaded from and
	// written to (ExportKeys/LoadKeys in pkg/setup).
	KeyDir string

	// DefaultMembershipDepth sizes the membership circuit when a caller
	// doesn't supply an explicit tree to derive the depth from.
	DefaultMembershipDepth int

	// LogLevel controls pkg/logging's verbosity.
	LogLevel zerolog.Level
}

// Default returns the configuration used when no environment overrides
// are present.
func Default() Config {
	return Config{
		KeyDir:                 ".",
		DefaultMembershipDepth: 20,
		LogLevel:               zerolog.InfoLevel,
	}
}

// FromEnv overlays ZKVAULT_KEY_DIR, ZKVAULT_MEMBERSHIP_DEPTH, and
// ZKVAULT_LOG_LEVEL on top of Default, ignoring unset or malformed
// variables.
func FromEnv() Config {
	cfg := Default()

	if dir := os.Getenv("ZKVAULT_KEY_DIR"); dir != "" {
		cfg.KeyDir = dir
	}

	if depthStr := os.Getenv("ZKVAULT_MEMBERSHIP_DEPTH"); depthStr != "" {
		if depth, err := strconv.Atoi(depthStr); err == nil && depth > 0 {
			cfg.DefaultMembershipDepth = depth
		}
	}

	if levelStr := os.Getenv("ZKVAULT_LOG_LEVEL"); levelStr != "" {
		if level, err := zerolog.ParseLevel(levelStr); err == nil {
			cfg.LogLevel = level
		}
	}

	return cfg
}
