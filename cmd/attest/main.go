// Command attest exposes pkg/binding's host-binding surface end to end,
// plus membership setup (not part of the binding surface itself, since
// its circuit size varies with tree depth).
package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/rs/zerolog"

	"github.com/Cosmos-Harry/zk-vault/circuits/email"
	"github.com/Cosmos-Harry/zk-vault/circuits/location"
	"github.com/Cosmos-Harry/zk-vault/circuits/membership"
	"github.com/Cosmos-Harry/zk-vault/pkg/binding"
	"github.com/Cosmos-Harry/zk-vault/pkg/config"
	"github.com/Cosmos-Harry/zk-vault/pkg/logging"
	"github.com/Cosmos-Harry/zk-vault/pkg/merkle"
	"github.com/Cosmos-Harry/zk-vault/pkg/setup"
)

// commandEntry pairs a subcommand name with its handler, mirroring the
// teacher's circuitRegistry-style dispatch table.
type commandEntry struct {
	run   func(log zerolog.Logger, args []string)
	brief string
}

var registry = map[string]commandEntry{
	"setup":    {run: runSetup, brief: "compile and run a dev trusted setup for a circuit"},
	"prove":    {run: runProve, brief: "produce a proof"},
	"ceremony": {run: runCeremony, brief: "run an MPC ceremony phase for a Groth16 circuit"},
	"version":  {run: runVersion, brief: "print the binding surface's version"},
}

// ceremonyDepth is read by membership's circuit constructor below; the
// ceremony phases that need it (init/verify) set it from --depth before
// building the registry entry.
var ceremonyDepth = 20

// ceremonyRegistry mirrors the teacher's circuitRegistry: every circuit
// that can go through the MPC ceremony, all Groth16 (PLONK uses a
// universal SRS and only needs "setup --backend plonk").
var ceremonyRegistry = map[string]func() frontend.Circuit{
	"country":    func() frontend.Circuit { return &location.Shape{} },
	"email":      func() frontend.Circuit { return &email.Shape{} },
	"membership": func() frontend.Circuit { return membership.NewShape(ceremonyDepth) },
}

func main() {
	cfg := config.FromEnv()
	log := logging.Init(cfg.LogLevel, os.Stderr)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	entry, ok := registry[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	entry.run(log, os.Args[2:])
}

func runSetup(log zerolog.Logger, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: attest setup <membership|country|email> [--depth N]")
		os.Exit(1)
	}

	switch args[0] {
	case "membership":
		fs := flag.NewFlagSet("setup membership", flag.ExitOnError)
		depth := fs.Int("depth", 20, "Merkle tree depth the circuit is sized for")
		backend := fs.String("backend", "groth16", "proof backend: groth16 (ceremony-compatible) or plonk (universal SRS)")
		fs.Parse(args[1:])

		switch *backend {
		case "groth16":
			if err := setup.DevSetup(membership.NewShape(*depth), ".", "membership"); err != nil {
				log.Error().Err(err).Msg("membership setup failed")
				os.Exit(1)
			}
		case "plonk":
			if err := setup.PlonkDevSetup(membership.NewShape(*depth), ".", "membership"); err != nil {
				log.Error().Err(err).Msg("membership setup failed")
				os.Exit(1)
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown backend: %s\n", *backend)
			os.Exit(1)
		}
		statusLine(log, true, fmt.Sprintf("membership circuit (depth %d, %s) set up", *depth, *backend))
	case "country":
		result := binding.InitCountryProver()
		statusLine(log, result.Success, result.Error)
	case "email":
		result := binding.InitEmailProver()
		statusLine(log, result.Success, result.Error)
	default:
		fmt.Fprintf(os.Stderr, "unknown circuit: %s\n", args[0])
		os.Exit(1)
	}
}

func runProve(log zerolog.Logger, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: attest prove <country|country-code|email|membership> [flags]")
		os.Exit(1)
	}

	switch args[0] {
	case "country":
		fs := flag.NewFlagSet("prove country", flag.ExitOnError)
		lat := fs.Float64("lat", 0, "latitude in degrees")
		lng := fs.Float64("lng", 0, "longitude in degrees")
		fs.Parse(args[1:])

		result := binding.ProveCountryFromCoords(*lat, *lng)
		if !result.Success {
			statusLine(log, false, result.Error)
			os.Exit(1)
		}
		fmt.Printf("commitment: %s\n", result.Commitment)
	case "country-code":
		fs := flag.NewFlagSet("prove country-code", flag.ExitOnError)
		code := fs.String("code", "", "ISO country code")
		fs.Parse(args[1:])

		result := binding.ProveCountry(*code)
		if !result.Success {
			statusLine(log, false, result.Error)
			os.Exit(1)
		}
		fmt.Printf("commitment: %s\n", result.Commitment)
	case "email":
		fs := flag.NewFlagSet("prove email", flag.ExitOnError)
		address := fs.String("email", "", "claimed email address")
		domain := fs.String("domain", "", "claimed domain")
		dkim := fs.String("dkim", "", "raw DKIM-Signature header value")
		auth := fs.String("auth", "", "raw Authentication-Results header value")
		fs.Parse(args[1:])

		result := binding.ProveEmailDomain(*address, *domain, *dkim, *auth)
		if !result.Success {
			statusLine(log, false, result.Error)
			os.Exit(1)
		}
		fmt.Printf("domain hash: %s\ncommitment: %s\n", result.DomainHash, result.Commitment)
	case "membership":
		fs := flag.NewFlagSet("prove membership", flag.ExitOnError)
		leavesArg := fs.String("leaves", "", "comma-separated decimal leaf values making up the authenticated set")
		leafIndex := fs.Int("leaf", -1, "index of the member leaf within --leaves to prove")
		keyDir := fs.String("keydir", ".", "directory containing membership_prover.key/membership_verifier.key from a prior setup")
		backend := fs.String("backend", "groth16", "proof backend the keys were set up with: groth16 or plonk")
		fs.Parse(args[1:])

		if *leavesArg == "" || *leafIndex < 0 {
			fmt.Fprintln(os.Stderr, "usage: attest prove membership --leaves 1,2,3,4 --leaf 2 [--keydir .] [--backend groth16|plonk]")
			os.Exit(1)
		}

		tree, err := buildTreeFromCSV(*leavesArg)
		if err != nil {
			log.Error().Err(err).Msg("invalid --leaves")
			os.Exit(1)
		}

		assignment, err := membership.ForLeafIndex(tree, *leafIndex)
		if err != nil {
			log.Error().Err(err).Msg("build membership witness")
			os.Exit(1)
		}

		witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
		if err != nil {
			log.Error().Err(err).Msg("build witness")
			os.Exit(1)
		}
		publicWitness, err := witness.Public()
		if err != nil {
			log.Error().Err(err).Msg("extract public witness")
			os.Exit(1)
		}

		switch *backend {
		case "groth16":
			pk, vk, err := setup.LoadKeys(*keyDir, "membership")
			if err != nil {
				log.Error().Err(err).Msg("load membership keys (run `attest setup membership` first)")
				os.Exit(1)
			}
			ccs, err := setup.CompileCircuit(membership.NewShape(tree.Depth()))
			if err != nil {
				log.Error().Err(err).Msg("compile membership circuit")
				os.Exit(1)
			}
			proof, err := groth16.Prove(ccs, pk, witness)
			if err != nil {
				log.Error().Err(err).Msg("prove membership")
				os.Exit(1)
			}
			if err := groth16.Verify(proof, vk, publicWitness); err != nil {
				log.Error().Err(err).Msg("verify membership proof")
				os.Exit(1)
			}
		case "plonk":
			pk, vk, err := setup.LoadPlonkKeys(*keyDir, "membership")
			if err != nil {
				log.Error().Err(err).Msg("load membership keys (run `attest setup membership --backend plonk` first)")
				os.Exit(1)
			}
			ccs, err := setup.CompileCircuitForBackend(membership.NewShape(tree.Depth()), setup.PlonkBackend)
			if err != nil {
				log.Error().Err(err).Msg("compile membership circuit")
				os.Exit(1)
			}
			proof, err := plonk.Prove(ccs, pk, witness)
			if err != nil {
				log.Error().Err(err).Msg("prove membership")
				os.Exit(1)
			}
			if err := plonk.Verify(proof, vk, publicWitness); err != nil {
				log.Error().Err(err).Msg("verify membership proof")
				os.Exit(1)
			}
		default:
			fmt.Fprintf(os.Stderr, "unknown backend: %s\n", *backend)
			os.Exit(1)
		}

		fmt.Printf("root: %s\nleaf index: %d\nmembership proof verified\n", tree.Root(), *leafIndex)
	default:
		fmt.Fprintf(os.Stderr, "unknown proof type: %s\n", args[0])
		os.Exit(1)
	}
}

// buildTreeFromCSV parses a comma-separated list of decimal leaf values
// into a dense Merkle tree, the same shape `attest setup membership`
// compiled its circuit for.
func buildTreeFromCSV(csv string) (*merkle.Tree, error) {
	parts := strings.Split(csv, ",")
	leaves := make([]*big.Int, len(parts))
	for i, p := range parts {
		n, ok := new(big.Int).SetString(strings.TrimSpace(p), 10)
		if !ok {
			return nil, fmt.Errorf("leaf %q is not a decimal integer", p)
		}
		leaves[i] = n
	}
	return merkle.Build(leaves)
}

// runCeremony dispatches MPC ceremony phases for a Groth16-backed circuit,
// mirroring the teacher's cmd/compile handleCeremony.
func runCeremony(log zerolog.Logger, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: attest ceremony <country|email|membership> <phase> [args]")
		os.Exit(1)
	}

	circuitName := args[0]
	phase := args[1]
	rest := args[2:]

	fs := flag.NewFlagSet("ceremony "+circuitName, flag.ExitOnError)
	depth := fs.Int("depth", 20, "Merkle tree depth (membership circuit only)")
	fs.Parse(rest)
	ceremonyDepth = *depth

	newCircuit, ok := ceremonyRegistry[circuitName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown circuit: %s (expected country, email, or membership)\n", circuitName)
		os.Exit(1)
	}

	var err error
	switch phase {
	case "p1-init":
		err = setup.CeremonyP1Init(newCircuit())
	case "p1-contribute":
		err = setup.CeremonyP1Contribute()
	case "p1-verify":
		if len(fs.Args()) < 1 {
			fmt.Fprintln(os.Stderr, "usage: attest ceremony <circuit> p1-verify BEACON_HEX")
			os.Exit(1)
		}
		err = setup.CeremonyP1Verify(newCircuit(), fs.Args()[0])
	case "p2-init":
		err = setup.CeremonyP2Init(newCircuit())
	case "p2-contribute":
		err = setup.CeremonyP2Contribute()
	case "p2-verify":
		if len(fs.Args()) < 1 {
			fmt.Fprintln(os.Stderr, "usage: attest ceremony <circuit> p2-verify BEACON_HEX")
			os.Exit(1)
		}
		err = setup.CeremonyP2Verify(newCircuit(), fs.Args()[0], ".", circuitName)
	default:
		fmt.Fprintf(os.Stderr, "unknown ceremony phase: %s\n", phase)
		os.Exit(1)
	}

	if err != nil {
		log.Error().Err(err).Msg("ceremony phase failed")
		os.Exit(1)
	}
	statusLine(log, true, fmt.Sprintf("ceremony %s %s complete", circuitName, phase))
}

func runVersion(_ zerolog.Logger, _ []string) {
	fmt.Println(binding.GetVersion())
}

func statusLine(log zerolog.Logger, success bool, detail string) {
	if success {
		log.Info().Msg(detail)
		return
	}
	log.Error().Msg(detail)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage:
  attest setup membership --depth 20 --backend groth16|plonk
                                          Compile and dev-setup the membership circuit at a given depth
  attest setup country                   Dev-setup the location circuit
  attest setup email                     Dev-setup the email circuit

  attest prove country --lat .. --lng .. Prove a GPS fix falls within a supported country's bounding box
  attest prove country-code --code US    Prove a claimed country code (weaker: uses the bbox center)
  attest prove email --email .. --domain .. --dkim .. --auth ..
                                          Prove an email/domain claim gated on auth_results containing dkim=pass
  attest prove membership --leaves 1,2,3,4 --leaf 2 [--keydir .] [--backend groth16|plonk]
                                          Load a prior membership setup and prove a leaf is in the set

  attest ceremony <country|email|membership> p1-init [--depth N]
  attest ceremony <country|email|membership> p1-contribute
  attest ceremony <country|email|membership> p1-verify [--depth N] BEACON_HEX
  attest ceremony <country|email|membership> p2-init [--depth N]
  attest ceremony <country|email|membership> p2-contribute
  attest ceremony <country|email|membership> p2-verify [--depth N] BEACON_HEX
                                          Run one phase of the Groth16 MPC ceremony (1-of-N honest trust)

  attest version                         Print the binding surface's semantic version`)
}
