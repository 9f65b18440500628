// Command keygen runs the trusted-setup-consuming half of PLONK keygen
// for the district-membership or identity-registration circuit: it loads
// a ceremony file, compiles the circuit, derives the proving/verifying
// keys, and persists everything a prover or verifier needs later.
//
// No CLI, flag, or exit-code convention is part of the core library;
// this tool is wrapping convenience only.
package main

import (
	"flag"
	"fmt"

	"github.com/shadowatlas/districtproof/circuits/keyreg"
	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/pkg/logging"
	"github.com/shadowatlas/districtproof/prover"
	"github.com/shadowatlas/districtproof/shim"
)

func main() {
	circuit := flag.String("circuit", "membership", "circuit to generate keys for: membership|keyreg")
	k := flag.Int("k", config.ProductionK, "circuit-size parameter k")
	ceremonyDir := flag.String("ceremony-dir", "ceremony", "directory holding axiom_params_k<k>.srs")
	keysDir := flag.String("keys-dir", "keys", "output directory for persisted keys")
	flag.Parse()

	log := logging.Logger()

	var err error
	switch *circuit {
	case "membership":
		err = shim.Keygen(*k, *ceremonyDir, *keysDir)
	case "keyreg":
		err = prover.Keygen(&keyreg.Circuit{}, *k, *ceremonyDir, *keysDir, fmt.Sprintf("keyreg_k%d", *k))
	default:
		log.Fatal().Str("circuit", *circuit).Msg("unknown circuit, want membership or keyreg")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("keygen failed")
	}

	log.Info().Str("circuit", *circuit).Int("k", *k).Str("keys_dir", *keysDir).Msg("keygen complete")
}
