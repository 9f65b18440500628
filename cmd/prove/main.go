// Command prove generates a district-membership proof from the command
// line: an identity commitment and the Merkle siblings for the leaf index
// as hex strings, an action id as hex or decimal, and the leaf index as an
// integer, producing the same bytes
// the foreign-language shim's prove() would for identical inputs.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/pkg/logging"
	"github.com/shadowatlas/districtproof/shim"
)

func main() {
	k := flag.Int("k", config.ProductionK, "circuit-size parameter k")
	ceremonyDir := flag.String("ceremony-dir", "ceremony", "directory holding axiom_params_k<k>.srs")
	keysDir := flag.String("keys-dir", "keys", "directory holding persisted proving/verifying keys")
	identityHex := flag.String("identity", "", "identity commitment, hex")
	actionID := flag.String("action-id", "", "action id, hex (0x-prefixed) or decimal")
	leafIndex := flag.Int("leaf-index", -1, "leaf index within the district tree")
	siblingsCSV := flag.String("siblings", "", "comma-separated hex Merkle siblings, depth-many entries")
	outPath := flag.String("out", "", "output file for the proof bytes (default: stdout)")
	flag.Parse()

	log := logging.Logger()

	if *identityHex == "" || *actionID == "" || *leafIndex < 0 || *siblingsCSV == "" {
		log.Fatal().Msg("-identity, -action-id, -leaf-index, and -siblings are all required")
	}

	siblings := strings.Split(*siblingsCSV, ",")

	p, err := shim.New(*k, *ceremonyDir, *keysDir)
	if err != nil {
		log.Fatal().Err(err).Msg("load prover")
	}

	proof, err := p.Prove(*identityHex, *actionID, *leafIndex, siblings)
	if err != nil {
		log.Fatal().Err(err).Msg("prove")
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("create output file")
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintln(out, "0x"+hex.EncodeToString(proof))
}
