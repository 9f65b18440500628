// Command export converts a previously generated proof and its public
// instance triple into Solidity-ready calldata (proof bytes plus ordered
// public inputs), the same shape prover.MarshalSolidity produces for an
// in-process *prover.Result, for a caller that only has the proof on disk.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"flag"
	"os"
	"strings"

	plonkbn254 "github.com/consensys/gnark/backend/plonk/bn254"

	"github.com/shadowatlas/districtproof/field"
	"github.com/shadowatlas/districtproof/pkg/logging"
	"github.com/shadowatlas/districtproof/prover"
)

func main() {
	proofHex := flag.String("proof", "", "proof bytes, hex (0x-prefixed), as produced by cmd/prove")
	instancesCSV := flag.String("instances", "", "comma-separated public instances, hex, in circuit order")
	outPath := flag.String("out", "", "output file for the EVM calldata JSON (default: stdout)")
	flag.Parse()

	log := logging.Logger()

	if *proofHex == "" || *instancesCSV == "" {
		log.Fatal().Msg("-proof and -instances are both required")
	}

	raw, err := hex.DecodeString(strings.TrimPrefix(*proofHex, "0x"))
	if err != nil {
		log.Fatal().Err(err).Msg("decode proof hex")
	}

	var proof plonkbn254.Proof
	if _, err := proof.ReadFrom(bytes.NewReader(raw)); err != nil {
		log.Fatal().Err(err).Msg("deserialize proof")
	}

	instanceHexes := strings.Split(*instancesCSV, ",")
	publicInputs := make([]field.F, len(instanceHexes))
	for i, h := range instanceHexes {
		v, err := field.FromHex(h)
		if err != nil {
			log.Fatal().Err(err).Int("index", i).Msg("decode instance")
		}
		publicInputs[i] = v
	}

	calldata, err := prover.MarshalSolidity(&prover.Result{Proof: &proof, PublicInputs: publicInputs})
	if err != nil {
		log.Fatal().Err(err).Msg("marshal solidity calldata")
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

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(calldata); err != nil {
		log.Fatal().Err(err).Msg("encode calldata json")
	}
}
