//go:build js && wasm

package main

import (
	_ "embed"
	"fmt"

	"github.com/shadowatlas/districtproof/shim"
)

// embeddedCacheBlob is the packaged (ceremony params, pk, vk, config,
// break points) for config.ProductionK, produced by cmd/keygen against
// the genuine ceremony file and re-exported with shim.Prover.ExportCache.
// The copy committed here is an unusable placeholder (see the file's own
// "_note" field); a release build's packaging step must replace it
// before bundling the .wasm artifact, matching the "embedded ceremony
// parameters checked at load time" contract every build goes through,
// placeholder or genuine.
//
//go:embed ceremony/prover_cache_k14.json
var embeddedCacheBlob []byte

func loadEmbeddedProver() error {
	if prover != nil {
		return nil
	}
	p, err := shim.FromCache(embeddedCacheBlob)
	if err != nil {
		return fmt.Errorf("wasmbind: load embedded cache (replace the placeholder in ceremony/prover_cache_k14.json with a real packaged cache blob): %w", err)
	}
	prover = p
	return nil
}
