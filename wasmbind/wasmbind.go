//go:build js && wasm

// Package wasmbind binds shim.Prover to syscall/js for a WASM browser
// build. It embeds the production-k ceremony parameters, so a browser
// host only ever downloads one .wasm artifact and never fetches a
// ceremony file separately at runtime.
//
// This file only compiles under GOOS=js GOARCH=wasm; a normal `go build
// ./...` on any other platform skips it entirely.
package main

import (
	"fmt"
	"syscall/js"

	"github.com/shadowatlas/districtproof/config"
	"github.com/shadowatlas/districtproof/shim"
)

// prover is the single embedded-ceremony Prover instance this binding
// exposes. It is initialized lazily on the first new() call, since
// restoring the embedded cache blob (ceremony params, pk, vk) is not free
// and a page that only calls hash_pair/hash_single should not pay for it.
var prover *shim.Prover

func main() {
	js.Global().Set("districtProofNew", js.FuncOf(jsNew))
	js.Global().Set("districtProofProve", js.FuncOf(jsProve))
	js.Global().Set("districtProofVerify", js.FuncOf(jsVerify))
	js.Global().Set("districtProofExportCache", js.FuncOf(jsExportCache))
	js.Global().Set("districtProofFromCache", js.FuncOf(jsFromCache))
	js.Global().Set("districtProofHashPair", js.FuncOf(jsHashPair))
	js.Global().Set("districtProofHashSingle", js.FuncOf(jsHashSingle))

	// Block forever: a WASM module built with a main() that returns
	// exits the runtime and every exported function stops working.
	select {}
}

func jsError(err error) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("error", err.Error())
	return obj
}

// jsNew implements `new(k)`. k must be within [config.MinK, config.MaxK];
// only config.ProductionK has embedded keys, so any other value is
// rejected with a descriptive error rather than silently falling back.
func jsNew(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return jsError(fmt.Errorf("new(k) takes exactly one argument"))
	}
	k := args[0].Int()
	if k != config.ProductionK {
		return jsError(fmt.Errorf("wasmbind: only k=%d is embedded in this build, got %d", config.ProductionK, k))
	}

	if err := loadEmbeddedProver(); err != nil {
		return jsError(err)
	}
	return js.ValueOf(true)
}

func jsProve(this js.Value, args []js.Value) interface{} {
	if prover == nil {
		return jsError(fmt.Errorf("wasmbind: call new(k) before prove()"))
	}
	if len(args) != 4 {
		return jsError(fmt.Errorf("prove(identity_hex, action_id, leaf_index, siblings) takes 4 arguments"))
	}
	identityHex := args[0].String()
	actionID := args[1].String()
	leafIndex := args[2].Int()

	siblingsArg := args[3]
	n := siblingsArg.Length()
	siblings := make([]string, n)
	for i := 0; i < n; i++ {
		siblings[i] = siblingsArg.Index(i).String()
	}

	proof, err := prover.Prove(identityHex, actionID, leafIndex, siblings)
	if err != nil {
		return jsError(err)
	}

	out := js.Global().Get("Uint8Array").New(len(proof))
	js.CopyBytesToJS(out, proof)
	return out
}

func jsVerify(this js.Value, args []js.Value) interface{} {
	if prover == nil {
		return jsError(fmt.Errorf("wasmbind: call new(k) before verify()"))
	}
	if len(args) != 2 {
		return jsError(fmt.Errorf("verify(proof_bytes, instances) takes 2 arguments"))
	}

	proofArg := args[0]
	proofBytes := make([]byte, proofArg.Length())
	js.CopyBytesToGo(proofBytes, proofArg)

	instancesArg := args[1]
	if instancesArg.Length() != 3 {
		return jsError(fmt.Errorf("verify: expected 3 instances, got %d", instancesArg.Length()))
	}
	var instances [3]string
	for i := range instances {
		instances[i] = instancesArg.Index(i).String()
	}

	ok, err := prover.Verify(proofBytes, instances)
	if err != nil {
		return jsError(err)
	}
	return js.ValueOf(ok)
}

func jsExportCache(this js.Value, args []js.Value) interface{} {
	if prover == nil {
		return jsError(fmt.Errorf("wasmbind: call new(k) before export_cache()"))
	}
	blob, err := prover.ExportCache()
	if err != nil {
		return jsError(err)
	}
	return js.ValueOf(string(blob))
}

func jsFromCache(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return jsError(fmt.Errorf("from_cache(blob) takes exactly one argument"))
	}
	restored, err := shim.FromCache([]byte(args[0].String()))
	if err != nil {
		return jsError(err)
	}
	prover = restored
	return js.ValueOf(true)
}

func jsHashPair(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return jsError(fmt.Errorf("hash_pair(left_hex, right_hex) takes 2 arguments"))
	}
	out, err := shim.HashPair(args[0].String(), args[1].String())
	if err != nil {
		return jsError(err)
	}
	return js.ValueOf(out)
}

func jsHashSingle(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return jsError(fmt.Errorf("hash_single(value_hex) takes exactly one argument"))
	}
	out, err := shim.HashSingle(args[0].String())
	if err != nil {
		return jsError(err)
	}
	return js.ValueOf(out)
}
