// Package config holds the compile-time constants that define the shape of
// the district-membership circuit. These are load-bearing: changing Depth
// changes the circuit's shape, which invalidates every persisted proving
// and verifying key.
package config

const (
	// Depth is the production single-tier Shadow Atlas depth.
	Depth = 12

	// LegacyDistrictDepth and LegacyAtlasDepth describe the two-tier legacy
	// variant: a district tree nested under a global atlas tree.
	LegacyDistrictDepth = 12
	LegacyAtlasDepth    = 8

	// MinK and MaxK bound the supported circuit-size parameter exposed by
	// the WASM shim.
	MinK = 10
	MaxK = 20

	// ProductionK is the circuit size used by the browser shim's embedded
	// ceremony parameters.
	ProductionK = 14
)
