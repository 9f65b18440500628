package poseidon

import "sync"

// PSEPartialRounds is the partial-round count used by the PSE variant of
// Poseidon. It must never be used for anything this repository proves or
// verifies; it exists solely so TestCanaryParameterDrift (params_internal_test.go)
// can assert that R_P=56 and R_P=57 disagree. If a dependency upgrade ever
// silently swapped in the PSE parameter set, this is the test that would
// catch it, long before a proof failed to verify in production with no
// diagnostic.
const PSEPartialRounds = 56

var (
	canaryOnce   sync.Once
	canaryParams *Parameters
)

// canary returns the deliberately-incompatible R_P=56 parameter set.
func canary() *Parameters {
	canaryOnce.Do(func() {
		canaryParams = generateParameters("districtproof/poseidon/bn254/rf8-rp56-pse-canary/v1", Width, FullRounds, PSEPartialRounds)
	})
	return canaryParams
}
