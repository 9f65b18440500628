//go:build districtproof_testparams

package prover

import (
	"fmt"

	"github.com/consensys/gnark-crypto/kzg"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/test/unsafekzg"
)

// GenerateTestParams produces a fresh, insecure KZG SRS sized for ccs.
// This function only exists in builds compiled with the
// districtproof_testparams tag; a release build never links it, so there
// is no code path by which a production binary could silently fall back
// to insecure parameter generation.
func GenerateTestParams(ccs constraint.ConstraintSystem) (srs kzg.SRS, srsLagrange kzg.SRS, err error) {
	srs, srsLagrange, err = unsafekzg.NewSRS(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("prover: generate test SRS: %w", err)
	}
	return srs, srsLagrange, nil
}
