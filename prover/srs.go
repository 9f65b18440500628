package prover

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	bn254kzg "github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
)

// DeserializeSRS parses raw ceremony-parameter bytes (already integrity
// checked by LoadCeremonyParams) into the canonical monomial-basis SRS,
// using the library's raw/unchecked decoder: ceremony files are produced
// by a trusted third party and are already integrity-checked by digest,
// so paying for subgroup membership checks on every point a second time
// buys nothing.
func DeserializeSRS(raw []byte) (*bn254kzg.SRS, error) {
	srs := new(bn254kzg.SRS)
	if _, err := srs.UnsafeReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("prover: deserialize ceremony parameters: %w", err)
	}
	return srs, nil
}

// LagrangeSRS derives the Lagrange-basis SRS over the domain implied by
// numConstraints from a canonical monomial-basis SRS, the same
// conversion the builder performs internally when it can generate its
// own toxic waste (test/unsafekzg); the production ceremony file only
// ever ships the monomial basis.
func LagrangeSRS(srs *bn254kzg.SRS, numConstraints int) (*bn254kzg.SRS, error) {
	domain := fft.NewDomain(uint64(numConstraints))
	lagrange := &bn254kzg.SRS{Vk: srs.Vk}
	lagrange.Pk.G1 = bn254kzg.ToLagrangeG1(srs.Pk.G1, domain)
	return lagrange, nil
}
