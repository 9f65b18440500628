package bitdecomp

import (
	"fmt"
	"math/big"

	"github.com/bits-and-blooms/bitset"

	"github.com/shadowatlas/districtproof/field"
)

// rangeError reports a witness value that does not fit in the requested
// bit width, mirroring the in-circuit reconstruction failure without
// paying for a mock-prover run just to reject an obviously bad input at
// witness-preparation time.
type rangeError struct {
	value *big.Int
	bits  int
}

func (e *rangeError) Error() string {
	return fmt.Sprintf("value %s does not fit in %d bits", e.value.String(), e.bits)
}

// Validate checks that v fits in n bits before a circuit is ever built
// from it. It decomposes v into a bitset and rejects anything with a set
// bit at position n or above, the out-of-circuit counterpart of the
// reconstruction constraint Decompose emits in-circuit.
func Validate(v field.F, n int) error {
	value := field.ToBigInt(v)
	if value.Sign() < 0 {
		return &rangeError{value: value, bits: n}
	}

	bs := bitSetFromBigInt(value)
	if bs.Len() > uint(n) {
		return &rangeError{value: value, bits: n}
	}
	return nil
}

// bitSetFromBigInt materializes v's bits into a bitset sized exactly to
// v's own bit length, so its Len() is the minimum width v requires, which
// Validate compares against n.
func bitSetFromBigInt(v *big.Int) *bitset.BitSet {
	bitLen := v.BitLen()
	bs := bitset.New(uint(bitLen))
	for i := 0; i < bitLen; i++ {
		if v.Bit(i) == 1 {
			bs.Set(uint(i))
		}
	}
	return bs
}
