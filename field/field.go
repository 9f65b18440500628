// Package field implements the hex/byte conventions for BN254 scalar field
// elements used at every boundary of the core: the foreign-language shim's
// hex inputs, the EVM calldata encoder, and the ceremony-parameter digest
// comparisons.
package field

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// F is a BN254 scalar field element.
type F = fr.Element

// Zero returns the additive identity.
func Zero() F {
	var z F
	return z
}

// FromHex parses a big-endian hex string (optional "0x" prefix) into a field
// element, reducing modulo the field order. Strings longer than 32 bytes are
// a hard error rather than silently truncated or wrapped.
func FromHex(s string) (F, error) {
	var out F
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s)%2 != 0 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("field: invalid hex %q: %w", s, err)
	}
	if len(b) > 32 {
		return out, fmt.Errorf("field: hex value is %d bytes, exceeds 32-byte field element", len(b))
	}
	out.SetBytes(b)
	return out, nil
}

// ToHex renders a field element as big-endian hex with a "0x" prefix,
// zero-padded to 32 bytes.
func ToHex(f F) string {
	b := f.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

// FromDecimal parses an unsigned base-10 string into a field element. Used
// for action identifiers, which accept either hex or decimal form; decimal
// parsing is variable-time, which is acceptable because action identifiers
// are always public.
func FromDecimal(s string) (F, error) {
	var out F
	bi, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return out, fmt.Errorf("field: invalid decimal %q", s)
	}
	if bi.Sign() < 0 {
		return out, fmt.Errorf("field: negative value %q not allowed", s)
	}
	out.SetBigInt(bi)
	return out, nil
}

// ParseActionID accepts either a "0x"-prefixed hex string or a base-10
// decimal string, distinguished by prefix.
func ParseActionID(s string) (F, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return FromHex(s)
	}
	return FromDecimal(s)
}

// IsZero reports whether f is the additive identity.
func IsZero(f F) bool {
	return f.IsZero()
}

// ToBigInt converts a field element to its canonical (reduced) big.Int
// representation.
func ToBigInt(f F) *big.Int {
	var out big.Int
	f.BigInt(&out)
	return &out
}

// FromBigInt reduces a big.Int into a field element.
func FromBigInt(v *big.Int) F {
	var out F
	out.SetBigInt(v)
	return out
}

// ReverseBytes32 reverses a 32-byte buffer and returns the reversed copy.
// The WASM shim's hex convention is big-endian, and gnark-crypto's
// Element.Bytes()/SetBytes() are big-endian too, so FromHex/ToHex need no
// reversal; callers that cross the FFI boundary with little-endian raw
// byte slices use this helper explicitly rather than silently assuming an
// endianness.
func ReverseBytes32(b [32]byte) [32]byte {
	for i, j := 0, 31; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
