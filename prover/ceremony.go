// Package prover implements ceremony parameter loading, keygen, proving,
// verification, EVM calldata export, and host-cache (de)serialization for
// the district-membership circuit.
package prover

import (
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/shadowatlas/districtproof/config"
)

// canonicalDigests maps a supported k to the Blake2b-512 digest the
// ceremony parameter file at that k must hash to. Only ProductionK's
// entry corresponds to a file this repository actually ships; the rest
// are recorded so LoadCeremonyParams rejects an unrecognized k with the
// same "supported but missing" diagnostic it would give for k=14 if the
// file were absent, rather than an "unsupported k" message that implies
// the value is out of range.
var canonicalDigests = map[int]string{
	10: "b5bc7a6a359602c7920f7b02360b23676abd97811455d2f6c2b6f2cf356658800da83f4f881114b84a2b213e1409cfd27d5f973ca5171dfee2525cc4217b4a17",
	11: "1aeb927fdc1dee8ec2291b94a440859ce4e9ce1af4eb18dd63efcbc0d24d935de207ff793ef80abfa032100c15272d70c6da7ae5f4b2674d4ff047b2faf2c89e",
	12: "4c80cfde8aac12908beedb58efc64cd14a57f97ea2eecbe45c8d965669c0254e28acc3d9b8d223813b90accd11bc268a372d8144505b4f5c50e7a2e1f01064c9",
	13: "706d2881608eb765f4df2f5b28918420b178474f98bccbcff1832a72405b431c51e2dd22ccc4d3b5acc9b012ab01539f8a766a02f9e1fe9edfa7432895d9adac",
	14: "2ca3ff4cf41c1b9b253bdca51e3171255fbd713a97e7205a9cf36ae0d178e966c5f449fc96312cb2742ec9cdf70b43eaa9515fe82e5236ca11d3c63c92c952df",
	15: "49a8b8900130764fd099f2f9f057de6d3f3e701a78f52635efe0757eec02b4de4aacbfbe32cae6981eb2e21339023a4bedc6663d21b409daa0a4907dbc3c69c0",
	16: "56c6e52e4e1988e33a73ccff6f9b0cd199b5b1a98251ba2f0154bbe278f213fc3e5bc5f0825d876a1b729e6b40ac2f4de893aaf24daa78b7201e5578510a2ed7",
	17: "858dfd867c63027cf20277c4d04b781d7e5945b17a541418b81bd2c6c0e8d6fb3d0772543bce352abe8ca775bd91ed42cf670272bf58e41f0852d16df56530fd",
	18: "72fd2356cdc6aa5df56c0942c86f6f4d5dab8469685ccbf9da8f300d828ac7b4deeaee010152132902ec3573bd4df1d254f15a3e13237c433c251cd2e8f5b0db",
	19: "5d1d4800860af44c6535518b62efde1e03bc74e40b4b19afc5c685569e787623bc9ad78bbc8409c79b7e1d26bc14f12eadcb1b2e22362d0bbc9a2f31b8e50cfe",
	20: "59d08813d09dad3352bb9d15c70e8884bedff75b46d14b0f23d41d3bf42c052e9709781817de7fa7c6f7338f95ec1547b87f9a4d4cc19a6234ce9f7637510470",
}

// ErrIntegrity wraps every fatal ceremony-parameter integrity failure.
var ErrIntegrity = fmt.Errorf("prover: ceremony parameter integrity failure")

// ceremonyFileName returns the well-known on-disk name for k's ceremony
// parameters, axiom_params_k<k>.srs.
func ceremonyFileName(k int) string {
	return fmt.Sprintf("axiom_params_k%d.srs", k)
}

// LoadCeremonyParams reads the ceremony parameter file for k from dir,
// verifies its Blake2b-512 digest against the canonical value for k, and
// returns the raw bytes for the caller to deserialize into a KZG SRS.
// Deserialization never happens before the digest check: a byte stream
// that fails integrity is never handed to a parser.
func LoadCeremonyParams(dir string, k int) ([]byte, error) {
	path := dir + "/" + ceremonyFileName(k)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: ceremony parameters for k=%d not found at %s: %v (fetch the published ceremony file and place it at this path)", ErrIntegrity, k, path, err)
	}
	if err := VerifyCeremonyParams(raw, k); err != nil {
		return nil, err
	}
	return raw, nil
}

// VerifyCeremonyParams checks raw's Blake2b-512 digest against the
// canonical value for k without touching the filesystem. The
// foreign-language shim uses this directly on its go:embed-ed bytes,
// since an embedded artifact has no on-disk path to read from.
func VerifyCeremonyParams(raw []byte, k int) error {
	if k < config.MinK || k > config.MaxK {
		return fmt.Errorf("prover: unsupported k=%d, must be in [%d, %d]", k, config.MinK, config.MaxK)
	}
	want, ok := canonicalDigests[k]
	if !ok {
		return fmt.Errorf("%w: no canonical digest recorded for k=%d", ErrIntegrity, k)
	}

	sum := blake2b.Sum512(raw)
	got := fmt.Sprintf("%x", sum)
	if got != want {
		return fmt.Errorf("%w: k=%d digest mismatch, expected %s got %s", ErrIntegrity, k, want, got)
	}
	return nil
}
