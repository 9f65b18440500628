package prover

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/fxamacker/cbor/v2"
	"github.com/ronanh/intcomp"
)

// CacheBlob is the JSON-wrapping-binary artifact export_cache()
// returns: every binary component (SRS, proving key, verifying key) is
// base64-encoded inline, and ConfigParams is CBOR-encoded (then
// base64-encoded) rather than JSON-nested. BreakPoints is
// flattened and delta-compressed with intcomp before being base64
// encoded, since a browser host persists this blob in IndexedDB where
// every byte has a real storage cost.
type CacheBlob struct {
	K                int    `json:"k"`
	SRSBase64        string `json:"srs"`
	ProvingKeyBase64 string `json:"pk"`
	VerifyingKey     string `json:"vk"`
	ConfigParamsCBOR string `json:"config_cbor"`
	BreakPoints      string `json:"break_points_compressed"`
}

// ExportCache packages everything a host needs to restore a Prover
// without re-running keygen: the ceremony parameters it was built from,
// both keys, and the shape metadata that must accompany the proving key.
func ExportCache(k int, srsRaw []byte, pk plonk.ProvingKey, vk plonk.VerifyingKey, cfg ConfigParams, bp BreakPoints) (*CacheBlob, error) {
	var pkBuf, vkBuf bytes.Buffer
	if _, err := pk.WriteTo(&pkBuf); err != nil {
		return nil, fmt.Errorf("prover: export cache: serialize proving key: %w", err)
	}
	if _, err := vk.WriteTo(&vkBuf); err != nil {
		return nil, fmt.Errorf("prover: export cache: serialize verifying key: %w", err)
	}

	cfgCBOR, err := cbor.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("prover: export cache: cbor-encode config params: %w", err)
	}

	return &CacheBlob{
		K:                k,
		SRSBase64:        base64.StdEncoding.EncodeToString(srsRaw),
		ProvingKeyBase64: base64.StdEncoding.EncodeToString(pkBuf.Bytes()),
		VerifyingKey:     base64.StdEncoding.EncodeToString(vkBuf.Bytes()),
		ConfigParamsCBOR: base64.StdEncoding.EncodeToString(cfgCBOR),
		BreakPoints:      base64.StdEncoding.EncodeToString(compressBreakPoints(bp)),
	}, nil
}

// ExportCacheJSON is ExportCache followed by JSON marshaling, matching
// the "JSON-wrapping-binary blob" shape the foreign-language shim
// returns to its host.
func ExportCacheJSON(k int, srsRaw []byte, pk plonk.ProvingKey, vk plonk.VerifyingKey, cfg ConfigParams, bp BreakPoints) ([]byte, error) {
	blob, err := ExportCache(k, srsRaw, pk, vk, cfg, bp)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blob)
}

// FromCache reverses ExportCache: it rebuilds the proving key, verifying
// key, config params, and break points from a previously exported blob.
// The ceremony parameter bytes are checked against blob.K's canonical
// digest with VerifyCeremonyParams before anything else in the blob is
// decoded. They are returned too, since a caller that only
// has the cache (no on-disk ceremony file) still needs them to re-derive
// a Lagrange SRS if it ever needs to re-run keygen.
func FromCache(blob *CacheBlob) (srsRaw []byte, pk plonk.ProvingKey, vk plonk.VerifyingKey, cfg ConfigParams, bp BreakPoints, err error) {
	srsRaw, err = base64.StdEncoding.DecodeString(blob.SRSBase64)
	if err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: decode cached SRS: %v", ErrIntegrity, err)
	}
	if err := VerifyCeremonyParams(srsRaw, blob.K); err != nil {
		return nil, nil, nil, cfg, nil, err
	}

	pkRaw, err := base64.StdEncoding.DecodeString(blob.ProvingKeyBase64)
	if err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: decode cached proving key: %v", ErrIntegrity, err)
	}
	pk = plonk.NewProvingKey(ecc.BN254)
	if _, err := pk.ReadFrom(bytes.NewReader(pkRaw)); err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: deserialize cached proving key: %v", ErrIntegrity, err)
	}

	vkRaw, err := base64.StdEncoding.DecodeString(blob.VerifyingKey)
	if err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: decode cached verifying key: %v", ErrIntegrity, err)
	}
	vk = plonk.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(bytes.NewReader(vkRaw)); err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: deserialize cached verifying key: %v", ErrIntegrity, err)
	}

	cfgCBOR, err := base64.StdEncoding.DecodeString(blob.ConfigParamsCBOR)
	if err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: decode cached config params: %v", ErrIntegrity, err)
	}
	if err := cbor.Unmarshal(cfgCBOR, &cfg); err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: cbor-decode config params: %v", ErrIntegrity, err)
	}

	bpRaw, err := base64.StdEncoding.DecodeString(blob.BreakPoints)
	if err != nil {
		return nil, nil, nil, cfg, nil, fmt.Errorf("%w: decode cached break points: %v", ErrIntegrity, err)
	}
	bp = decompressBreakPoints(bpRaw)

	return srsRaw, pk, vk, cfg, bp, nil
}

// compressBreakPoints flattens BreakPoints into a single uint32 stream
// (one group length, then its values, repeated) and delta-compresses it
// with intcomp.
func compressBreakPoints(bp BreakPoints) []byte {
	flat := make([]uint32, 0, len(bp)*2)
	for _, group := range bp {
		flat = append(flat, uint32(len(group)))
		for _, v := range group {
			flat = append(flat, uint32(v))
		}
	}
	compressed := intcomp.CompressUint32(flat)
	buf := make([]byte, len(compressed)*4)
	for i, v := range compressed {
		buf[4*i] = byte(v)
		buf[4*i+1] = byte(v >> 8)
		buf[4*i+2] = byte(v >> 16)
		buf[4*i+3] = byte(v >> 24)
	}
	return buf
}

func decompressBreakPoints(raw []byte) BreakPoints {
	if len(raw)%4 != 0 {
		return nil
	}
	compressed := make([]uint32, len(raw)/4)
	for i := range compressed {
		compressed[i] = uint32(raw[4*i]) | uint32(raw[4*i+1])<<8 | uint32(raw[4*i+2])<<16 | uint32(raw[4*i+3])<<24
	}
	flat := intcomp.UncompressUint32(compressed)

	var bp BreakPoints
	for i := 0; i < len(flat); {
		n := int(flat[i])
		i++
		group := make([]int, n)
		for j := 0; j < n; j++ {
			group[j] = int(flat[i+j])
		}
		i += n
		bp = append(bp, group)
	}
	return bp
}
