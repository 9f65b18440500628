package prover

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blang/semver/v4"
	"github.com/consensys/gnark/constraint"
)

// SchemaVersion stamps every persisted ConfigParams. A loader that finds
// a different major version refuses to proceed: configuration params and
// break points must be identical at keygen time and proving time, and a
// major bump signals a layout change that would otherwise be silently
// misread.
var SchemaVersion = semver.MustParse("1.0.0")

// ConfigParams records a compiled circuit's shape. It is persisted
// alongside the proving key and loaded before the key, never regenerated
// from a fresh compile; the key's deserialization does not read it, and
// Prove compares it against the shape of the circuit it compiles.
type ConfigParams struct {
	Schema         string `json:"schema"`
	K              int    `json:"k"`
	NumConstraints int    `json:"num_constraints"`
	NumPublic      int    `json:"num_public"`
	NumSecret      int    `json:"num_secret"`
	Builder        string `json:"builder"`
}

// DeriveConfigParams captures ccs's shape into a ConfigParams for
// persistence alongside the keys produced from it.
func DeriveConfigParams(ccs constraint.ConstraintSystem, k int) ConfigParams {
	return ConfigParams{
		Schema:         SchemaVersion.String(),
		K:              k,
		NumConstraints: ccs.GetNbConstraints(),
		NumPublic:      ccs.GetNbPublicVariables(),
		NumSecret:      ccs.GetNbSecretVariables(),
		Builder:        "scs",
	}
}

// BreakPoints is a deterministic column-partition descriptor derived from
// the compiled constraint system. gnark's SCS builder does not itself
// expose a "break points" artifact the way the halo2/axiom builder this
// circuit's vocabulary comes from does; here it is reconstructed from the
// same shape information ConfigParams already captures, persisted as its
// own JSON file to match the two-artifact (config params + break points)
// persistence contract.
type BreakPoints [][]int

// DeriveBreakPoints partitions a circuit's NumConstraints constraints
// into fixed-size column groups of width groupSize, the same grouping a
// halo2-style circuit builder would record as "break points" between
// advice columns. groupSize is a compile-time constant per k, not data
// derived from the witness, so two compiles of the same circuit always
// produce identical break points.
func DeriveBreakPoints(cfg ConfigParams, groupSize int) BreakPoints {
	if groupSize <= 0 {
		groupSize = 1024
	}
	var bp BreakPoints
	remaining := cfg.NumConstraints
	for remaining > 0 {
		n := groupSize
		if n > remaining {
			n = remaining
		}
		bp = append(bp, []int{n})
		remaining -= n
	}
	return bp
}

// Matches reports whether two ConfigParams describe the same circuit
// shape under the same schema. A mismatch here is always an Integrity
// error, never a warning, because it means the persisted proving key was
// built for a different circuit than the one about to be proved.
func (c ConfigParams) Matches(other ConfigParams) error {
	want, err := semver.Parse(c.Schema)
	if err != nil {
		return fmt.Errorf("%w: invalid schema version %q: %v", ErrIntegrity, c.Schema, err)
	}
	got, err := semver.Parse(other.Schema)
	if err != nil {
		return fmt.Errorf("%w: invalid schema version %q: %v", ErrIntegrity, other.Schema, err)
	}
	if want.Major != got.Major {
		return fmt.Errorf("%w: schema version skew, expected major %d got %d", ErrIntegrity, want.Major, got.Major)
	}
	if c.K != other.K || c.NumConstraints != other.NumConstraints ||
		c.NumPublic != other.NumPublic || c.NumSecret != other.NumSecret ||
		c.Builder != other.Builder {
		return fmt.Errorf("%w: configuration params mismatch: %+v vs %+v", ErrIntegrity, c, other)
	}
	return nil
}

// SaveConfigParams writes cfg and bp as the two JSON side-files that
// accompany a proving key: <prefix>_config.json and
// <prefix>_break_points.json.
func SaveConfigParams(dir, prefix string, cfg ConfigParams, bp BreakPoints) error {
	if err := writeJSON(dir+"/"+prefix+"_config.json", cfg); err != nil {
		return err
	}
	return writeJSON(dir+"/"+prefix+"_break_points.json", bp)
}

// LoadConfigParams reads the two JSON side-files written by
// SaveConfigParams.
func LoadConfigParams(dir, prefix string) (ConfigParams, BreakPoints, error) {
	var cfg ConfigParams
	var bp BreakPoints
	if err := readJSON(dir+"/"+prefix+"_config.json", &cfg); err != nil {
		return cfg, nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	if err := readJSON(dir+"/"+prefix+"_break_points.json", &bp); err != nil {
		return cfg, nil, fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return cfg, bp, nil
}

func writeJSON(path string, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("prover: marshal %s: %w", path, err)
	}
	return os.WriteFile(path, b, 0o644)
}

func readJSON(path string, v interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return nil
}
