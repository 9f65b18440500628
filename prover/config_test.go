package prover_test

import (
	"testing"

	"github.com/shadowatlas/districtproof/prover"
)

func baseConfig() prover.ConfigParams {
	return prover.ConfigParams{
		Schema:         prover.SchemaVersion.String(),
		K:              14,
		NumConstraints: 4096,
		NumPublic:      3,
		NumSecret:      20,
		Builder:        "scs",
	}
}

func TestConfigParamsMatchesIdentical(t *testing.T) {
	cfg := baseConfig()
	if err := cfg.Matches(cfg); err != nil {
		t.Fatalf("identical configs should match: %v", err)
	}
}

func TestConfigParamsMatchesRejectsConstraintDrift(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.NumConstraints++
	if err := a.Matches(b); err == nil {
		t.Fatalf("expected mismatch error for differing constraint counts")
	}
}

func TestConfigParamsMatchesRejectsKDrift(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.K = 15
	if err := a.Matches(b); err == nil {
		t.Fatalf("expected mismatch error for differing k")
	}
}

func TestConfigParamsMatchesRejectsMajorVersionSkew(t *testing.T) {
	a := baseConfig()
	b := baseConfig()
	b.Schema = "2.0.0"
	if err := a.Matches(b); err == nil {
		t.Fatalf("expected mismatch error for major schema version skew")
	}
}

func TestDeriveBreakPointsPartitionsExactly(t *testing.T) {
	cfg := prover.ConfigParams{NumConstraints: 2500}
	bp := prover.DeriveBreakPoints(cfg, 1024)

	total := 0
	for _, group := range bp {
		if len(group) != 1 {
			t.Fatalf("expected one-element groups, got %v", group)
		}
		total += group[0]
	}
	if total != cfg.NumConstraints {
		t.Fatalf("break points do not sum to NumConstraints: got %d want %d", total, cfg.NumConstraints)
	}
	if len(bp) != 3 {
		t.Fatalf("expected 3 groups for 2500 constraints at groupSize 1024, got %d", len(bp))
	}
}

func TestDeriveBreakPointsDeterministic(t *testing.T) {
	cfg := prover.ConfigParams{NumConstraints: 9000}
	a := prover.DeriveBreakPoints(cfg, 1024)
	b := prover.DeriveBreakPoints(cfg, 1024)
	if len(a) != len(b) {
		t.Fatalf("expected deterministic break points, got different lengths")
	}
	for i := range a {
		if a[i][0] != b[i][0] {
			t.Fatalf("expected deterministic break points, group %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}
