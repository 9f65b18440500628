package poseidon

import (
	"testing"

	"github.com/shadowatlas/districtproof/field"
)

// TestCanaryParameterDrift pins down the fact that the R_P=57 production
// parameter set and the R_P=56 PSE variant are different hash families. If
// this test ever starts failing, something has made the two partial round
// counts produce the same output, which should be impossible.
func TestCanaryParameterDrift(t *testing.T) {
	var a, b field.F
	a.SetUint64(1)
	b.SetUint64(2)

	production := Hash2(a, b)
	canary := canaryHash2(a, b)

	if production.Equal(&canary) {
		t.Fatalf("production (R_P=57) and canary (R_P=56) parameter sets produced the same hash")
	}
}

// TestGenerateParametersDeterministic checks that building the same
// parameter set twice from the same label yields identical round
// constants and MDS entries, since Parameters is cached process-wide via
// sync.Once and every caller must be able to rely on that.
func TestGenerateParametersDeterministic(t *testing.T) {
	p1 := generateParameters("districtproof/poseidon/test-label", Width, FullRounds, PartialRounds)
	p2 := generateParameters("districtproof/poseidon/test-label", Width, FullRounds, PartialRounds)

	for r := range p1.RoundConstants {
		for w := range p1.RoundConstants[r] {
			if !p1.RoundConstants[r][w].Equal(&p2.RoundConstants[r][w]) {
				t.Fatalf("round constant [%d][%d] differs across identical-label generations", r, w)
			}
		}
	}
	for i := range p1.MDS {
		for j := range p1.MDS[i] {
			if !p1.MDS[i][j].Equal(&p2.MDS[i][j]) {
				t.Fatalf("MDS[%d][%d] differs across identical-label generations", i, j)
			}
		}
	}
}

// TestGenerateParametersLabelSensitive checks that changing the label
// changes the derived constants, so Production() and canary() cannot
// accidentally collide.
func TestGenerateParametersLabelSensitive(t *testing.T) {
	p1 := generateParameters("districtproof/poseidon/label-a", Width, FullRounds, PartialRounds)
	p2 := generateParameters("districtproof/poseidon/label-b", Width, FullRounds, PartialRounds)

	if p1.RoundConstants[0][0].Equal(&p2.RoundConstants[0][0]) {
		t.Fatalf("different labels produced the same first round constant")
	}
}
