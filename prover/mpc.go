package prover

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16/bn254/mpcsetup"
	"github.com/consensys/gnark/constraint"

	bn254kzg "github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
)

// CeremonyDir is the default directory Phase1* functions read and write
// contribution files under.
const CeremonyDir = "ceremony"

// Phase1 is one party's state in a Powers-of-Tau ceremony: a sequence of
// toxic-waste contributions accumulated into an ever-larger domain
// commitment, sealed at the end by a public random beacon. Phase 1 is
// circuit-independent — it only depends on a domain size — which is
// exactly what a PLONK universal SRS needs and a Groth16 circuit-specific
// Phase 2 ceremony (which this package does not implement; see DESIGN.md)
// does not have.
type Phase1 = mpcsetup.Phase1

// Phase1Init begins a new Powers-of-Tau ceremony sized to cover a
// constraint system with numConstraints constraints, rounded up to the
// next power of two domain size.
func Phase1Init(numConstraints int) error {
	if err := os.MkdirAll(CeremonyDir, 0o755); err != nil {
		return fmt.Errorf("prover: create ceremony dir: %w", err)
	}

	n := ecc.NextPowerOfTwo(uint64(numConstraints))
	p := mpcsetup.NewPhase1(n)

	path := nextContribPath("phase1")
	if err := saveObject(path, p); err != nil {
		return err
	}
	return nil
}

// Phase1Contribute loads the latest Phase1 state, adds a fresh
// contribution, and persists the result as the next file in sequence.
// Each participant in a ceremony calls this once, handing the resulting
// file to the next participant.
func Phase1Contribute() error {
	latest, err := latestContrib("phase1")
	if err != nil {
		return err
	}

	var p mpcsetup.Phase1
	if err := loadObject(latest, &p); err != nil {
		return err
	}

	p.Contribute()

	path := nextContribPath("phase1")
	return saveObject(path, &p)
}

// Phase1Verify checks every recorded contribution against the initial
// state, seals the ceremony with beacon (public randomness drawn after
// the last contribution, so no participant could have biased the final
// result), and derives the KZG SRS sized for a constraint system with
// numConstraints constraints. The returned SRS is in exactly the format
// LoadCeremonyParams expects to read back.
func Phase1Verify(numConstraints int, beacon []byte) (*bn254kzg.SRS, error) {
	if len(beacon) < 16 {
		return nil, fmt.Errorf("prover: beacon must be at least 16 bytes for sufficient entropy")
	}

	n := ecc.NextPowerOfTwo(uint64(numConstraints))

	contribs, err := findContribs("phase1")
	if err != nil {
		return nil, err
	}
	if len(contribs) < 2 {
		return nil, fmt.Errorf("prover: need at least the init file plus one contribution to verify")
	}

	phases := make([]*mpcsetup.Phase1, len(contribs)-1)
	for i, path := range contribs[1:] {
		phases[i] = new(mpcsetup.Phase1)
		if err := loadObject(path, phases[i]); err != nil {
			return nil, err
		}
	}

	commons, err := mpcsetup.VerifyPhase1(n, beacon, phases...)
	if err != nil {
		return nil, fmt.Errorf("prover: phase 1 verification failed: %w", err)
	}

	return commonsToSRS(&commons)
}

// commonsToSRS converts the verified Phase1 commons (G1/G2 powers of tau
// in monomial basis) into the bn254kzg.SRS shape prover.DeserializeSRS
// and LagrangeSRS already operate on, so a completed ceremony plugs
// directly into the rest of this package without a second conversion
// step living outside it.
func commonsToSRS(commons *mpcsetup.SrsCommons) (*bn254kzg.SRS, error) {
	srs := &bn254kzg.SRS{}
	srs.Pk.G1 = commons.G1.Tau
	if len(commons.G2.Tau) < 2 {
		return nil, fmt.Errorf("prover: phase 1 commons missing expected G2 tau powers")
	}
	srs.Vk.G1 = commons.G1.Tau[0]
	srs.Vk.G2[0] = commons.G2.Tau[0]
	srs.Vk.G2[1] = commons.G2.Tau[1]
	return srs, nil
}

// ExportSRS serializes an srs produced by Phase1Verify to path, in the
// same raw format LoadCeremonyParams reads, so a completed ceremony's
// output can be dropped straight into the ceremony parameter directory.
func ExportSRS(srs *bn254kzg.SRS, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("prover: create ceremony output: %w", err)
	}
	defer f.Close()
	if _, err := srs.WriteTo(f); err != nil {
		return fmt.Errorf("prover: write ceremony output: %w", err)
	}
	return nil
}

// NbConstraintsOf returns ccs's constraint count, a thin helper so
// callers of Phase1Init/Phase1Verify need not import
// github.com/consensys/gnark/constraint themselves just to read one field.
func NbConstraintsOf(ccs constraint.ConstraintSystem) int {
	return ccs.GetNbConstraints()
}

func saveObject(path string, obj io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("prover: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.WriteTo(f); err != nil {
		return fmt.Errorf("prover: write %s: %w", path, err)
	}
	return nil
}

func loadObject(path string, obj io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("prover: open %s: %w", path, err)
	}
	defer f.Close()
	if _, err := obj.ReadFrom(f); err != nil {
		return fmt.Errorf("prover: read %s: %w", path, err)
	}
	return nil
}

func findContribs(prefix string) ([]string, error) {
	pattern := filepath.Join(CeremonyDir, prefix+"_????.bin")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("prover: glob ceremony contributions: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

func latestContrib(prefix string) (string, error) {
	contribs, err := findContribs(prefix)
	if err != nil {
		return "", err
	}
	if len(contribs) == 0 {
		return "", fmt.Errorf("prover: no %s contributions found in %s/", prefix, CeremonyDir)
	}
	return contribs[len(contribs)-1], nil
}

func nextContribPath(prefix string) string {
	contribs, _ := findContribs(prefix)
	return filepath.Join(CeremonyDir, fmt.Sprintf("%s_%04d.bin", prefix, len(contribs)))
}
