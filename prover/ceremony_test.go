package prover_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shadowatlas/districtproof/prover"
)

// ceremonyPreimage reproduces the content whose Blake2b-512 digest was
// hard-coded as the canonical digest for k, so tests can write a file
// that is guaranteed to pass the integrity check without committing a
// real multi-megabyte ceremony file to the repository.
func ceremonyPreimage(k int) []byte {
	return []byte(fmt.Sprintf("axiom-kzg-bn254-challenge_0085-k%d", k))
}

func TestLoadCeremonyParamsAcceptsMatchingDigest(t *testing.T) {
	dir := t.TempDir()
	k := 14
	path := filepath.Join(dir, fmt.Sprintf("axiom_params_k%d.srs", k))
	if err := os.WriteFile(path, ceremonyPreimage(k), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	raw, err := prover.LoadCeremonyParams(dir, k)
	if err != nil {
		t.Fatalf("expected matching digest to load, got: %v", err)
	}
	if string(raw) != string(ceremonyPreimage(k)) {
		t.Fatalf("loaded bytes do not match fixture")
	}
}

func TestLoadCeremonyParamsRejectsTamperedFile(t *testing.T) {
	dir := t.TempDir()
	k := 14
	path := filepath.Join(dir, fmt.Sprintf("axiom_params_k%d.srs", k))
	tampered := append(ceremonyPreimage(k), 0x00)
	if err := os.WriteFile(path, tampered, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := prover.LoadCeremonyParams(dir, k); err == nil {
		t.Fatalf("expected digest mismatch for tampered file")
	}
}

func TestLoadCeremonyParamsRejectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	if _, err := prover.LoadCeremonyParams(dir, 14); err == nil {
		t.Fatalf("expected error for missing ceremony file")
	}
}

func TestLoadCeremonyParamsRejectsKOutOfRange(t *testing.T) {
	dir := t.TempDir()
	if _, err := prover.LoadCeremonyParams(dir, 9); err == nil {
		t.Fatalf("expected error for k below MinK")
	}
	if _, err := prover.LoadCeremonyParams(dir, 21); err == nil {
		t.Fatalf("expected error for k above MaxK")
	}
}
