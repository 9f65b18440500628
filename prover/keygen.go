package prover

import (
	"fmt"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/google/uuid"

	"github.com/shadowatlas/districtproof/pkg/logging"
)

// Keygen compiles circuit once (the "keygen" stage, run against an
// all-zero-witness dummy assignment per the compiler's own convention —
// frontend.Compile never touches witness values, only the circuit's
// Define method, so the circuit passed in need not be pre-populated),
// loads the ceremony parameters for k, and derives the proving key,
// verifying key, configuration params, and break points. All four are
// persisted to keysDir under prefix; nothing is kept only in memory.
func Keygen(circuit frontend.Circuit, k int, ceremonyDir, keysDir, prefix string) error {
	correlationID := uuid.New()
	log := logging.Logger().With().Str("correlation_id", correlationID.String()).Str("stage", "keygen").Logger()

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, circuit)
	if err != nil {
		return fmt.Errorf("prover: keygen compile: %w", err)
	}
	log.Debug().Int("constraints", ccs.GetNbConstraints()).Msg("circuit compiled")

	raw, err := LoadCeremonyParams(ceremonyDir, k)
	if err != nil {
		return err
	}
	srs, err := DeserializeSRS(raw)
	if err != nil {
		return err
	}
	lagrange, err := LagrangeSRS(srs, ccs.GetNbConstraints())
	if err != nil {
		return fmt.Errorf("prover: derive lagrange SRS: %w", err)
	}

	pk, vk, err := plonk.Setup(ccs, srs, lagrange)
	if err != nil {
		return fmt.Errorf("prover: plonk setup: %w", err)
	}

	cfg := DeriveConfigParams(ccs, k)
	bp := DeriveBreakPoints(cfg, 1024)

	if err := os.MkdirAll(keysDir, 0o755); err != nil {
		return fmt.Errorf("prover: create keys dir: %w", err)
	}
	if err := SaveConfigParams(keysDir, prefix, cfg, bp); err != nil {
		return err
	}
	if err := savePK(keysDir, prefix, pk); err != nil {
		return err
	}
	if err := saveVK(keysDir, prefix, vk); err != nil {
		return err
	}

	log.Info().Str("keys_dir", keysDir).Str("prefix", prefix).Msg("keygen complete")
	return nil
}

func savePK(dir, prefix string, pk plonk.ProvingKey) error {
	f, err := os.Create(dir + "/" + prefix + "_prover.key")
	if err != nil {
		return fmt.Errorf("prover: create proving key file: %w", err)
	}
	defer f.Close()
	if _, err := pk.WriteTo(f); err != nil {
		return fmt.Errorf("prover: write proving key: %w", err)
	}
	return nil
}

func saveVK(dir, prefix string, vk plonk.VerifyingKey) error {
	f, err := os.Create(dir + "/" + prefix + "_verifier.key")
	if err != nil {
		return fmt.Errorf("prover: create verifying key file: %w", err)
	}
	defer f.Close()
	if _, err := vk.WriteTo(f); err != nil {
		return fmt.Errorf("prover: write verifying key: %w", err)
	}
	return nil
}

// LoadKeys loads the persisted configuration params and break points,
// then the proving and verifying keys, and returns all four. gnark's key
// deserialization takes no side input, so the configuration params are
// not used while reading the proving key; they are returned as persisted,
// never re-derived from a fresh compile, and Prove checks them against
// the circuit it compiles.
func LoadKeys(dir, prefix string) (plonk.ProvingKey, plonk.VerifyingKey, ConfigParams, BreakPoints, error) {
	cfg, bp, err := LoadConfigParams(dir, prefix)
	if err != nil {
		return nil, nil, cfg, bp, err
	}

	pk := plonk.NewProvingKey(ecc.BN254)
	pkFile, err := os.Open(dir + "/" + prefix + "_prover.key")
	if err != nil {
		return nil, nil, cfg, bp, fmt.Errorf("%w: open proving key: %v", ErrIntegrity, err)
	}
	defer pkFile.Close()
	if _, err := pk.ReadFrom(pkFile); err != nil {
		return nil, nil, cfg, bp, fmt.Errorf("%w: deserialize proving key: %v", ErrIntegrity, err)
	}

	vk := plonk.NewVerifyingKey(ecc.BN254)
	vkFile, err := os.Open(dir + "/" + prefix + "_verifier.key")
	if err != nil {
		return nil, nil, cfg, bp, fmt.Errorf("%w: open verifying key: %v", ErrIntegrity, err)
	}
	defer vkFile.Close()
	if _, err := vk.ReadFrom(vkFile); err != nil {
		return nil, nil, cfg, bp, fmt.Errorf("%w: deserialize verifying key: %v", ErrIntegrity, err)
	}

	return pk, vk, cfg, bp, nil
}
