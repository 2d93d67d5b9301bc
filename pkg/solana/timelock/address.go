package timelock_token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

// Seed values are encoded with the same layouts the program uses for them in
// instruction and account data.
var (
	statePrefix = []byte("timelock_state")
	vaultPrefix = []byte("timelock_vault")
)

// Addresses are the program derived accounts behind one owner's timelock.
type Addresses struct {
	State     ed25519.PublicKey
	StateBump uint8
	Vault     ed25519.PublicKey
	VaultBump uint8
}

// DeriveAddresses derives the state and the Version1 vault of the timelock
// owned by owner.
func DeriveAddresses(mint, timeAuthority, owner ed25519.PublicKey, numDaysLocked uint8) (*Addresses, error) {
	state, stateBump, err := DeriveStateAddress(mint, timeAuthority, owner, numDaysLocked)
	if err != nil {
		return nil, err
	}

	vault, vaultBump, err := DeriveVaultAddress(state, DataVersion1)
	if err != nil {
		return nil, err
	}

	return &Addresses{
		State:     state,
		StateBump: stateBump,
		Vault:     vault,
		VaultBump: vaultBump,
	}, nil
}

func DeriveStateAddress(mint, timeAuthority, owner ed25519.PublicKey, numDaysLocked uint8) (ed25519.PublicKey, uint8, error) {
	return findAddress(
		statePrefix,
		seed{"mint", mint, codec.Address},
		seed{"time_authority", timeAuthority, codec.Address},
		seed{"vault_owner", owner, codec.Address},
		seed{"num_days_locked", numDaysLocked, codec.U8},
	)
}

func DeriveVaultAddress(state ed25519.PublicKey, version TimelockDataVersion) (ed25519.PublicKey, uint8, error) {
	return findAddress(
		vaultPrefix,
		seed{"state", state, codec.Address},
		seed{"data_version", codec.NewEnum(variantName(DataVersionLayout, uint8(version))), DataVersionLayout},
	)
}

type seed struct {
	name   string
	value  any
	layout *codec.Type
}

func findAddress(prefix []byte, seeds ...seed) (ed25519.PublicKey, uint8, error) {
	encoded := make([][]byte, 0, len(seeds)+1)
	encoded = append(encoded, prefix)
	for _, s := range seeds {
		b, err := codec.Encode(s.value, s.layout)
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "%s seed", s.name)
		}
		encoded = append(encoded, b)
	}
	return solana.FindProgramAddressAndBump(PROGRAM_ID, encoded...)
}
