package solana

import (
	"crypto/ed25519"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/pkg/errors"
)

// ToSDKInstruction converts an assembled instruction into the type consumed
// by the solana-go-sdk transaction builder and RPC client. Account order and
// flags are carried over unchanged.
func ToSDKInstruction(ix Instruction) (types.Instruction, error) {
	if len(ix.Program) != ed25519.PublicKeySize {
		return types.Instruction{}, errors.Wrap(ErrInvalidPublicKey, "program")
	}

	accounts := make([]types.AccountMeta, len(ix.Accounts))
	for i, a := range ix.Accounts {
		if len(a.PublicKey) != ed25519.PublicKeySize {
			return types.Instruction{}, errors.Wrapf(ErrInvalidPublicKey, "account %d", i)
		}

		accounts[i] = types.AccountMeta{
			PubKey:     common.PublicKeyFromBytes(a.PublicKey),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}

	return types.Instruction{
		ProgramID: common.PublicKeyFromBytes(ix.Program),
		Accounts:  accounts,
		Data:      append([]byte(nil), ix.Data...),
	}, nil
}

// FromSDKInstruction is the inverse of ToSDKInstruction, used when
// inspecting instructions parsed by the SDK.
func FromSDKInstruction(ix types.Instruction) Instruction {
	accounts := make([]AccountMeta, len(ix.Accounts))
	for i, a := range ix.Accounts {
		accounts[i] = AccountMeta{
			PublicKey:  ed25519.PublicKey(a.PubKey.Bytes()),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}

	return Instruction{
		Program:  ed25519.PublicKey(ix.ProgramID.Bytes()),
		Accounts: accounts,
		Data:     append([]byte(nil), ix.Data...),
	}
}
