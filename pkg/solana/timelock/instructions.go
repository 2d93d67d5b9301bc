package timelock_token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
)

// Typed wrappers over Program for the instructions the server builds most
// often. Everything else goes through Program.Build directly.

type InitializeInstructionArgs struct {
	NumDaysLocked uint8
}

type InitializeInstructionAccounts struct {
	Timelock      ed25519.PublicKey
	Vault         ed25519.PublicKey
	VaultOwner    ed25519.PublicKey
	Mint          ed25519.PublicKey
	TimeAuthority ed25519.PublicKey
	Payer         ed25519.PublicKey
}

// NewInitializeInstruction builds an initialize instruction. A Timelock or
// Vault left empty is derived from the owner, mint, time authority and lock
// duration.
func NewInitializeInstruction(accounts *InitializeInstructionAccounts, args *InitializeInstructionArgs) (solana.Instruction, error) {
	state, vault := accounts.Timelock, accounts.Vault
	if len(state) == 0 || len(vault) == 0 {
		derived, err := DeriveAddresses(accounts.Mint, accounts.TimeAuthority, accounts.VaultOwner, args.NumDaysLocked)
		if err != nil {
			return solana.Instruction{}, errors.WithMessage(err, "failed to derive timelock addresses")
		}
		if len(state) == 0 {
			state = derived.State
		}
		if len(vault) == 0 {
			vault = derived.Vault
		}
	}

	return Program.Build(
		InstructionInitialize,
		codec.Fields{"num_days_locked": args.NumDaysLocked},
		program.Accounts{
			"timelock":       state,
			"vault":          vault,
			"vault_owner":    accounts.VaultOwner,
			"mint":           accounts.Mint,
			"time_authority": accounts.TimeAuthority,
			"payer":          accounts.Payer,
		},
	)
}

type TransferWithAuthorityInstructionArgs struct {
	TimelockBump uint8
	Amount       uint64
}

type TransferWithAuthorityInstructionAccounts struct {
	Timelock      ed25519.PublicKey
	Vault         ed25519.PublicKey
	VaultOwner    ed25519.PublicKey
	TimeAuthority ed25519.PublicKey
	Destination   ed25519.PublicKey
	Payer         ed25519.PublicKey
}

func NewTransferWithAuthorityInstruction(accounts *TransferWithAuthorityInstructionAccounts, args *TransferWithAuthorityInstructionArgs) (solana.Instruction, error) {
	return Program.Build(
		InstructionTransferWithAuthority,
		codec.Fields{
			"timelock_bump": args.TimelockBump,
			"amount":        args.Amount,
		},
		program.Accounts{
			"timelock":       accounts.Timelock,
			"vault":          accounts.Vault,
			"vault_owner":    accounts.VaultOwner,
			"time_authority": accounts.TimeAuthority,
			"destination":    accounts.Destination,
			"payer":          accounts.Payer,
		},
	)
}

// TransferWithAuthorityInstructionFromInstruction parses a transfer built by
// NewTransferWithAuthorityInstruction, or received on chain.
func TransferWithAuthorityInstructionFromInstruction(ix solana.Instruction) (*TransferWithAuthorityInstructionArgs, *TransferWithAuthorityInstructionAccounts, error) {
	decoded, err := decodeAs(ix, InstructionTransferWithAuthority)
	if err != nil {
		return nil, nil, err
	}

	args := &TransferWithAuthorityInstructionArgs{
		TimelockBump: decoded.Args["timelock_bump"].(uint8),
		Amount:       decoded.Args["amount"].(uint64),
	}
	accounts := &TransferWithAuthorityInstructionAccounts{
		Timelock:      decoded.Account("timelock"),
		Vault:         decoded.Account("vault"),
		VaultOwner:    decoded.Account("vault_owner"),
		TimeAuthority: decoded.Account("time_authority"),
		Destination:   decoded.Account("destination"),
		Payer:         decoded.Account("payer"),
	}
	return args, accounts, nil
}

type WithdrawInstructionArgs struct {
	TimelockBump uint8
}

type WithdrawInstructionAccounts struct {
	Timelock    ed25519.PublicKey
	Vault       ed25519.PublicKey
	VaultOwner  ed25519.PublicKey
	Destination ed25519.PublicKey
	Payer       ed25519.PublicKey
}

func NewWithdrawInstruction(accounts *WithdrawInstructionAccounts, args *WithdrawInstructionArgs) (solana.Instruction, error) {
	return Program.Build(
		InstructionWithdraw,
		codec.Fields{"timelock_bump": args.TimelockBump},
		program.Accounts{
			"timelock":    accounts.Timelock,
			"vault":       accounts.Vault,
			"vault_owner": accounts.VaultOwner,
			"destination": accounts.Destination,
			"payer":       accounts.Payer,
		},
	)
}

func decodeAs(ix solana.Instruction, name string) (*program.DecodedInstruction, error) {
	decoded, err := Program.DecodeInstruction(ix)
	if err != nil {
		return nil, err
	}
	if decoded.Name != name {
		return nil, solana.ErrIncorrectInstruction
	}
	return decoded, nil
}
