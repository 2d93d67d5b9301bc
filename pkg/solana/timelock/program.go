package timelock_token

import (
	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
)

const ProgramName = "timelock"

var (
	PROGRAM_ADDRESS = solana.MustPublicKeyFromBase58("time2Z2SCnn3qYg3ULKVtdkh8YmZ5jFdKicnA1W2YnJ")
	PROGRAM_ID      = PROGRAM_ADDRESS
)

const (
	InstructionInitialize              = "initialize"
	InstructionActivate                = "activate"
	InstructionDeactivate              = "deactivate"
	InstructionCancelLockTimeout       = "cancel_lock_timeout"
	InstructionRevokeLockWithAuthority = "revoke_lock_with_authority"
	InstructionRevokeLockWithTimeout   = "revoke_lock_with_timeout"
	InstructionTransferWithAuthority   = "transfer_with_authority"
	InstructionWithdraw                = "withdraw"

	// Only valid against legacy accounts.
	InstructionBurnDustWithAuthority = "burn_dust_with_authority"
	InstructionCloseAccounts         = "close_accounts"
)

const AccountTimeLock = "TimeLockAccount"

var bumpOnly = codec.Struct(codec.NewField("timelock_bump", codec.U8))

func instruction(name string, args *codec.Type, accounts ...program.AccountSlot) program.InstructionDef {
	return program.InstructionDef{
		Name:     name,
		Opcode:   program.InstructionDiscriminator(name),
		Args:     args,
		Accounts: accounts,
	}
}

var (
	tokenProgram  = program.Fixed("spl_token_program", solana.SPL_TOKEN_PROGRAM_ID)
	systemProgram = program.Fixed("system_program", solana.SYSTEM_PROGRAM_ID)
	rentSysvar    = program.Fixed("rent_sysvar", solana.SYSVAR_RENT_PUBKEY)
)

// Program is the timelock program's instruction and account table.
var Program = program.MustNewProgram(
	ProgramName,
	PROGRAM_ID,
	[]program.InstructionDef{
		instruction(
			InstructionInitialize,
			codec.Struct(codec.NewField("num_days_locked", codec.U8)),
			program.Writable("timelock"),
			program.Writable("vault"),
			program.Readonly("vault_owner"),
			program.Readonly("mint"),
			program.Signer("time_authority"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
			rentSysvar,
		),
		instruction(
			InstructionActivate,
			bumpOnly,
			program.Writable("timelock"),
			program.Signer("vault_owner"),
			program.WritableSigner("payer"),
		),
		instruction(
			InstructionDeactivate,
			bumpOnly,
			program.Writable("timelock"),
			program.Signer("vault_owner"),
			program.WritableSigner("payer"),
		),
		instruction(
			InstructionCancelLockTimeout,
			bumpOnly,
			program.Writable("timelock"),
			program.Signer("time_authority"),
			program.WritableSigner("payer"),
			systemProgram,
		),
		instruction(
			InstructionRevokeLockWithAuthority,
			bumpOnly,
			program.Writable("timelock"),
			program.Readonly("vault"),
			program.Signer("time_authority"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
		),
		instruction(
			InstructionRevokeLockWithTimeout,
			bumpOnly,
			program.Writable("timelock"),
			program.Readonly("vault"),
			program.Signer("vault_owner"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
		),
		instruction(
			InstructionTransferWithAuthority,
			codec.Struct(
				codec.NewField("timelock_bump", codec.U8),
				codec.NewField("amount", codec.U64),
			),
			program.Readonly("timelock"),
			program.Writable("vault"),
			program.Signer("vault_owner"),
			program.Signer("time_authority"),
			program.Writable("destination"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
		),
		instruction(
			InstructionWithdraw,
			bumpOnly,
			program.Readonly("timelock"),
			program.Writable("vault"),
			program.Signer("vault_owner"),
			program.Writable("destination"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
		),
		instruction(
			InstructionBurnDustWithAuthority,
			codec.Struct(
				codec.NewField("timelock_bump", codec.U8),
				codec.NewField("max_amount", codec.U64),
			),
			program.Writable("timelock"),
			program.Writable("vault"),
			program.Signer("vault_owner"),
			program.Signer("time_authority"),
			program.Writable("mint"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
		),
		instruction(
			InstructionCloseAccounts,
			bumpOnly,
			program.Writable("timelock"),
			program.Writable("vault"),
			program.Signer("close_authority"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
		),
	},
	[]program.AccountDef{
		{
			Name:          AccountTimeLock,
			Discriminator: program.AccountDiscriminator(AccountTimeLock),
			Layout:        TimelockAccountLayout,
		},
	},
)
