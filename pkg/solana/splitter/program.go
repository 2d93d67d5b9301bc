package splitter_token

import (
	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
)

const ProgramName = "splitter"

var (
	PROGRAM_ADDRESS = solana.MustPublicKeyFromBase58("spLit2eb13Tz93if6aJM136nUWki5PVUsoEjcUjwpwW")
	PROGRAM_ID      = PROGRAM_ADDRESS
)

const (
	InstructionInitializePool         = "initialize_pool"
	InstructionSaveRecentRoot         = "save_recent_root"
	InstructionTransferWithCommitment = "transfer_with_commitment"
	InstructionInitializeProof        = "initialize_proof"
	InstructionUploadProof            = "upload_proof"
	InstructionVerifyProof            = "verify_proof"
	InstructionOpenTokenAccount       = "open_token_account"
	InstructionCloseTokenAccount      = "close_token_account"
	InstructionCloseProof             = "close_proof"
)

const (
	AccountPool  = "Pool"
	AccountProof = "Proof"
)

func bumps(names ...string) *codec.Type {
	fields := make([]codec.Field, len(names))
	for i, name := range names {
		fields[i] = codec.NewField(name, codec.U8)
	}
	return codec.Struct(fields...)
}

func instruction(name string, args *codec.Type, accounts ...program.AccountSlot) program.InstructionDef {
	return program.InstructionDef{
		Name:     name,
		Opcode:   program.InstructionDiscriminator(name),
		Args:     args,
		Accounts: accounts,
	}
}

var (
	tokenProgram  = program.Fixed("token_program", solana.SPL_TOKEN_PROGRAM_ID)
	systemProgram = program.Fixed("system_program", solana.SYSTEM_PROGRAM_ID)
	rentSysvar    = program.Fixed("rent", solana.SYSVAR_RENT_PUBKEY)
)

// Program is the splitter program's instruction and account table.
var Program = program.MustNewProgram(
	ProgramName,
	PROGRAM_ID,
	[]program.InstructionDef{
		instruction(
			InstructionInitializePool,
			codec.Struct(
				codec.NewField("name", codec.String),
				codec.NewField("levels", codec.U8),
			),
			program.Writable("pool"),
			program.Writable("vault"),
			program.Readonly("mint"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
			rentSysvar,
		),
		instruction(
			InstructionSaveRecentRoot,
			bumps("pool_bump"),
			program.Writable("pool"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
		),
		instruction(
			InstructionTransferWithCommitment,
			codec.Struct(
				codec.NewField("pool_bump", codec.U8),
				codec.NewField("amount", codec.U64),
				codec.NewField("transcript", codec.Hash),
				codec.NewField("recent_root", codec.Hash),
			),
			program.Writable("pool"),
			program.Writable("vault"),
			program.Writable("destination"),
			program.Readonly("commitment"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
			rentSysvar,
		),
		instruction(
			InstructionInitializeProof,
			codec.Struct(
				codec.NewField("pool_bump", codec.U8),
				codec.NewField("merkle_root", codec.Hash),
				codec.NewField("commitment", codec.Address),
			),
			program.Readonly("pool"),
			program.Writable("proof"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
			systemProgram,
			rentSysvar,
		),
		instruction(
			InstructionUploadProof,
			codec.Struct(
				codec.NewField("pool_bump", codec.U8),
				codec.NewField("proof_bump", codec.U8),
				codec.NewField("current_size", codec.U8),
				codec.NewField("data_size", codec.U8),
				codec.NewField("data", codec.VariableArray(codec.Hash)),
			),
			program.Readonly("pool"),
			program.Writable("proof"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
		),
		instruction(
			InstructionVerifyProof,
			bumps("pool_bump", "proof_bump"),
			program.Writable("pool"),
			program.Writable("proof"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
		),
		instruction(
			InstructionOpenTokenAccount,
			bumps("pool_bump", "proof_bump"),
			program.Readonly("pool"),
			program.Readonly("proof"),
			program.Writable("commitment_vault"),
			program.Readonly("mint"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
			rentSysvar,
		),
		instruction(
			InstructionCloseTokenAccount,
			bumps("pool_bump", "proof_bump", "vault_bump"),
			program.Writable("pool"),
			program.Writable("proof"),
			program.Writable("commitment_vault"),
			program.Writable("pool_vault"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
			tokenProgram,
			systemProgram,
		),
		instruction(
			InstructionCloseProof,
			bumps("pool_bump", "proof_bump"),
			program.Writable("pool"),
			program.Writable("proof"),
			program.Signer("authority"),
			program.WritableSigner("payer"),
			systemProgram,
			rentSysvar,
		),
	},
	[]program.AccountDef{
		{
			Name:          AccountPool,
			Discriminator: program.AccountDiscriminator(AccountPool),
			Layout:        PoolAccountLayout,
		},
		{
			Name:          AccountProof,
			Discriminator: program.AccountDiscriminator(AccountProof),
			Layout:        ProofAccountLayout,
		},
	},
)
