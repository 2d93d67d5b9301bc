package splitter_token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
)

type TransferWithCommitmentInstructionArgs struct {
	PoolBump   uint8
	Amount     uint64
	Transcript Hash
	RecentRoot Hash
}

type TransferWithCommitmentInstructionAccounts struct {
	Pool        ed25519.PublicKey
	Vault       ed25519.PublicKey
	Destination ed25519.PublicKey
	Commitment  ed25519.PublicKey
	Authority   ed25519.PublicKey
	Payer       ed25519.PublicKey
}

// NewTransferWithCommitmentInstruction builds a transfer out of a pool. A
// Commitment left empty is derived from the pool, destination and args.
func NewTransferWithCommitmentInstruction(accounts *TransferWithCommitmentInstructionAccounts, args *TransferWithCommitmentInstructionArgs) (solana.Instruction, error) {
	commitment := accounts.Commitment
	if len(commitment) == 0 {
		var err error
		commitment, _, err = DeriveCommitmentAddress(&Commitment{
			Pool:        accounts.Pool,
			RecentRoot:  args.RecentRoot,
			Transcript:  args.Transcript,
			Destination: accounts.Destination,
			Amount:      args.Amount,
		})
		if err != nil {
			return solana.Instruction{}, errors.WithMessage(err, "failed to derive commitment address")
		}
	}

	return Program.Build(
		InstructionTransferWithCommitment,
		codec.Fields{
			"pool_bump":   args.PoolBump,
			"amount":      args.Amount,
			"transcript":  []byte(args.Transcript),
			"recent_root": []byte(args.RecentRoot),
		},
		program.Accounts{
			"pool":        accounts.Pool,
			"vault":       accounts.Vault,
			"destination": accounts.Destination,
			"commitment":  commitment,
			"authority":   accounts.Authority,
			"payer":       accounts.Payer,
		},
	)
}

// TransferWithCommitmentInstructionFromInstruction parses a transfer out of a
// pool.
func TransferWithCommitmentInstructionFromInstruction(ix solana.Instruction) (*TransferWithCommitmentInstructionArgs, *TransferWithCommitmentInstructionAccounts, error) {
	decoded, err := Program.DecodeInstruction(ix)
	if err != nil {
		return nil, nil, err
	}
	if decoded.Name != InstructionTransferWithCommitment {
		return nil, nil, solana.ErrIncorrectInstruction
	}

	args := &TransferWithCommitmentInstructionArgs{
		PoolBump:   decoded.Args["pool_bump"].(uint8),
		Amount:     decoded.Args["amount"].(uint64),
		Transcript: hashFromValue(decoded.Args["transcript"]),
		RecentRoot: hashFromValue(decoded.Args["recent_root"]),
	}
	accounts := &TransferWithCommitmentInstructionAccounts{
		Pool:        decoded.Account("pool"),
		Vault:       decoded.Account("vault"),
		Destination: decoded.Account("destination"),
		Commitment:  decoded.Account("commitment"),
		Authority:   decoded.Account("authority"),
		Payer:       decoded.Account("payer"),
	}
	return args, accounts, nil
}
