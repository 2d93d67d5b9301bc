package program

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

// Accounts maps fixed account slot names to caller supplied addresses. Slots
// left out resolve to their default address, if any.
type Accounts map[string]ed25519.PublicKey

// Build assembles the named instruction. The data is the opcode followed by
// the encoded args, and the account list is the instruction's fixed prefix
// followed by extra in the order given. Slot flags come from the definition;
// extra accounts are appended verbatim.
func (p *Program) Build(name string, args codec.Fields, accounts Accounts, extra ...solana.AccountMeta) (solana.Instruction, error) {
	def, err := p.Instruction(name)
	if err != nil {
		return solana.Instruction{}, err
	}

	data, err := def.EncodeData(args)
	if err != nil {
		return solana.Instruction{}, errors.WithMessagef(err, "%s.%s", p.name, name)
	}

	metas, err := def.ResolveAccounts(accounts)
	if err != nil {
		return solana.Instruction{}, errors.WithMessagef(err, "%s.%s", p.name, name)
	}

	for _, meta := range extra {
		metas = append(metas, solana.AccountMeta{
			PublicKey:  append(ed25519.PublicKey(nil), meta.PublicKey...),
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		})
	}

	return solana.NewInstruction(p.Address(), data, metas...), nil
}

// EncodeData returns the instruction data: the opcode followed by args
// encoded against the argument layout.
func (d *InstructionDef) EncodeData(args codec.Fields) ([]byte, error) {
	if args == nil {
		args = codec.Fields{}
	}

	encoded, err := codec.Encode(args, d.Args)
	if err != nil {
		return nil, errors.WithMessage(err, "args")
	}

	data := make([]byte, 0, solana.OpcodeSize+len(encoded))
	data = append(data, d.Opcode[:]...)
	return append(data, encoded...), nil
}

// ResolveAccounts returns the fixed account prefix for the given caller
// accounts. Names that match no slot are rejected.
func (d *InstructionDef) ResolveAccounts(accounts Accounts) ([]solana.AccountMeta, error) {
	if len(accounts) > 0 {
		declared := make(map[string]struct{}, len(d.Accounts))
		for _, slot := range d.Accounts {
			declared[slot.Name] = struct{}{}
		}
		for name := range accounts {
			if _, ok := declared[name]; !ok {
				return nil, errors.Wrapf(ErrUnexpectedAccount, "%q", name)
			}
		}
	}

	metas := make([]solana.AccountMeta, 0, len(d.Accounts))
	for _, slot := range d.Accounts {
		meta, err := slot.Resolve(accounts[slot.Name])
		if err != nil {
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, nil
}
