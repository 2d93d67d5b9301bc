package program

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

// DecodedInstruction is an instruction mapped back onto its definition.
type DecodedInstruction struct {
	Program string
	Name    string
	Args    codec.Fields

	// Accounts holds the fixed prefix in slot order, with Named indexing it
	// by slot name.
	Accounts []solana.AccountMeta
	Named    map[string]solana.AccountMeta

	// Extra holds the accounts that follow the fixed prefix.
	Extra []solana.AccountMeta

	// Trailing is the number of data bytes left after the args. A non-zero
	// value usually means the program's layout has changed.
	Trailing int
}

// Account returns the address bound to the named slot, or nil.
func (d *DecodedInstruction) Account(name string) ed25519.PublicKey {
	return d.Named[name].PublicKey
}

// DecodeInstruction reverses Build: the opcode selects the definition, the
// args are decoded against its layout and the accounts are split into the
// fixed prefix and the extra suffix.
func (p *Program) DecodeInstruction(ix solana.Instruction) (*DecodedInstruction, error) {
	if !p.IsProgram(ix.Program) {
		return nil, errors.Wrapf(solana.ErrIncorrectProgram, "expected %s, got %s", solana.Base58(p.address), solana.Base58(ix.Program))
	}

	opcode, ok := DiscriminatorFromBytes(ix.Data)
	if !ok {
		return nil, errors.Wrapf(codec.ErrTruncatedBuffer, "instruction data is %d bytes", len(ix.Data))
	}

	def, err := p.InstructionByOpcode(opcode)
	if err != nil {
		return nil, err
	}

	value, consumed, err := codec.Decode(ix.Data[solana.OpcodeSize:], def.Args)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s.%s: args", p.name, def.Name)
	}

	if len(ix.Accounts) < len(def.Accounts) {
		return nil, errors.Wrapf(
			ErrMissingRequiredAccount,
			"%s.%s: expected at least %d accounts, got %d",
			p.name,
			def.Name,
			len(def.Accounts),
			len(ix.Accounts),
		)
	}

	cloned := ix.Clone()
	decoded := &DecodedInstruction{
		Program:  p.name,
		Name:     def.Name,
		Args:     value.(codec.Fields),
		Accounts: cloned.Accounts[:len(def.Accounts):len(def.Accounts)],
		Named:    make(map[string]solana.AccountMeta, len(def.Accounts)),
		Trailing: len(ix.Data) - solana.OpcodeSize - consumed,
	}
	if len(cloned.Accounts) > len(def.Accounts) {
		decoded.Extra = cloned.Accounts[len(def.Accounts):]
	}
	for i, slot := range def.Accounts {
		decoded.Named[slot.Name] = decoded.Accounts[i]
	}

	return decoded, nil
}

// DecodedAccount is account state decoded against its layout.
type DecodedAccount struct {
	Program string
	Name    string
	Fields  codec.Fields

	// Trailing is the number of unconsumed bytes after the layout, which
	// includes any zero padding the program reserved for the account.
	Trailing int
}

// DecodeAccount selects the account type by the leading discriminator and
// decodes the rest of data against its layout.
func (p *Program) DecodeAccount(data []byte) (*DecodedAccount, error) {
	discriminator, ok := DiscriminatorFromBytes(data)
	if !ok {
		return nil, errors.Wrapf(codec.ErrTruncatedBuffer, "account data is %d bytes", len(data))
	}

	def, ok := p.accountsByDiscriminator[discriminator]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAccount, "%s: discriminator %s", p.name, discriminator)
	}

	value, consumed, err := codec.Decode(data[solana.OpcodeSize:], def.Layout)
	if err != nil {
		return nil, errors.WithMessagef(err, "%s.%s", p.name, def.Name)
	}

	fields, ok := value.(codec.Fields)
	if !ok {
		fields = codec.Fields{"value": value}
	}

	return &DecodedAccount{
		Program:  p.name,
		Name:     def.Name,
		Fields:   fields,
		Trailing: len(data) - solana.OpcodeSize - consumed,
	}, nil
}
