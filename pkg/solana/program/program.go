package program

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

// AccountSlot is one position of an instruction's fixed account prefix. Its
// flags belong to the instruction and are never taken from the caller.
type AccountSlot struct {
	Name       string
	IsSigner   bool
	IsWritable bool

	// Default, when set, is used if the caller leaves the slot empty. It is
	// typically a program or sysvar address.
	Default ed25519.PublicKey

	// Optional slots left empty take Default as a readonly, non-signing
	// placeholder.
	Optional bool
}

// Resolve returns the account for this slot given the caller's address, if
// any. It is a pure function of the slot and its input.
func (s AccountSlot) Resolve(supplied ed25519.PublicKey) (solana.AccountMeta, error) {
	address := supplied
	placeholder := false
	if len(address) == 0 {
		address = s.Default
		placeholder = s.Optional
	}

	if len(address) == 0 {
		return solana.AccountMeta{}, errors.Wrapf(ErrMissingRequiredAccount, "%q", s.Name)
	}
	if len(address) != ed25519.PublicKeySize {
		return solana.AccountMeta{}, errors.Wrapf(ErrInvalidAccountAddress, "%q is %d bytes", s.Name, len(address))
	}

	address = append(ed25519.PublicKey(nil), address...)
	if placeholder {
		return solana.NewReadonlyAccountMeta(address, false), nil
	}
	return solana.AccountMeta{
		PublicKey:  address,
		IsSigner:   s.IsSigner,
		IsWritable: s.IsWritable,
	}, nil
}

// Signer declares a readonly signer slot.
func Signer(name string) AccountSlot {
	return AccountSlot{Name: name, IsSigner: true}
}

// WritableSigner declares a writable signer slot, such as a fee payer.
func WritableSigner(name string) AccountSlot {
	return AccountSlot{Name: name, IsSigner: true, IsWritable: true}
}

// Writable declares a writable, non-signing slot.
func Writable(name string) AccountSlot {
	return AccountSlot{Name: name, IsWritable: true}
}

// Readonly declares a readonly, non-signing slot.
func Readonly(name string) AccountSlot {
	return AccountSlot{Name: name}
}

// Fixed declares a readonly, non-signing slot that defaults to address.
func Fixed(name string, address ed25519.PublicKey) AccountSlot {
	return AccountSlot{Name: name, Default: address}
}

// InstructionDef is the static contract of one instruction: its opcode, the
// layout of its arguments and its fixed account prefix.
type InstructionDef struct {
	Name     string
	Opcode   Discriminator
	Args     *codec.Type
	Accounts []AccountSlot
}

// AccountDef describes the data layout of one account type owned by a
// program.
type AccountDef struct {
	Name          string
	Discriminator Discriminator
	Layout        *codec.Type
}

// Program is the table of instructions and account types for one on-chain
// program. It is immutable once constructed.
type Program struct {
	name    string
	address ed25519.PublicKey

	instructions []*InstructionDef
	byName       map[string]*InstructionDef
	byOpcode     map[Discriminator]*InstructionDef

	accounts                []*AccountDef
	accountsByName          map[string]*AccountDef
	accountsByDiscriminator map[Discriminator]*AccountDef
}

// NewProgram validates a program table. Opcodes and account discriminators
// must be unique, argument layouts must be structs and slot names must be
// unique within an instruction.
func NewProgram(name string, address ed25519.PublicKey, instructions []InstructionDef, accounts []AccountDef) (*Program, error) {
	if len(name) == 0 {
		return nil, errors.Wrap(ErrInvalidDefinition, "program has no name")
	}
	if len(address) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidDefinition, "%s: program address is %d bytes", name, len(address))
	}

	p := &Program{
		name:                    name,
		address:                 append(ed25519.PublicKey(nil), address...),
		byName:                  make(map[string]*InstructionDef, len(instructions)),
		byOpcode:                make(map[Discriminator]*InstructionDef, len(instructions)),
		accountsByName:          make(map[string]*AccountDef, len(accounts)),
		accountsByDiscriminator: make(map[Discriminator]*AccountDef, len(accounts)),
	}

	for i := range instructions {
		def, err := copyInstruction(instructions[i])
		if err != nil {
			return nil, errors.WithMessage(err, name)
		}

		if _, ok := p.byName[def.Name]; ok {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%s: duplicate instruction %q", name, def.Name)
		}
		if other, ok := p.byOpcode[def.Opcode]; ok {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%s: %q and %q share opcode %s", name, other.Name, def.Name, def.Opcode)
		}

		p.instructions = append(p.instructions, def)
		p.byName[def.Name] = def
		p.byOpcode[def.Opcode] = def
	}

	for i := range accounts {
		def := accounts[i]
		if len(def.Name) == 0 || def.Layout == nil {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%s: account %d is incomplete", name, i)
		}
		if _, ok := p.accountsByName[def.Name]; ok {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%s: duplicate account %q", name, def.Name)
		}
		if other, ok := p.accountsByDiscriminator[def.Discriminator]; ok {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%s: %q and %q share discriminator %s", name, other.Name, def.Name, def.Discriminator)
		}

		p.accounts = append(p.accounts, &def)
		p.accountsByName[def.Name] = &def
		p.accountsByDiscriminator[def.Discriminator] = &def
	}

	return p, nil
}

// MustNewProgram is NewProgram for static tables.
func MustNewProgram(name string, address ed25519.PublicKey, instructions []InstructionDef, accounts []AccountDef) *Program {
	p, err := NewProgram(name, address, instructions, accounts)
	if err != nil {
		panic(err)
	}
	return p
}

func copyInstruction(def InstructionDef) (*InstructionDef, error) {
	if len(def.Name) == 0 {
		return nil, errors.Wrap(ErrInvalidDefinition, "instruction has no name")
	}
	if def.Args == nil {
		def.Args = codec.Struct()
	}
	if def.Args.Kind() != codec.KindStruct {
		return nil, errors.Wrapf(ErrInvalidDefinition, "%q: args must be a struct, got %s", def.Name, def.Args)
	}

	seen := make(map[string]struct{}, len(def.Accounts))
	for i, slot := range def.Accounts {
		if len(slot.Name) == 0 {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%q: account slot %d has no name", def.Name, i)
		}
		if _, ok := seen[slot.Name]; ok {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%q: duplicate account slot %q", def.Name, slot.Name)
		}
		if len(slot.Default) != 0 && len(slot.Default) != ed25519.PublicKeySize {
			return nil, errors.Wrapf(ErrInvalidDefinition, "%q: default for %q is %d bytes", def.Name, slot.Name, len(slot.Default))
		}
		seen[slot.Name] = struct{}{}
	}

	def.Accounts = append([]AccountSlot(nil), def.Accounts...)
	return &def, nil
}

func (p *Program) Name() string {
	return p.name
}

// Address returns a copy of the program's address.
func (p *Program) Address() ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), p.address...)
}

// IsProgram reports whether address is this program.
func (p *Program) IsProgram(address ed25519.PublicKey) bool {
	return bytes.Equal(p.address, address)
}

// Instruction returns the named instruction's contract.
func (p *Program) Instruction(name string) (*InstructionDef, error) {
	def, ok := p.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInstruction, "%s.%s", p.name, name)
	}
	return def, nil
}

// InstructionByOpcode returns the instruction tagged with opcode.
func (p *Program) InstructionByOpcode(opcode Discriminator) (*InstructionDef, error) {
	def, ok := p.byOpcode[opcode]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInstruction, "%s: opcode %s", p.name, opcode)
	}
	return def, nil
}

// Instructions returns the instruction contracts in declaration order.
func (p *Program) Instructions() []*InstructionDef {
	return append([]*InstructionDef(nil), p.instructions...)
}

// Account returns the named account type.
func (p *Program) Account(name string) (*AccountDef, error) {
	def, ok := p.accountsByName[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAccount, "%s.%s", p.name, name)
	}
	return def, nil
}

// Accounts returns the account types in declaration order.
func (p *Program) Accounts() []*AccountDef {
	return append([]*AccountDef(nil), p.accounts...)
}
