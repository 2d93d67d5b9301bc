package program

import (
	"crypto/ed25519"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

// Registry indexes programs by name and address. Programs are registered at
// startup; afterwards the registry is only read and is safe for concurrent
// use without locking.
type Registry struct {
	log *logrus.Entry

	byName    map[string]*Program
	byAddress map[string]*Program
	names     []string
}

func NewRegistry() *Registry {
	return &Registry{
		log:       logrus.StandardLogger().WithField("type", "solana/program/registry"),
		byName:    make(map[string]*Program),
		byAddress: make(map[string]*Program),
	}
}

// Register adds programs to the registry. Either all of them are added or,
// on error, none are. It must not be called once the registry is shared.
func (r *Registry) Register(programs ...*Program) error {
	pendingNames := make(map[string]*Program, len(programs))
	pendingAddresses := make(map[string]*Program, len(programs))
	for _, p := range programs {
		if _, ok := r.byName[p.name]; ok {
			return errors.Wrapf(ErrDuplicateProgram, "name %q", p.name)
		}
		if _, ok := pendingNames[p.name]; ok {
			return errors.Wrapf(ErrDuplicateProgram, "name %q", p.name)
		}

		address := string(p.address)
		other, ok := r.byAddress[address]
		if !ok {
			other, ok = pendingAddresses[address]
		}
		if ok {
			return errors.Wrapf(ErrDuplicateProgram, "%s shares address %s with %s", p.name, solana.Base58(p.address), other.name)
		}

		pendingNames[p.name] = p
		pendingAddresses[address] = p
	}

	for _, p := range programs {
		r.byName[p.name] = p
		r.byAddress[string(p.address)] = p
		r.names = append(r.names, p.name)

		r.log.WithFields(logrus.Fields{
			"method":       "Register",
			"program":      p.name,
			"address":      solana.Base58(p.address),
			"instructions": len(p.instructions),
			"accounts":     len(p.accounts),
		}).Debug("registered program")
	}
	sort.Strings(r.names)
	return nil
}

// MustRegister is Register for static tables.
func (r *Registry) MustRegister(programs ...*Program) *Registry {
	if err := r.Register(programs...); err != nil {
		panic(err)
	}
	return r
}

// Names returns the registered program names in sorted order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

func (r *Registry) Program(name string) (*Program, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInstruction, "program %q", name)
	}
	return p, nil
}

func (r *Registry) ProgramByAddress(address ed25519.PublicKey) (*Program, error) {
	p, ok := r.byAddress[string(address)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownInstruction, "program %s", solana.Base58(address))
	}
	return p, nil
}

// Lookup returns the contract of instruction within the named program.
func (r *Registry) Lookup(program, instruction string) (*InstructionDef, error) {
	p, err := r.Program(program)
	if err != nil {
		return nil, err
	}
	return p.Instruction(instruction)
}

// Build assembles an instruction of a registered program. See Program.Build.
func (r *Registry) Build(program, instruction string, args codec.Fields, accounts Accounts, extra ...solana.AccountMeta) (solana.Instruction, error) {
	p, err := r.Program(program)
	if err != nil {
		return solana.Instruction{}, err
	}
	return p.Build(instruction, args, accounts, extra...)
}

// DecodeInstruction decodes an instruction addressed to any registered
// program.
func (r *Registry) DecodeInstruction(ix solana.Instruction) (*DecodedInstruction, error) {
	p, err := r.ProgramByAddress(ix.Program)
	if err != nil {
		return nil, err
	}
	return p.DecodeInstruction(ix)
}

// DecodeAccount decodes the state of an account owned by a registered
// program.
func (r *Registry) DecodeAccount(owner ed25519.PublicKey, data []byte) (*DecodedAccount, error) {
	p, err := r.ProgramByAddress(owner)
	if err != nil {
		return nil, err
	}
	return p.DecodeAccount(data)
}
