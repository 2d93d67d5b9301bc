package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

// OpcodeSize is the size of the tag that prefixes every instruction's data
// and selects the handler within the target program.
const OpcodeSize = 8

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta represents an account referenced by an instruction.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

// Equal reports whether both metas reference the same account with the same
// flags.
func (m AccountMeta) Equal(other AccountMeta) bool {
	return bytes.Equal(m.PublicKey, other.PublicKey) &&
		m.IsSigner == other.IsSigner &&
		m.IsWritable == other.IsWritable
}

func (m AccountMeta) String() string {
	flags := "r"
	if m.IsWritable {
		flags = "w"
	}
	if m.IsSigner {
		flags += "s"
	}
	return Base58(m.PublicKey) + "(" + flags + ")"
}

// Instruction is a fully assembled instruction: the target program, the
// opcode-prefixed argument data and the ordered account list. Values are
// handed off by copy and are never modified after construction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// Opcode returns the leading opcode tag of the instruction data, or nil if
// the data is shorter than a tag.
func (i Instruction) Opcode() []byte {
	if len(i.Data) < OpcodeSize {
		return nil
	}
	return i.Data[:OpcodeSize]
}

// Args returns the encoded arguments that follow the opcode tag.
func (i Instruction) Args() []byte {
	if len(i.Data) < OpcodeSize {
		return nil
	}
	return i.Data[OpcodeSize:]
}

// Clone returns a deep copy that shares no memory with i.
func (i Instruction) Clone() Instruction {
	accounts := make([]AccountMeta, len(i.Accounts))
	for j, a := range i.Accounts {
		accounts[j] = AccountMeta{
			PublicKey:  cloneKey(a.PublicKey),
			IsSigner:   a.IsSigner,
			IsWritable: a.IsWritable,
		}
	}

	return Instruction{
		Program:  cloneKey(i.Program),
		Accounts: accounts,
		Data:     append([]byte(nil), i.Data...),
	}
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	if key == nil {
		return nil
	}
	return append(ed25519.PublicKey(nil), key...)
}
