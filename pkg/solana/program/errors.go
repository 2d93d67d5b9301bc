package program

import (
	"github.com/pkg/errors"
)

var (
	// ErrUnknownInstruction means the program, instruction or opcode is not
	// registered. It indicates a caller or configuration bug.
	ErrUnknownInstruction = errors.New("unknown instruction")

	// ErrUnknownAccount means account data does not start with a registered
	// account discriminator.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrMissingRequiredAccount means a fixed account slot without a
	// default was left empty by the caller.
	ErrMissingRequiredAccount = errors.New("missing required account")

	// ErrUnexpectedAccount means the caller supplied an account for a slot
	// the instruction does not declare.
	ErrUnexpectedAccount = errors.New("unexpected account")

	ErrInvalidAccountAddress = errors.New("invalid account address")
	ErrInvalidDefinition     = errors.New("invalid program definition")
	ErrDuplicateProgram      = errors.New("program already registered")
)
