package program

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
)

// Discriminator is the 8 byte tag that prefixes instruction data (the
// opcode) and account data (the account type).
type Discriminator [solana.OpcodeSize]byte

const (
	// Anchor namespaces for sighash derived discriminators.
	NamespaceInstruction = "global"
	NamespaceAccount     = "account"
)

// AnchorDiscriminator derives the discriminator Anchor assigns to name within
// namespace: the first 8 bytes of sha256("<namespace>:<name>").
func AnchorDiscriminator(namespace, name string) Discriminator {
	sum := sha256.Sum256([]byte(namespace + ":" + name))

	var d Discriminator
	copy(d[:], sum[:])
	return d
}

// InstructionDiscriminator is AnchorDiscriminator for a snake_case
// instruction name.
func InstructionDiscriminator(name string) Discriminator {
	return AnchorDiscriminator(NamespaceInstruction, name)
}

// AccountDiscriminator is AnchorDiscriminator for a PascalCase account type
// name.
func AccountDiscriminator(name string) Discriminator {
	return AnchorDiscriminator(NamespaceAccount, name)
}

// DiscriminatorFromBytes reads a discriminator from the start of b.
func DiscriminatorFromBytes(b []byte) (Discriminator, bool) {
	var d Discriminator
	if len(b) < len(d) {
		return d, false
	}
	copy(d[:], b)
	return d, true
}

func (d Discriminator) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

func (d Discriminator) Equal(b []byte) bool {
	return bytes.Equal(d[:], b)
}

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}
