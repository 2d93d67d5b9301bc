// Package inspect decodes raw instruction and account data against a program
// registry and renders the result for humans.
package inspect

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
	"github.com/code-payments/code-instruction-codec/pkg/solana/idl"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
	splitter_token "github.com/code-payments/code-instruction-codec/pkg/solana/splitter"
	timelock_token "github.com/code-payments/code-instruction-codec/pkg/solana/timelock"
)

const (
	EncodingBase64 = "base64"
	EncodingBase58 = "base58"
	EncodingHex    = "hex"
)

var (
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrUnknownProgram  = errors.New("unknown built-in program")
)

var builtins = map[string]*program.Program{
	timelock_token.ProgramName: timelock_token.Program,
	splitter_token.ProgramName: splitter_token.Program,
}

// BuiltinNames returns the names of the programs compiled into this package.
func BuiltinNames() []string {
	return []string{splitter_token.ProgramName, timelock_token.ProgramName}
}

// NewRegistry registers the named built-in programs followed by every IDL
// document in idlPaths.
func NewRegistry(builtinNames, idlPaths []string) (*program.Registry, error) {
	log := logrus.StandardLogger().WithFields(logrus.Fields{
		"type":   "inspect",
		"method": "NewRegistry",
	})

	registry := program.NewRegistry()
	for _, name := range builtinNames {
		p, ok := builtins[strings.TrimSpace(name)]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownProgram, "%q", name)
		}
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	for _, path := range idlPaths {
		p, err := idl.Load(path)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(p); err != nil {
			return nil, errors.WithMessage(err, path)
		}
		log.WithField("path", path).Debug("loaded idl")
	}

	return registry, nil
}

// DecodeInput parses data in the given encoding. Surrounding whitespace is
// ignored.
func DecodeInput(data, encoding string) ([]byte, error) {
	data = strings.TrimSpace(data)

	var decoded []byte
	var err error
	switch strings.ToLower(encoding) {
	case EncodingBase64:
		decoded, err = base64.StdEncoding.DecodeString(data)
	case EncodingBase58:
		decoded, err = base58.Decode(data)
	case EncodingHex:
		decoded, err = hex.DecodeString(strings.TrimPrefix(data, "0x"))
	default:
		return nil, errors.Wrapf(ErrUnknownEncoding, "%q", encoding)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s input", encoding)
	}
	return decoded, nil
}

// ParseAccounts parses a comma separated list of base58 addresses. Each
// address may carry a ":s" and/or ":w" suffix marking it signer and writable.
func ParseAccounts(list string) ([]solana.AccountMeta, error) {
	var metas []solana.AccountMeta
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}

		parts := strings.Split(item, ":")
		address, err := solana.PublicKeyFromBase58(parts[0])
		if err != nil {
			return nil, err
		}

		meta := solana.AccountMeta{PublicKey: address}
		for _, flag := range parts[1:] {
			switch flag {
			case "s":
				meta.IsSigner = true
			case "w":
				meta.IsWritable = true
			default:
				return nil, errors.Errorf("unknown account flag %q on %s", flag, parts[0])
			}
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// Instruction renders a decoded instruction, naming its accounts after the
// slots of def.
func Instruction(d *program.DecodedInstruction, def *program.InstructionDef) map[string]any {
	accounts := make([]any, 0, len(d.Accounts))
	for i, meta := range d.Accounts {
		var name string
		if i < len(def.Accounts) {
			name = def.Accounts[i].Name
		}
		accounts = append(accounts, account(meta, name))
	}

	extra := make([]any, 0, len(d.Extra))
	for _, meta := range d.Extra {
		extra = append(extra, account(meta, ""))
	}

	return map[string]any{
		"program":     d.Program,
		"instruction": d.Name,
		"args":        Value(d.Args),
		"accounts":    accounts,
		"extra":       extra,
		"trailing":    d.Trailing,
	}
}

// Account renders decoded account state.
func Account(d *program.DecodedAccount) map[string]any {
	return map[string]any{
		"program":  d.Program,
		"account":  d.Name,
		"fields":   Value(d.Fields),
		"trailing": d.Trailing,
	}
}

func account(meta solana.AccountMeta, name string) map[string]any {
	rendered := map[string]any{
		"address":  solana.Base58(meta.PublicKey),
		"signer":   meta.IsSigner,
		"writable": meta.IsWritable,
	}
	if len(name) > 0 {
		rendered["name"] = name
	}
	return rendered
}

// Value converts a decoded codec value into plain JSON friendly values.
// Addresses become base58 strings, 128 bit integers become decimal strings
// and byte arrays become hex strings.
func Value(v any) any {
	switch v := v.(type) {
	case codec.Fields:
		rendered := make(map[string]any, len(v))
		for name, field := range v {
			rendered[name] = Value(field)
		}
		return rendered
	case codec.Enum:
		if v.Fields == nil {
			return v.Variant
		}
		return map[string]any{v.Variant: Value(v.Fields)}
	case ed25519.PublicKey:
		return solana.Base58(v)
	case *big.Int:
		return v.String()
	case []any:
		if b, ok := asBytes(v); ok {
			return hex.EncodeToString(b)
		}
		rendered := make([]any, len(v))
		for i, item := range v {
			rendered[i] = Value(item)
		}
		return rendered
	}
	return v
}

func asBytes(items []any) ([]byte, bool) {
	if len(items) == 0 {
		return nil, false
	}
	b := make([]byte, len(items))
	for i, item := range items {
		u, ok := item.(uint8)
		if !ok {
			return nil, false
		}
		b[i] = u
	}
	return b, true
}
