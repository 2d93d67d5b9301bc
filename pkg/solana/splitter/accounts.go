package splitter_token

import (
	"crypto/ed25519"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

const (
	// HashSize is the size, in bytes, of SHA256 hashes as used in this package.
	HashSize = 32

	MaxNameLength = 32
	MaxHistory    = 32
)

var ErrInvalidAccountData = errors.New("unexpected account data")

type Hash []byte

func (h Hash) ToString() string {
	return fmt.Sprintf("%x", []byte(h))
}

type DataVersion uint8

const (
	UnknownDataVersion DataVersion = iota
	DataVersion1
)

var (
	DataVersionLayout = codec.SimpleEnum("Unknown", "Version1")

	MerkleTreeLayout = codec.Struct(
		codec.NewField("levels", codec.U8),
		codec.NewField("next_index", codec.U64),
		codec.NewField("root", codec.Hash),
		codec.NewField("filled_subtrees", codec.VariableArray(codec.Hash)),
		codec.NewField("zero_values", codec.VariableArray(codec.Hash)),
	)

	PoolAccountLayout = codec.Struct(
		codec.NewField("data_version", DataVersionLayout),
		codec.NewField("authority", codec.Address),
		codec.NewField("mint", codec.Address),
		codec.NewField("vault", codec.Address),
		codec.NewField("vault_bump", codec.U8),
		codec.NewField("name", codec.String),
		codec.NewField("history_list", codec.VariableArray(codec.Hash)),
		codec.NewField("current_index", codec.U8),
		codec.NewField("merkle_tree", MerkleTreeLayout),
	)

	ProofAccountLayout = codec.Struct(
		codec.NewField("data_version", DataVersionLayout),
		codec.NewField("pool", codec.Address),
		codec.NewField("pool_bump", codec.U8),
		codec.NewField("merkle_root", codec.Hash),
		codec.NewField("commitment", codec.Address),
		codec.NewField("verified", codec.Bool),
		codec.NewField("size", codec.U8),
		codec.NewField("data", codec.VariableArray(codec.Hash)),
	)
)

// On-chain MerkleTree, which does not include leaves.
type MerkleTree struct {
	Levels         uint8
	NextIndex      uint64
	Root           Hash
	FilledSubtrees []Hash
	ZeroValues     []Hash
}

type PoolAccount struct {
	DataVersion DataVersion

	Authority ed25519.PublicKey
	Mint      ed25519.PublicKey
	Vault     ed25519.PublicKey
	VaultBump uint8
	Name      string

	HistoryList  []Hash
	CurrentIndex uint8

	MerkleTree *MerkleTree
}

type ProofAccount struct {
	DataVersion DataVersion
	Pool        ed25519.PublicKey
	PoolBump    uint8

	MerkleRoot Hash
	Commitment ed25519.PublicKey
	Verified   bool

	Size uint8
	Data []Hash
}

// Marshal returns the discriminator prefixed account data. Allocated
// accounts on chain are larger and zero padded.
func (obj *PoolAccount) Marshal() ([]byte, error) {
	if len(obj.Name) > MaxNameLength {
		return nil, errors.Wrapf(ErrInvalidAccountData, "name exceeds %d bytes", MaxNameLength)
	}
	if obj.MerkleTree == nil {
		return nil, errors.Wrap(ErrInvalidAccountData, "missing merkle tree")
	}

	return marshalAccount(AccountPool, codec.Fields{
		"data_version":  codec.NewEnum(dataVersionName(obj.DataVersion)),
		"authority":     obj.Authority,
		"mint":          obj.Mint,
		"vault":         obj.Vault,
		"vault_bump":    obj.VaultBump,
		"name":          obj.Name,
		"history_list":  obj.HistoryList,
		"current_index": obj.CurrentIndex,
		"merkle_tree": codec.Fields{
			"levels":          obj.MerkleTree.Levels,
			"next_index":      obj.MerkleTree.NextIndex,
			"root":            obj.MerkleTree.Root,
			"filled_subtrees": obj.MerkleTree.FilledSubtrees,
			"zero_values":     obj.MerkleTree.ZeroValues,
		},
	})
}

func (obj *PoolAccount) Unmarshal(data []byte) error {
	fields, err := unmarshalAccount(AccountPool, data)
	if err != nil {
		return err
	}

	tree := fields["merkle_tree"].(codec.Fields)

	obj.DataVersion = dataVersionFromValue(fields["data_version"])
	obj.Authority = fields["authority"].(ed25519.PublicKey)
	obj.Mint = fields["mint"].(ed25519.PublicKey)
	obj.Vault = fields["vault"].(ed25519.PublicKey)
	obj.VaultBump = fields["vault_bump"].(uint8)
	obj.Name = fields["name"].(string)
	obj.HistoryList = hashesFromValue(fields["history_list"])
	obj.CurrentIndex = fields["current_index"].(uint8)
	obj.MerkleTree = &MerkleTree{
		Levels:         tree["levels"].(uint8),
		NextIndex:      tree["next_index"].(uint64),
		Root:           hashFromValue(tree["root"]),
		FilledSubtrees: hashesFromValue(tree["filled_subtrees"]),
		ZeroValues:     hashesFromValue(tree["zero_values"]),
	}
	return nil
}

func (obj *PoolAccount) String() string {
	hashes := make([]string, len(obj.HistoryList))
	for i, h := range obj.HistoryList {
		hashes[i] = "'" + h.ToString() + "'"
	}

	var levels, root string
	if obj.MerkleTree != nil {
		levels = strconv.Itoa(int(obj.MerkleTree.Levels))
		root = obj.MerkleTree.Root.ToString()
	}

	return "Pool{" +
		"data_version='" + strconv.Itoa(int(obj.DataVersion)) + "'" +
		", authority='" + solana.Base58(obj.Authority) + "'" +
		", mint='" + solana.Base58(obj.Mint) + "'" +
		", vault='" + solana.Base58(obj.Vault) + "'" +
		", vault_bump='" + strconv.Itoa(int(obj.VaultBump)) + "'" +
		", name='" + obj.Name + "'" +
		", history_list=[" + strings.Join(hashes, ", ") + "]" +
		", current_index='" + strconv.Itoa(int(obj.CurrentIndex)) + "'" +
		", levels='" + levels + "'" +
		", root='" + root + "'" +
		"}"
}

func (obj *ProofAccount) Marshal() ([]byte, error) {
	return marshalAccount(AccountProof, codec.Fields{
		"data_version": codec.NewEnum(dataVersionName(obj.DataVersion)),
		"pool":         obj.Pool,
		"pool_bump":    obj.PoolBump,
		"merkle_root":  obj.MerkleRoot,
		"commitment":   obj.Commitment,
		"verified":     obj.Verified,
		"size":         obj.Size,
		"data":         obj.Data,
	})
}

func (obj *ProofAccount) Unmarshal(data []byte) error {
	fields, err := unmarshalAccount(AccountProof, data)
	if err != nil {
		return err
	}

	obj.DataVersion = dataVersionFromValue(fields["data_version"])
	obj.Pool = fields["pool"].(ed25519.PublicKey)
	obj.PoolBump = fields["pool_bump"].(uint8)
	obj.MerkleRoot = hashFromValue(fields["merkle_root"])
	obj.Commitment = fields["commitment"].(ed25519.PublicKey)
	obj.Verified = fields["verified"].(bool)
	obj.Size = fields["size"].(uint8)
	obj.Data = hashesFromValue(fields["data"])
	return nil
}

func marshalAccount(name string, fields codec.Fields) ([]byte, error) {
	def, err := Program.Account(name)
	if err != nil {
		return nil, err
	}

	body, err := codec.Encode(fields, def.Layout)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return append(def.Discriminator.Bytes(), body...), nil
}

func unmarshalAccount(name string, data []byte) (codec.Fields, error) {
	decoded, err := Program.DecodeAccount(data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAccountData, err.Error())
	}
	if decoded.Name != name {
		return nil, errors.Wrapf(ErrInvalidAccountData, "expected %s, got %s", name, decoded.Name)
	}
	return decoded.Fields, nil
}

func dataVersionName(v DataVersion) string {
	variants := DataVersionLayout.Variants()
	if int(v) < len(variants) {
		return variants[v].Name
	}
	return strconv.Itoa(int(v))
}

func dataVersionFromValue(v any) DataVersion {
	index, _ := DataVersionLayout.VariantIndex(v.(codec.Enum).Variant)
	return DataVersion(index)
}

func hashFromValue(v any) Hash {
	items := v.([]any)
	h := make(Hash, len(items))
	for i, item := range items {
		h[i] = item.(uint8)
	}
	return h
}

func hashesFromValue(v any) []Hash {
	items := v.([]any)
	hashes := make([]Hash, len(items))
	for i, item := range items {
		hashes[i] = hashFromValue(item)
	}
	return hashes
}
