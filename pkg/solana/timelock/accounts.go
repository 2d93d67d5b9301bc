package timelock_token

import (
	"crypto/ed25519"
	"strconv"
	"time"

	"github.com/near/borsh-go"
	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
	"github.com/code-payments/code-instruction-codec/pkg/solana/program"
)

// DefaultNumDaysLocked is part of the state address seeds. Changing it
// changes every derived timelock address.
const DefaultNumDaysLocked uint8 = 21

type TimelockDataVersion uint8

const (
	UnknownDataVersion TimelockDataVersion = iota
	DataVersionLegacy
	DataVersionClosed
	DataVersion1
)

type TimelockState uint8

const (
	StateUnknown TimelockState = iota
	StateUnlocked
	StateWaitingForTimeout
	StateLocked
	StateClosed
)

func (s TimelockState) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateUnlocked:
		return "unlocked"
	case StateWaitingForTimeout:
		return "waiting_for_timeout"
	case StateLocked:
		return "locked"
	case StateClosed:
		return "closed"
	}

	return "unknown"
}

var (
	DataVersionLayout = codec.SimpleEnum("Unknown", "Legacy", "Closed", "Version1")
	StateLayout       = codec.SimpleEnum("Unknown", "Unlocked", "WaitingForTimeout", "Locked", "Closed")

	TimelockAccountLayout = codec.Struct(
		codec.NewField("data_version", DataVersionLayout),
		codec.NewField("time_authority", codec.Address),
		codec.NewField("close_authority", codec.Address),
		codec.NewField("mint", codec.Address),
		codec.NewField("vault", codec.Address),
		codec.NewField("vault_bump", codec.U8),
		codec.NewField("vault_state", StateLayout),
		codec.NewField("vault_owner", codec.Address),
		codec.NewField("unlock_at", codec.Option(codec.U64)),
		codec.NewField("num_days_locked", codec.U8),
	)
)

// TimelockAccountSize is the allocated size of a timelock account, which
// always reserves room for unlock_at.
const TimelockAccountSize = (solana.OpcodeSize + // discriminator
	1 + // data_version
	32 + // time_authority
	32 + // close_authority
	32 + // mint
	32 + // vault
	1 + // vault_bump
	1 + // vault_state
	32 + // vault_owner
	9 + // unlock_at
	1) // num_days_locked

var ErrInvalidAccountData = errors.New("unexpected account data")

type TimelockAccount struct {
	DataVersion    TimelockDataVersion
	TimeAuthority  ed25519.PublicKey
	CloseAuthority ed25519.PublicKey
	Mint           ed25519.PublicKey
	Vault          ed25519.PublicKey
	VaultBump      uint8
	VaultState     TimelockState
	VaultOwner     ed25519.PublicKey
	UnlockAt       *uint64 // optional
	NumDaysLocked  uint8
}

// rawTimelockAccount mirrors the on-chain layout for borsh.
type rawTimelockAccount struct {
	DataVersion    borsh.Enum
	TimeAuthority  [32]byte
	CloseAuthority [32]byte
	Mint           [32]byte
	Vault          [32]byte
	VaultBump      uint8
	VaultState     borsh.Enum
	VaultOwner     [32]byte
	UnlockAt       *uint64
	NumDaysLocked  uint8
}

// Marshal returns the account data, zero padded to TimelockAccountSize.
func (obj *TimelockAccount) Marshal() ([]byte, error) {
	body, err := codec.Encode(obj.Fields(), TimelockAccountLayout)
	if err != nil {
		return nil, err
	}

	discriminator := program.AccountDiscriminator(AccountTimeLock)

	data := make([]byte, TimelockAccountSize)
	copy(data, discriminator[:])
	copy(data[solana.OpcodeSize:], body)
	return data, nil
}

// Unmarshal parses V1 timelock account data.
func (obj *TimelockAccount) Unmarshal(data []byte) error {
	if len(data) != TimelockAccountSize {
		return errors.Wrapf(ErrInvalidAccountData, "expected %d bytes, got %d", TimelockAccountSize, len(data))
	}

	discriminator := program.AccountDiscriminator(AccountTimeLock)
	if !discriminator.Equal(data[:solana.OpcodeSize]) {
		return errors.Wrap(ErrInvalidAccountData, "invalid discriminator")
	}

	// Validate against the layout first; borsh accepts any enum byte.
	_, consumed, err := codec.Decode(data[solana.OpcodeSize:], TimelockAccountLayout)
	if err != nil {
		return errors.Wrap(ErrInvalidAccountData, err.Error())
	}

	var raw rawTimelockAccount
	if err := borsh.Deserialize(&raw, data[solana.OpcodeSize:solana.OpcodeSize+consumed]); err != nil {
		return errors.Wrap(ErrInvalidAccountData, err.Error())
	}

	if TimelockDataVersion(raw.DataVersion) != DataVersion1 {
		return errors.Wrapf(ErrInvalidAccountData, "unsupported data version %d", raw.DataVersion)
	}

	obj.DataVersion = TimelockDataVersion(raw.DataVersion)
	obj.TimeAuthority = keyFromArray(raw.TimeAuthority)
	obj.CloseAuthority = keyFromArray(raw.CloseAuthority)
	obj.Mint = keyFromArray(raw.Mint)
	obj.Vault = keyFromArray(raw.Vault)
	obj.VaultBump = raw.VaultBump
	obj.VaultState = TimelockState(raw.VaultState)
	obj.VaultOwner = keyFromArray(raw.VaultOwner)
	obj.UnlockAt = raw.UnlockAt
	obj.NumDaysLocked = raw.NumDaysLocked
	return nil
}

// Fields renders the account as a codec value of TimelockAccountLayout.
func (obj *TimelockAccount) Fields() codec.Fields {
	var unlockAt any
	if obj.UnlockAt != nil {
		unlockAt = *obj.UnlockAt
	}

	return codec.Fields{
		"data_version":    codec.NewEnum(variantName(DataVersionLayout, uint8(obj.DataVersion))),
		"time_authority":  obj.TimeAuthority,
		"close_authority": obj.CloseAuthority,
		"mint":            obj.Mint,
		"vault":           obj.Vault,
		"vault_bump":      obj.VaultBump,
		"vault_state":     codec.NewEnum(variantName(StateLayout, uint8(obj.VaultState))),
		"vault_owner":     obj.VaultOwner,
		"unlock_at":       unlockAt,
		"num_days_locked": obj.NumDaysLocked,
	}
}

func (obj *TimelockAccount) String() string {
	var unlockAt string
	if obj.UnlockAt != nil {
		unlockAt = time.Unix(int64(*obj.UnlockAt), 0).UTC().String()
	}

	return "TimeLockAccount{" +
		"data_version='" + strconv.Itoa(int(obj.DataVersion)) + "'" +
		", time_authority='" + solana.Base58(obj.TimeAuthority) + "'" +
		", close_authority='" + solana.Base58(obj.CloseAuthority) + "'" +
		", mint='" + solana.Base58(obj.Mint) + "'" +
		", vault='" + solana.Base58(obj.Vault) + "'" +
		", vault_bump='" + strconv.Itoa(int(obj.VaultBump)) + "'" +
		", vault_state='" + obj.VaultState.String() + "'" +
		", vault_owner='" + solana.Base58(obj.VaultOwner) + "'" +
		", unlock_at='" + unlockAt + "'" +
		", num_days_locked='" + strconv.Itoa(int(obj.NumDaysLocked)) + "'" +
		"}"
}

func keyFromArray(b [32]byte) ed25519.PublicKey {
	return append(ed25519.PublicKey(nil), b[:]...)
}

func variantName(layout *codec.Type, index uint8) string {
	variants := layout.Variants()
	if int(index) < len(variants) {
		return variants[index].Name
	}
	return strconv.Itoa(int(index))
}
