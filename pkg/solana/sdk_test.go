package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSDKInstruction_RoundTrip(t *testing.T) {
	payer, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	ix := NewInstruction(
		SPL_TOKEN_PROGRAM_ID,
		[]byte{0xaf, 0xaf, 0x6d, 0x1f, 0x0d, 0x98, 0x9b, 0xed, 21},
		NewAccountMeta(payer, true),
		NewReadonlyAccountMeta(SYSTEM_PROGRAM_ID, false),
	)

	converted, err := ToSDKInstruction(ix)
	require.NoError(t, err)

	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", converted.ProgramID.ToBase58())
	require.Len(t, converted.Accounts, 2)
	assert.Equal(t, []byte(payer), converted.Accounts[0].PubKey.Bytes())
	assert.True(t, converted.Accounts[0].IsSigner)
	assert.True(t, converted.Accounts[0].IsWritable)
	assert.False(t, converted.Accounts[1].IsSigner)
	assert.False(t, converted.Accounts[1].IsWritable)
	assert.Equal(t, ix.Data, converted.Data)

	assert.Equal(t, ix, FromSDKInstruction(converted))
}

func TestSDKInstruction_InvalidKey(t *testing.T) {
	_, err := ToSDKInstruction(NewInstruction(
		SYSTEM_PROGRAM_ID,
		nil,
		NewAccountMeta(ed25519.PublicKey{1, 2, 3}, false),
	))
	assert.True(t, errors.Is(err, ErrInvalidPublicKey))
}
