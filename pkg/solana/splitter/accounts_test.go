package splitter_token

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHash(seed byte) Hash {
	h := make(Hash, HashSize)
	for i := range h {
		h[i] = seed + byte(i)
	}
	return h
}

func TestPoolAccount_MarshalUnmarshal(t *testing.T) {
	levels := uint8(3)

	expected := &PoolAccount{
		DataVersion:  DataVersion1,
		Authority:    testAuthority,
		Mint:         testMint,
		Vault:        testPoolVault,
		VaultBump:    254,
		Name:         "codedev-treasury-3",
		HistoryList:  []Hash{testHash(1), testHash(2)},
		CurrentIndex: 1,
		MerkleTree: &MerkleTree{
			Levels:         levels,
			NextIndex:      7,
			Root:           testHash(9),
			FilledSubtrees: []Hash{testHash(10), testHash(11), testHash(12)},
			ZeroValues:     []Hash{testHash(20), testHash(21), testHash(22)},
		},
	}

	data, err := expected.Marshal()
	require.NoError(t, err)
	assert.Equal(t, []byte{241, 154, 109, 4, 17, 177, 109, 188}, data[:8])

	// Allocated pool accounts carry zero padding past the tree.
	padded := append(data, make([]byte, 64)...)

	var actual PoolAccount
	require.NoError(t, actual.Unmarshal(padded))
	assert.Equal(t, expected, &actual)

	decoded, err := Program.DecodeAccount(padded)
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Trailing)

	assert.Contains(t, actual.String(), "name='codedev-treasury-3'")
}

func TestPoolAccount_MarshalInvalid(t *testing.T) {
	account := &PoolAccount{Name: "a name that is longer than thirty two bytes"}
	_, err := account.Marshal()
	assert.True(t, errors.Is(err, ErrInvalidAccountData))

	account = &PoolAccount{Name: "pool"}
	_, err = account.Marshal()
	assert.True(t, errors.Is(err, ErrInvalidAccountData))
}

func TestProofAccount_MarshalUnmarshal(t *testing.T) {
	expected := &ProofAccount{
		DataVersion: DataVersion1,
		Pool:        testPool,
		PoolBump:    255,
		MerkleRoot:  testHash(3),
		Commitment:  testAuthority,
		Verified:    true,
		Size:        2,
		Data:        []Hash{testHash(4), testHash(5)},
	}

	data, err := expected.Marshal()
	require.NoError(t, err)

	var actual ProofAccount
	require.NoError(t, actual.Unmarshal(data))
	assert.Equal(t, expected, &actual)

	// A proof is not a pool.
	var pool PoolAccount
	assert.True(t, errors.Is(pool.Unmarshal(data), ErrInvalidAccountData))

	assert.True(t, errors.Is(actual.Unmarshal(data[:40]), ErrInvalidAccountData))
}
