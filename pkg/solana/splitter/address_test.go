package splitter_token

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

var (
	testRecentRoot = mustHexDecode("a26336ee808c6da0efa8f9977987aca89b61557c2de7090f0e092a500dbdc9b4")
	testTranscript = mustHexDecode("7703412617e79c889e0fade0ddc3ac27ce823d7c82ec4062284c9c82bd36346f")
	testMerkleRoot = mustHexDecode("e8eb6f7266f0de778923e5cdadf30c3d8a4c11a518c40fc96c65acdc4fd3bb2b")

	testDestination = solana.MustPublicKeyFromBase58("A1WsiTaL6fPei2xcqDPiVnRDvRwpCjne3votXZmrQe86")
	testCommitment  = solana.MustPublicKeyFromBase58("4vF8wWhuUSPTmUWPRvNcB5aPNzDvjCYBhyizpG6VFNi6")
)

func mustHexDecode(value string) Hash {
	decoded, err := hex.DecodeString(value)
	if err != nil {
		panic(err)
	}
	return decoded
}

// Vectors from a mainnet pool, one commitment made against it and the proof
// for that commitment.
func TestDeriveAddresses(t *testing.T) {
	for _, tc := range []struct {
		name     string
		derive   func() (string, error)
		expected string
	}{
		{
			name:     "pool",
			derive:   addressOf(DerivePoolAddress(testMint, testAuthority, "codedev-treasury-3")),
			expected: "3HR2k4etyHtBgHCAisRQ5mAU1x3GxWSgmm1bHsNzvZKS",
		},
		{
			name:     "pool vault",
			derive:   addressOf(DerivePoolVaultAddress(testPool)),
			expected: "BF6vGtAGf1WWbgyKQeHpyiieRKM6X3jZm8QJYib7e3XV",
		},
		{
			name: "commitment",
			derive: addressOf(DeriveCommitmentAddress(&Commitment{
				Pool:        testPool,
				RecentRoot:  testRecentRoot,
				Transcript:  testTranscript,
				Destination: testDestination,
				Amount:      100000,
			})),
			expected: "4vF8wWhuUSPTmUWPRvNcB5aPNzDvjCYBhyizpG6VFNi6",
		},
		{
			name:     "commitment vault",
			derive:   addressOf(DeriveCommitmentVaultAddress(testPool, testCommitment)),
			expected: "7BXkxmuwH4GGm48gPWMWqHnLYX7NwrtGPUtfHKnhgMmZ",
		},
		{
			name:     "proof",
			derive:   addressOf(DeriveProofAddress(testPool, testMerkleRoot, testCommitment)),
			expected: "9VNbqqrDVAxCPmXTq1BDWw7b3gjcXcwn9j2hAhsHWdNB",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := tc.derive()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestDeriveCommitmentAddress_InvalidSeeds(t *testing.T) {
	_, _, err := DeriveCommitmentAddress(&Commitment{
		Pool:        testPool,
		RecentRoot:  testRecentRoot[:31],
		Transcript:  testTranscript,
		Destination: testDestination,
	})
	assert.True(t, errors.Is(err, codec.ErrArityMismatch), err)
	assert.Contains(t, err.Error(), "recent_root seed")

	_, _, err = DeriveProofAddress(nil, testMerkleRoot, testCommitment)
	assert.Error(t, err)
}

func addressOf(address []byte, _ uint8, err error) func() (string, error) {
	return func() (string, error) {
		if err != nil {
			return "", err
		}
		return solana.Base58(address), nil
	}
}
