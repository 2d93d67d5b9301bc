package splitter_token

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-instruction-codec/pkg/solana"
	"github.com/code-payments/code-instruction-codec/pkg/solana/codec"
)

// derivation describes one kind of splitter PDA: a prefix followed by one
// seed per field of seeds, each encoded on its own.
type derivation struct {
	prefix []byte
	seeds  *codec.Type
}

var (
	poolDerivation = derivation{
		prefix: []byte("pool_state"),
		seeds: codec.Struct(
			codec.NewField("mint", codec.Address),
			codec.NewField("authority", codec.Address),
		),
	}
	poolVaultDerivation = derivation{
		prefix: []byte("pool_vault"),
		seeds:  codec.Struct(codec.NewField("pool", codec.Address)),
	}
	commitmentDerivation = derivation{
		prefix: []byte("commitment_state"),
		seeds: codec.Struct(
			codec.NewField("pool", codec.Address),
			codec.NewField("recent_root", codec.Hash),
			codec.NewField("transcript", codec.Hash),
			codec.NewField("destination", codec.Address),
			codec.NewField("amount", codec.U64),
		),
	}
	commitmentVaultDerivation = derivation{
		prefix: []byte("commitment_vault"),
		seeds: codec.Struct(
			codec.NewField("pool", codec.Address),
			codec.NewField("commitment", codec.Address),
		),
	}
	proofDerivation = derivation{
		prefix: []byte("proof"),
		seeds: codec.Struct(
			codec.NewField("pool", codec.Address),
			codec.NewField("merkle_root", codec.Hash),
			codec.NewField("commitment", codec.Address),
		),
	}
)

func (d derivation) find(values codec.Fields, raw ...[]byte) (ed25519.PublicKey, uint8, error) {
	seeds := make([][]byte, 0, 1+len(d.seeds.Fields())+len(raw))
	seeds = append(seeds, d.prefix)
	for _, f := range d.seeds.Fields() {
		b, err := codec.Encode(values[f.Name], f.Type)
		if err != nil {
			return nil, 0, errors.WithMessagef(err, "%s seed", f.Name)
		}
		seeds = append(seeds, b)
	}
	seeds = append(seeds, raw...)
	return solana.FindProgramAddressAndBump(PROGRAM_ID, seeds...)
}

// DerivePoolAddress derives the state of the pool named name. The name is
// seeded as raw bytes, without a length prefix.
func DerivePoolAddress(mint, authority ed25519.PublicKey, name string) (ed25519.PublicKey, uint8, error) {
	return poolDerivation.find(codec.Fields{"mint": mint, "authority": authority}, []byte(name))
}

func DerivePoolVaultAddress(pool ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return poolVaultDerivation.find(codec.Fields{"pool": pool})
}

// Commitment identifies one transfer_with_commitment: the pool it pays out
// of, the merkle root it was made against and what it pays to whom.
type Commitment struct {
	Pool        ed25519.PublicKey
	RecentRoot  Hash
	Transcript  Hash
	Destination ed25519.PublicKey
	Amount      uint64
}

// DeriveCommitmentAddress derives the commitment state account that
// transfer_with_commitment records c under.
func DeriveCommitmentAddress(c *Commitment) (ed25519.PublicKey, uint8, error) {
	return commitmentDerivation.find(codec.Fields{
		"pool":        c.Pool,
		"recent_root": []byte(c.RecentRoot),
		"transcript":  []byte(c.Transcript),
		"destination": c.Destination,
		"amount":      c.Amount,
	})
}

func DeriveCommitmentVaultAddress(pool, commitment ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return commitmentVaultDerivation.find(codec.Fields{"pool": pool, "commitment": commitment})
}

func DeriveProofAddress(pool ed25519.PublicKey, merkleRoot Hash, commitment ed25519.PublicKey) (ed25519.PublicKey, uint8, error) {
	return proofDerivation.find(codec.Fields{
		"pool":        pool,
		"merkle_root": []byte(merkleRoot),
		"commitment":  commitment,
	})
}
