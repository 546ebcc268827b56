package crypto

import (
	"github.com/kkrt-labs/katana-genesis/core/felt"
	"golang.org/x/crypto/sha3"
)

// StarknetKeccak implements [Starknet keccak]: the low 250 bits of the
// keccak-256 digest, interpreted as a field element.
//
// [Starknet keccak]: https://docs.starknet.io/architecture-and-concepts/cryptography/#starknet_keccak
func StarknetKeccak(b []byte) (*felt.Felt, error) {
	h := sha3.NewLegacyKeccak256()
	if _, err := h.Write(b); err != nil {
		return nil, err
	}
	d := h.Sum(nil)
	// Remove the first 6 bits from the first byte
	d[0] &= 3
	return new(felt.Felt).SetBytes(d), nil
}
