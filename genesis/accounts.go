package genesis

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kkrt-labs/katana-genesis/core/felt"
)

// EVMAddress derives the EVM address controlled by the given secp256k1
// private key, as a felt.
func EVMAddress(privateKey common.Hash) (*felt.Felt, error) {
	key, err := ethcrypto.ToECDSA(privateKey.Bytes())
	if err != nil {
		return nil, fmt.Errorf("derive evm address: %w", err)
	}
	address := ethcrypto.PubkeyToAddress(key.PublicKey)
	return new(felt.Felt).SetBytes(address.Bytes()), nil
}

// DevPrivateKeys returns the well-known development keys pre-funded on local
// EVM test nodes.
func DevPrivateKeys() []common.Hash {
	return []common.Hash{
		common.HexToHash("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"),
		common.HexToHash("0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"),
	}
}
