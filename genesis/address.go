package genesis

import (
	"fmt"
	"math/big"

	"github.com/kkrt-labs/katana-genesis/core/crypto"
	"github.com/kkrt-labs/katana-genesis/core/felt"
)

var (
	contractAddressPrefix = new(felt.Felt).SetBytes([]byte("STARKNET_CONTRACT_ADDRESS"))

	// Contract addresses live below 2^251 - 256, not the full field.
	addrBound = new(big.Int).Sub(
		new(big.Int).Lsh(big.NewInt(1), 251), big.NewInt(256),
	)

	// DeploymentSalt is the fixed all-zero salt used for every deterministic
	// deployment in the genesis.
	DeploymentSalt = &felt.Zero

	// DefaultFeeTokenAddress is the pre-deployed fee token ("ETH") address on
	// the test network.
	DefaultFeeTokenAddress = mustAddress("0x49d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7")
)

func mustAddress(s string) *felt.Address {
	f, err := new(felt.Felt).SetString(s)
	if err != nil {
		panic(fmt.Sprintf("parse address constant %q: %v", s, err))
	}
	return (*felt.Address)(f)
}

// ContractAddress computes the address of a contract deployed by
// deployerAddress with the given salt, class hash and constructor calldata.
// https://docs.starknet.io/documentation/architecture_and_concepts/Contracts/contract-address
func ContractAddress(deployerAddress, salt, classHash *felt.Felt, constructorCalldata []*felt.Felt) felt.Address {
	callDataHash := crypto.PedersenArray(constructorCalldata...)

	address := crypto.PedersenArray(
		contractAddressPrefix,
		deployerAddress,
		salt,
		classHash,
		callDataHash,
	)

	addressInt := address.BigInt(new(big.Int))
	addressInt.Mod(addressInt, addrBound)
	return felt.Address(*new(felt.Felt).SetBigInt(addressInt))
}

// DeployedContractAddress computes the address of a contract deployed through
// the universal deployer in not-unique mode: the address depends only on the
// salt, class hash and constructor calldata, never on the sender.
func DeployedContractAddress(salt, classHash *felt.Felt, constructorCalldata []*felt.Felt) felt.Address {
	return ContractAddress(&felt.Zero, salt, classHash, constructorCalldata)
}

// StorageVarAddress computes the canonical slot of a named storage variable,
// optionally indexed by a tuple of keys.
func StorageVarAddress(name string, keys ...*felt.Felt) (*felt.Felt, error) {
	slot, err := crypto.StarknetKeccak([]byte(name))
	if err != nil {
		return nil, fmt.Errorf("hash storage variable name: %w", err)
	}

	for _, key := range keys {
		slot = crypto.Pedersen(slot, key)
	}

	slotInt := slot.BigInt(new(big.Int))
	slotInt.Mod(slotInt, addrBound)
	return slot.SetBigInt(slotInt), nil
}
