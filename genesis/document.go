package genesis

import (
	"encoding/json"

	"github.com/holiman/uint256"
	"github.com/kkrt-labs/katana-genesis/core/felt"
)

// StorageMap maps ledger storage slots to their values. A 256-bit quantity
// occupies a slot and its successor as (low, high) 128-bit limbs.
type StorageMap map[felt.Felt]felt.Felt

// ContractState is one deployed contract in the genesis document. It is
// created when the contract is first deployed into the builder and mutated in
// place afterwards.
type ContractState struct {
	ClassHash *felt.Felt   `json:"class"`
	Balance   *uint256.Int `json:"balance,omitempty"`
	Nonce     *uint64      `json:"nonce,omitempty"`
	Storage   StorageMap   `json:"storage,omitempty"`
}

// DeclaredClass is one loaded artifact together with its computed class hash.
type DeclaredClass struct {
	Class     json.RawMessage `json:"class"`
	ClassHash *felt.Felt      `json:"classHash,omitempty"`
}

// FeeTokenConfig describes the network's native fee token.
type FeeTokenConfig struct {
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"`
	Decimals uint8         `json:"decimals"`
	Address  *felt.Address `json:"address,omitempty"`
	Class    *felt.Felt    `json:"class,omitempty"`
	Storage  StorageMap    `json:"storage,omitempty"`
}

type GasPrices struct {
	ETH  uint64 `json:"ETH"`
	STRK uint64 `json:"STRK"`
}

// Genesis is the declarative initial state of the test network at block zero.
type Genesis struct {
	ParentHash        felt.Felt                        `json:"parentHash"`
	StateRoot         felt.Felt                        `json:"stateRoot"`
	Number            uint64                           `json:"number"`
	Timestamp         uint64                           `json:"timestamp"`
	SequencerAddress  felt.Address                     `json:"sequencerAddress"`
	GasPrices         GasPrices                        `json:"gasPrices"`
	Classes           []DeclaredClass                  `json:"classes"`
	FeeToken          FeeTokenConfig                   `json:"feeToken"`
	UniversalDeployer *felt.Address                    `json:"universalDeployer,omitempty"`
	Accounts          map[felt.Address]*ContractState  `json:"accounts"`
	Contracts         map[felt.Address]*ContractState  `json:"contracts"`
}

// Manifest is the human-facing summary of what the genesis declares and
// deploys, with every field element rendered as hex.
type Manifest struct {
	Declarations map[string]*felt.Felt `json:"declarations"`
	Deployments  map[string]*felt.Felt `json:"deployments"`
}
