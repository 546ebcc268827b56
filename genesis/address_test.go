package genesis_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kkrt-labs/katana-genesis/core/felt"
	"github.com/kkrt-labs/katana-genesis/genesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hexToFelt(t *testing.T, hex string) *felt.Felt {
	t.Helper()
	f, err := new(felt.Felt).SetString(hex)
	require.NoError(t, err)
	return f
}

func TestContractAddress(t *testing.T) {
	// https://alpha-mainnet.starknet.io/feeder_gateway/get_transaction?transactionHash=0x6486c6303dba2f364c684a2e9609211c5b8e417e767f37b527cda51e776e6f0
	classHash := hexToFelt(t, "0x46f844ea1a3b3668f81d38b5c1bd55e816e0373802aefe732138628f0133486")
	salt := hexToFelt(t, "0x74dc2fe193daf1abd8241b63329c1123214842b96ad7fd003d25512598a956b")
	calldata := []*felt.Felt{
		hexToFelt(t, "0x6d706cfbac9b8262d601c38251c5fbe0497c3a96cc91a92b08d91b61d9e70c4"),
		hexToFelt(t, "0x79dc0da7c54b95f10aa182ad0a46400db63156920adb65eca2654c0945a463"),
		hexToFelt(t, "0x2"),
		hexToFelt(t, "0x6658165b4984816ab189568637bedec5aa0a18305909c7f5726e4a16e3afef6"),
		hexToFelt(t, "0x6b648b36b074a91eee55730f5f5e075ec19c0a8f9ffb0903cefeee93b6ff328"),
	}
	want := "0x3ec215c6c9028ff671b46a2a9814970ea23ed3c4bcc3838c6d1dcbf395263c3"

	address := genesis.ContractAddress(&felt.Zero, salt, classHash, calldata)
	assert.Equal(t, want, address.String())

	t.Run("deployer zero matches the universal deployer form", func(t *testing.T) {
		deployed := genesis.DeployedContractAddress(salt, classHash, calldata)
		assert.True(t, address.Equal(&deployed))
	})

	t.Run("sender changes the address", func(t *testing.T) {
		other := genesis.ContractAddress(one(t), salt, classHash, calldata)
		assert.False(t, address.Equal(&other))
	})

	t.Run("deterministic", func(t *testing.T) {
		again := genesis.ContractAddress(&felt.Zero, salt, classHash, calldata)
		assert.True(t, address.Equal(&again))
	})
}

func one(t *testing.T) *felt.Felt {
	t.Helper()
	return new(felt.Felt).SetUint64(1)
}

func TestStorageVarAddress(t *testing.T) {
	tests := map[string]string{
		"native_token_address":                "0x1d9761b132d23ef7240388dff9c944fc5417612224dee229f1e889478983d13",
		"contract_account_class_hash":         "0x1480147974bc7ac8d18468d780fc874edb438cce6061ec06dd0cf19f39669c1",
		"externally_owned_account_class_hash": "0x3916f86dc953468ee636e5f9e4e5d6526a986673dfa407315009140ca50eac4",
		"account_proxy_class_hash":            "0x2affed0018388a98768dabc7b6548af0dcff85763e41e4a3455f88861b7b841",
		"precompiles_class_hash":              "0x13f4898bae43457ed814c8130774fbac175d0889ecab4d1028a318ad6717793",
		"coinbase":                            "0x2ec948a9207fdea26dcba91086bcdd181920ff52a539b0d1eb28e73b4cd92af",
		"evm_address":                         "0x3f43484c2593529120e2eb76b9577bc1f9d00c0d456831a7ff2a28a39b43f86",
		"kakarot_address":                     "0x293202b7c8f619d642dd127233d82b8ae5f38ac7f4f6dc24b76ab1a7382d671",
		"_implementation":                     "0xf920571b9f85bdd92a867cfdc73319d0f8836f0e69e06e4c5566b6203f75cc",
		"evm_to_starknet_address":             "0x2b13954cc4b4516b398788e81cffa812dcb9c6be3ab692778118ea38cfd0765",
		"ERC20_allowances":                    "0x3c87bf42ed4f01f11883bf54f43d91d2cbbd5fec26d1df9c74c57ae138800a4",
		"ERC20_balances":                      "0x3a4e8ec16e258a799fe707996fd5d21d42b29adc1499a370edf7f809d8c458a",
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			slot, err := genesis.StorageVarAddress(name)
			require.NoError(t, err)
			assert.Equal(t, want, slot.String())
		})
	}

	t.Run("keys index into the variable", func(t *testing.T) {
		base, err := genesis.StorageVarAddress("ERC20_balances")
		require.NoError(t, err)
		keyed, err := genesis.StorageVarAddress("ERC20_balances", one(t))
		require.NoError(t, err)
		assert.False(t, base.Equal(keyed))

		again, err := genesis.StorageVarAddress("ERC20_balances", one(t))
		require.NoError(t, err)
		assert.True(t, keyed.Equal(again))
	})
}

func TestEVMAddress(t *testing.T) {
	tests := map[string]struct {
		privateKey common.Hash
		want       string
	}{
		"one": {
			privateKey: common.HexToHash("0x1"),
			want:       "0x7e5f4552091a69125d5dfcb7b8c2659029395bdf",
		},
		"two": {
			privateKey: common.HexToHash("0x2"),
			want:       "0x2b5ad5c4795c026514f8317c7a215e218dccd6cf",
		},
		"dev key": {
			privateKey: genesis.DevPrivateKeys()[0],
			want:       "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			address, err := genesis.EVMAddress(test.privateKey)
			require.NoError(t, err)
			assert.Equal(t, test.want, address.String())
		})
	}

	t.Run("zero key is rejected", func(t *testing.T) {
		_, err := genesis.EVMAddress(common.Hash{})
		require.Error(t, err)
	})
}
