package starknet_test

import (
	"encoding/json"
	"testing"

	"github.com/kkrt-labs/katana-genesis/core/felt"
	"github.com/kkrt-labs/katana-genesis/starknet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentedBytecodeHash(t *testing.T) {
	// nested case that is not covered by class hash tests
	require.Equal(t, "0x7cdd91b70b76e3deb1d334d76ba08eebd26f8c06af82117b79bcf1386c8e736",
		starknet.SegmentedBytecodeHash([]*felt.Felt{
			new(felt.Felt).SetUint64(1),
			new(felt.Felt).SetUint64(2),
			new(felt.Felt).SetUint64(3),
		}, []starknet.SegmentLengths{
			{
				Length: 1,
			},
			{
				Children: []starknet.SegmentLengths{
					{
						Length: 1,
					},
					{
						Length: 1,
					},
				},
			},
		}).String())
}

func TestCasmClassHash(t *testing.T) {
	var class starknet.ClassDefinition
	require.NoError(t, json.Unmarshal([]byte(casmJSON), &class))
	require.NotNil(t, class.Casm)

	hash := class.Casm.Hash()
	require.NotNil(t, hash)
	assert.False(t, hash.IsZero())

	t.Run("deterministic", func(t *testing.T) {
		assert.True(t, hash.Equal(class.Casm.Hash()))
	})

	t.Run("sensitive to bytecode", func(t *testing.T) {
		other := *class.Casm
		other.Bytecode = append([]*felt.Felt{new(felt.Felt).SetUint64(42)}, other.Bytecode[1:]...)
		assert.False(t, hash.Equal(other.Hash()))
	})

	t.Run("sensitive to entry points", func(t *testing.T) {
		other := *class.Casm
		other.EntryPoints.External = nil
		assert.False(t, hash.Equal(other.Hash()))
	})

	t.Run("segmented bytecode changes the hash", func(t *testing.T) {
		other := *class.Casm
		other.BytecodeSegmentLengths = []starknet.SegmentLengths{{Length: 1}, {Length: 2}}
		assert.False(t, hash.Equal(other.Hash()))
	})
}

func TestDeprecatedCairoClassHash(t *testing.T) {
	var class starknet.ClassDefinition
	require.NoError(t, json.Unmarshal([]byte(deprecatedJSON), &class))
	require.NotNil(t, class.DeprecatedCairo)

	hash, err := class.DeprecatedCairo.Hash()
	require.NoError(t, err)
	assert.False(t, hash.IsZero())

	t.Run("deterministic", func(t *testing.T) {
		again, err := class.DeprecatedCairo.Hash()
		require.NoError(t, err)
		assert.True(t, hash.Equal(again))
	})

	t.Run("unparsable data word returns an error", func(t *testing.T) {
		var other starknet.ClassDefinition
		otherJSON := `{
			"abi": [],
			"program": {
				"builtins": [],
				"data": ["not-a-felt"],
				"hints": {},
				"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
				"reference_manager": {},
				"identifiers": {},
				"main_scope": "__main__",
				"attributes": [],
				"debug_info": null
			},
			"entry_points_by_type": {"EXTERNAL": [], "L1_HANDLER": [], "CONSTRUCTOR": []}
		}`
		require.NoError(t, json.Unmarshal([]byte(otherJSON), &other))
		require.NotNil(t, other.DeprecatedCairo)
		_, err := other.DeprecatedCairo.Hash()
		require.ErrorContains(t, err, "not-a-felt")
	})

	t.Run("unparsable builtin returns an error", func(t *testing.T) {
		var other starknet.ClassDefinition
		otherJSON := `{
			"abi": [],
			"program": {
				"builtins": [""],
				"data": [],
				"hints": {},
				"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
				"reference_manager": {},
				"identifiers": {},
				"main_scope": "__main__",
				"attributes": [],
				"debug_info": null
			},
			"entry_points_by_type": {"EXTERNAL": [], "L1_HANDLER": [], "CONSTRUCTOR": []}
		}`
		require.NoError(t, json.Unmarshal([]byte(otherJSON), &other))
		require.NotNil(t, other.DeprecatedCairo)
		_, err := other.DeprecatedCairo.Hash()
		require.ErrorContains(t, err, "builtin")
	})

	t.Run("sensitive to program data", func(t *testing.T) {
		var other starknet.ClassDefinition
		otherJSON := `{
			"abi": [],
			"program": {
				"builtins": [],
				"data": ["0x1"],
				"hints": {},
				"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
				"reference_manager": {},
				"identifiers": {},
				"main_scope": "__main__",
				"attributes": [],
				"debug_info": null
			},
			"entry_points_by_type": {"EXTERNAL": [], "L1_HANDLER": [], "CONSTRUCTOR": []}
		}`
		require.NoError(t, json.Unmarshal([]byte(otherJSON), &other))
		otherHash, err := other.DeprecatedCairo.Hash()
		require.NoError(t, err)
		assert.False(t, hash.Equal(otherHash))
	})
}
