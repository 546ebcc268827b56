package starknet_test

import (
	"encoding/json"
	"testing"

	"github.com/kkrt-labs/katana-genesis/starknet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sierraJSON = `{
		"contract_class_version": "0.1.0",
		"sierra_program": ["0x1", "0x3", "0x0"],
		"entry_points_by_type": {
			"EXTERNAL": [{"function_idx": 0, "selector": "0xcafe"}],
			"L1_HANDLER": [],
			"CONSTRUCTOR": []
		}
	}`
	casmJSON = `{
		"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
		"compiler_version": "2.6.0",
		"bytecode": ["0x1", "0x2", "0x3"],
		"entry_points_by_type": {
			"EXTERNAL": [{"selector": "0xcafe", "offset": 0, "builtins": ["range_check"]}],
			"L1_HANDLER": [],
			"CONSTRUCTOR": []
		}
	}`
	deprecatedJSON = `{
		"abi": [],
		"program": {
			"builtins": [],
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
)

func TestClassDefinitionDetection(t *testing.T) {
	t.Run("sierra", func(t *testing.T) {
		var class starknet.ClassDefinition
		require.NoError(t, json.Unmarshal([]byte(sierraJSON), &class))
		require.NotNil(t, class.Sierra)
		assert.Nil(t, class.Casm)
		assert.Nil(t, class.DeprecatedCairo)
		assert.Equal(t, "0.1.0", class.Sierra.Version)
		assert.Len(t, class.Sierra.Program, 3)
		assert.Len(t, class.Sierra.EntryPoints.External, 1)
	})

	t.Run("casm", func(t *testing.T) {
		var class starknet.ClassDefinition
		require.NoError(t, json.Unmarshal([]byte(casmJSON), &class))
		require.NotNil(t, class.Casm)
		assert.Nil(t, class.Sierra)
		assert.Equal(t, "2.6.0", class.Casm.CompilerVersion)
		assert.Len(t, class.Casm.Bytecode, 3)
		require.Len(t, class.Casm.EntryPoints.External, 1)
		assert.Equal(t, []string{"range_check"}, class.Casm.EntryPoints.External[0].Builtins)
	})

	t.Run("deprecated cairo", func(t *testing.T) {
		var class starknet.ClassDefinition
		require.NoError(t, json.Unmarshal([]byte(deprecatedJSON), &class))
		require.NotNil(t, class.DeprecatedCairo)
		assert.Nil(t, class.Sierra)
		assert.Nil(t, class.Casm)
	})

	t.Run("malformed artifact", func(t *testing.T) {
		var class starknet.ClassDefinition
		err := json.Unmarshal([]byte(`{"some": "document"}`), &class)
		require.ErrorIs(t, err, starknet.ErrMalformedArtifact)
	})

	t.Run("not a json object", func(t *testing.T) {
		var class starknet.ClassDefinition
		require.Error(t, json.Unmarshal([]byte(`[1, 2]`), &class))
	})
}

func TestSegmentLengthsJSON(t *testing.T) {
	var segments []starknet.SegmentLengths
	require.NoError(t, json.Unmarshal([]byte(`[1, [2, [3, 4]], 5]`), &segments))
	require.Len(t, segments, 3)
	assert.Equal(t, uint64(1), segments[0].Length)
	require.Len(t, segments[1].Children, 2)
	assert.Equal(t, uint64(2), segments[1].Children[0].Length)
	require.Len(t, segments[1].Children[1].Children, 2)
	assert.Equal(t, uint64(5), segments[2].Length)

	marshalled, err := json.Marshal(segments)
	require.NoError(t, err)
	assert.JSONEq(t, `[1, [2, [3, 4]], 5]`, string(marshalled))
}
