package starknet

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/kkrt-labs/katana-genesis/core/felt"
)

// ErrMalformedArtifact is returned when an artifact matches none of the
// supported class schemas.
var ErrMalformedArtifact = errors.New("artifact matches no known class schema")

type EntryPoint struct {
	Selector *felt.Felt `json:"selector"`
	Offset   *felt.Felt `json:"offset"`
}

type EntryPoints struct {
	Constructor []EntryPoint `json:"CONSTRUCTOR"`
	External    []EntryPoint `json:"EXTERNAL"`
	L1Handler   []EntryPoint `json:"L1_HANDLER"`
}

// DeprecatedCairoClass is a Cairo 0 class artifact with its program embedded
// as raw JSON.
type DeprecatedCairoClass struct {
	Abi         json.RawMessage `json:"abi"`
	EntryPoints EntryPoints     `json:"entry_points_by_type"`
	Program     json.RawMessage `json:"program"`
}

type SierraEntryPoint struct {
	Index    uint64     `json:"function_idx"`
	Selector *felt.Felt `json:"selector"`
}

type SierraEntryPoints struct {
	Constructor []SierraEntryPoint `json:"CONSTRUCTOR"`
	External    []SierraEntryPoint `json:"EXTERNAL"`
	L1Handler   []SierraEntryPoint `json:"L1_HANDLER"`
}

// SierraClass is the current-generation declared class artifact. Hashing it
// requires lowering it to a CasmClass first.
type SierraClass struct {
	Abi         string            `json:"abi,omitempty"`
	EntryPoints SierraEntryPoints `json:"entry_points_by_type"`
	Program     []*felt.Felt      `json:"sierra_program"`
	Version     string            `json:"contract_class_version"`
}

type SegmentLengths struct {
	Children []SegmentLengths
	Length   uint64
}

func (n *SegmentLengths) UnmarshalJSON(data []byte) error {
	var err error
	n.Length, err = strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return json.Unmarshal(data, &n.Children)
	}
	return err
}

func (n SegmentLengths) MarshalJSON() ([]byte, error) {
	if len(n.Children) > 0 {
		return json.Marshal(n.Children)
	}
	return json.Marshal(n.Length)
}

type CompiledEntryPoint struct {
	Selector *felt.Felt `json:"selector"`
	Offset   uint64     `json:"offset"`
	Builtins []string   `json:"builtins"`
}

type CasmEntryPoints struct {
	External    []CompiledEntryPoint `json:"EXTERNAL"`
	L1Handler   []CompiledEntryPoint `json:"L1_HANDLER"`
	Constructor []CompiledEntryPoint `json:"CONSTRUCTOR"`
}

// CasmClass is the compiled form of a current-generation class, either read
// directly from a compiled artifact or produced by the Sierra compiler.
type CasmClass struct {
	Prime                  string           `json:"prime"`
	Bytecode               []*felt.Felt     `json:"bytecode"`
	Hints                  json.RawMessage  `json:"hints,omitempty"`
	PythonicHints          json.RawMessage  `json:"pythonic_hints,omitempty"`
	CompilerVersion        string           `json:"compiler_version"`
	BytecodeSegmentLengths []SegmentLengths `json:"bytecode_segment_lengths,omitempty"`
	EntryPoints            CasmEntryPoints  `json:"entry_points_by_type"`
}

// ClassDefinition is one artifact parsed as whichever schema it satisfies.
// Exactly one of the three fields is non-nil after a successful unmarshal.
type ClassDefinition struct {
	Sierra          *SierraClass
	Casm            *CasmClass
	DeprecatedCairo *DeprecatedCairoClass
}

// UnmarshalJSON sniffs the schema generation: a Sierra program marks a
// current-generation class, bytecode with a prime marks a compiled one, and a
// program marks a deprecated Cairo 0 one. Anything else is malformed; there
// is no further fallback.
func (c *ClassDefinition) UnmarshalJSON(data []byte) error {
	jsonMap := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &jsonMap); err != nil {
		return err
	}

	if _, found := jsonMap["sierra_program"]; found {
		c.Sierra = new(SierraClass)
		if err := json.Unmarshal(data, c.Sierra); err == nil {
			return nil
		}
		c.Sierra = nil
	}
	if _, found := jsonMap["bytecode"]; found {
		c.Casm = new(CasmClass)
		if err := json.Unmarshal(data, c.Casm); err == nil {
			return nil
		}
		c.Casm = nil
	}
	if _, found := jsonMap["program"]; found {
		c.DeprecatedCairo = new(DeprecatedCairoClass)
		if err := json.Unmarshal(data, c.DeprecatedCairo); err == nil {
			return nil
		}
		c.DeprecatedCairo = nil
	}

	return ErrMalformedArtifact
}
