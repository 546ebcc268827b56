package starknet

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/wk8/go-ordered-map/v2"
)

// Program is the Cairo 0 program embedded in a deprecated class artifact.
// Field order matters: the legacy class hash is defined over the JSON
// rendering of this struct with keys in this exact order.
type Program struct {
	Attributes       []any                               `json:"attributes,omitempty"`
	Builtins         []string                            `json:"builtins"`
	CompilerVersion  any                                 `json:"compiler_version,omitempty"`
	Data             []string                            `json:"data"`
	DebugInfo        any                                 `json:"debug_info"`
	Hints            *orderedmap.OrderedMap[string, any] `json:"hints,omitempty"`
	Identifiers      any                                 `json:"identifiers,omitempty"`
	MainScope        any                                 `json:"main_scope,omitempty"`
	Prime            any                                 `json:"prime,omitempty"`
	ReferenceManager any                                 `json:"reference_manager"`
}

// Format normalises the program the way the Cairo compiler serialises it
// before hashing: debug info dropped, empty attribute lists elided and hints
// reordered by numeric program counter.
func (p *Program) Format() error {
	p.Attributes = applyReplacer(p.Attributes, nullSkipReplacer).([]any)
	if len(p.Attributes) == 0 {
		p.Attributes = nil
	}
	p.Builtins = applyReplacer(p.Builtins, nullSkipReplacer).([]string)
	if p.CompilerVersion != nil {
		p.CompilerVersion = applyReplacer(p.CompilerVersion, nullSkipReplacer).(string)
	}
	p.DebugInfo = nil
	p.Data = applyReplacer(p.Data, nullSkipReplacer).([]string)

	if err := p.ReorderHints(); err != nil {
		return err
	}
	p.Hints = applyReplacer(p.Hints, nullSkipReplacer).(*orderedmap.OrderedMap[string, any])

	if p.CompilerVersion != nil {
		// Anything since compiler version 0.10.0 can be hashed directly. No extra overhead incurred.
		p.Identifiers = applyReplacer(p.Identifiers, nullSkipReplacer)
	} else {
		// This is needed for backward compatibility with pre-0.10.0 contract artefacts.
		p.Identifiers = applyReplacer(p.Identifiers, identifiersNullSkipReplacer)
	}
	p.MainScope = applyReplacer(p.MainScope, nullSkipReplacer)
	p.Prime = applyReplacer(p.Prime, nullSkipReplacer)
	p.ReferenceManager = applyReplacer(p.ReferenceManager, nullSkipReplacer)

	return nil
}

// ReorderHints sorts the hints map by its keys interpreted as integers.
func (p *Program) ReorderHints() error {
	if p.Hints == nil {
		return nil
	}

	intKeys := []int{}
	for pair := p.Hints.Oldest(); pair != nil; pair = pair.Next() {
		intKey, err := strconv.Atoi(pair.Key)
		if err != nil {
			return fmt.Errorf("error converting key to integer: %v", err)
		}
		intKeys = append(intKeys, intKey)
	}

	sort.Ints(intKeys)

	newHints := orderedmap.New[string, any]()
	for _, intKey := range intKeys {
		strKey := strconv.Itoa(intKey)
		value, _ := p.Hints.Get(strKey)
		newHints.Set(strKey, value)
	}

	p.Hints = newHints
	return nil
}

// nullSkipReplacer is a custom JSON replacer that handles specific keys and null values
func nullSkipReplacer(key string, value any) any {
	switch key {
	case "attributes", "accessible_scopes", "flow_tracking_data":
		if arr, ok := value.([]any); ok && len(arr) == 0 {
			return nil
		}
	case "debug_info":
		return nil
	}

	return value
}

func identifiersNullSkipReplacer(key string, value any) any {
	switch key {
	case "cairo_type":
		if str, ok := value.(string); ok {
			return strings.Replace(str, ": ", " : ", -1)
		}
	case "attributes", "accessible_scopes", "flow_tracking_data":
		if arr, ok := value.([]any); ok && len(arr) == 0 {
			return nil
		}
	case "debug_info":
		return nil
	}

	return value
}

// applyReplacer recursively applies the replacer function to the JSON data
func applyReplacer(data any, replacer func(string, any) any) any {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			v[key] = applyReplacer(replacer(key, val), replacer)
			if v[key] == nil && key != "debug_info" {
				delete(v, key)
			}
		}

		return v
	case []any:
		for i, val := range v {
			v[i] = applyReplacer(replacer("", val), replacer)
		}
		return v
	case *orderedmap.OrderedMap[string, any]:
		for pair := v.Oldest(); pair != nil; pair = pair.Next() {
			val := applyReplacer(replacer(pair.Key, pair.Value), replacer)
			if val == nil {
				v.Delete(pair.Key)
			} else {
				v.Set(pair.Key, val)
			}
		}
		return v
	default:
		return replacer("", v)
	}
}

// stringify converts a Go value to a JSON string, using a custom replacer function
func stringify(value any, replacer func(string, any) any) (string, error) {
	jsonBytes, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	var jsonData any
	if err := json.Unmarshal(jsonBytes, &jsonData); err != nil {
		return "", err
	}

	modifiedData := applyReplacer(jsonData, replacer)

	modifiedJSONBytes, err := json.Marshal(modifiedData)
	if err != nil {
		return "", err
	}

	return string(modifiedJSONBytes), nil
}
