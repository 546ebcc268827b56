package starknet

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kkrt-labs/katana-genesis/core/crypto"
	"github.com/kkrt-labs/katana-genesis/core/felt"
	"github.com/kkrt-labs/katana-genesis/utils"
)

var compiledClassV1 = new(felt.Felt).SetBytes([]byte("COMPILED_CLASS_V1"))

// Hash returns the compiled class hash: the Poseidon digest of the class
// version, the three entry point group hashes and the bytecode hash.
func (c *CasmClass) Hash() *felt.Felt {
	return crypto.PoseidonArray(
		compiledClassV1,
		hashCompiledEntryPoints(c.EntryPoints.External),
		hashCompiledEntryPoints(c.EntryPoints.L1Handler),
		hashCompiledEntryPoints(c.EntryPoints.Constructor),
		c.bytecodeHash(),
	)
}

func (c *CasmClass) bytecodeHash() *felt.Felt {
	if len(c.BytecodeSegmentLengths) == 0 {
		return crypto.PoseidonArray(c.Bytecode...)
	}
	return SegmentedBytecodeHash(c.Bytecode, c.BytecodeSegmentLengths)
}

// SegmentedBytecodeHash computes the bytecode hash of a class whose bytecode
// is split into segments. Each leaf segment contributes its length and the
// Poseidon digest of its felts; nested segments hash their children the same
// way with the node marker added on top.
func SegmentedBytecodeHash(bytecode []*felt.Felt, segmentLengths []SegmentLengths) *felt.Felt {
	var startingOffset uint64
	var digestSegment func(segments []SegmentLengths) (uint64, *felt.Felt)
	digestSegment = func(segments []SegmentLengths) (uint64, *felt.Felt) {
		var totalLength uint64
		var digestedSegments []*felt.Felt
		for _, segment := range segments {
			var segmentLength uint64
			var segmentHash *felt.Felt

			if len(segment.Children) == 0 {
				segmentLength = segment.Length
				segmentHash = crypto.PoseidonArray(bytecode[startingOffset : startingOffset+segment.Length]...)
			} else {
				segmentLength, segmentHash = digestSegment(segment.Children)
			}

			startingOffset += segmentLength
			totalLength += segmentLength
			digestedSegments = append(digestedSegments,
				new(felt.Felt).SetUint64(segmentLength), segmentHash)
		}

		// Nodes are offset by one to distinguish them from leaves.
		nodeHash := crypto.PoseidonArray(digestedSegments...)
		return totalLength, nodeHash.Add(nodeHash, new(felt.Felt).SetUint64(1))
	}

	_, hash := digestSegment(segmentLengths)
	return hash
}

func hashCompiledEntryPoints(entryPoints []CompiledEntryPoint) *felt.Felt {
	flattened := make([]*felt.Felt, 0, len(entryPoints)*3)
	for _, ep := range entryPoints {
		builtins := utils.Map(ep.Builtins, func(builtin string) *felt.Felt {
			return new(felt.Felt).SetBytes([]byte(builtin))
		})
		flattened = append(flattened, ep.Selector,
			new(felt.Felt).SetUint64(ep.Offset), crypto.PoseidonArray(builtins...))
	}
	return crypto.PoseidonArray(flattened...)
}

// Hash returns the legacy class hash: the Pedersen digest over the API
// version, the entry point group hashes, the builtin list, the hinted class
// hash and the program data.
func (c *DeprecatedCairoClass) Hash() (*felt.Felt, error) {
	var program Program
	if err := json.Unmarshal(c.Program, &program); err != nil {
		return nil, err
	}

	externalEntryPointElements := make([]*felt.Felt, 0, len(c.EntryPoints.External)*2)
	l1HandlerEntryPointElements := make([]*felt.Felt, 0, len(c.EntryPoints.L1Handler)*2)
	constructorEntryPointElements := make([]*felt.Felt, 0, len(c.EntryPoints.Constructor)*2)
	builtInsHashElements := make([]*felt.Felt, 0, len(program.Builtins))
	dataHashElements := make([]*felt.Felt, 0, len(program.Data))

	// Use goroutines to parallelize hash computations
	var wg sync.WaitGroup
	var externalEntryPointHash, l1HandlerEntryPointHash, constructorEntryPointHash, builtInsHash, dataHash *felt.Felt
	var hintedClassHash *felt.Felt
	var hintedClassHashErr, builtInsErr, dataErr error

	wg.Add(6)

	go func() {
		defer wg.Done()
		for _, ep := range c.EntryPoints.External {
			externalEntryPointElements = append(externalEntryPointElements, ep.Selector, ep.Offset)
		}
		externalEntryPointHash = crypto.PedersenArray(externalEntryPointElements...)
	}()

	go func() {
		defer wg.Done()
		for _, ep := range c.EntryPoints.L1Handler {
			l1HandlerEntryPointElements = append(l1HandlerEntryPointElements, ep.Selector, ep.Offset)
		}
		l1HandlerEntryPointHash = crypto.PedersenArray(l1HandlerEntryPointElements...)
	}()

	go func() {
		defer wg.Done()
		for _, ep := range c.EntryPoints.Constructor {
			constructorEntryPointElements = append(constructorEntryPointElements, ep.Selector, ep.Offset)
		}
		constructorEntryPointHash = crypto.PedersenArray(constructorEntryPointElements...)
	}()

	go func() {
		defer wg.Done()
		for _, builtIn := range program.Builtins {
			builtInHex := hex.EncodeToString([]byte(builtIn))
			builtInFelt, err := new(felt.Felt).SetString("0x" + builtInHex)
			if err != nil {
				builtInsErr = fmt.Errorf("builtin %q: %w", builtIn, err)
				return
			}
			builtInsHashElements = append(builtInsHashElements, builtInFelt)
		}
		builtInsHash = crypto.PedersenArray(builtInsHashElements...)
	}()

	go func() {
		defer wg.Done()
		hintedClassHash, hintedClassHashErr = computeHintedClassHash(c.Abi, c.Program)
	}()

	go func() {
		defer wg.Done()
		for _, data := range program.Data {
			dataFelt, err := new(felt.Felt).SetString(data)
			if err != nil {
				dataErr = fmt.Errorf("program data word %q: %w", data, err)
				return
			}
			dataHashElements = append(dataHashElements, dataFelt)
		}
		dataHash = crypto.PedersenArray(dataHashElements...)
	}()

	wg.Wait()

	if err := errors.Join(hintedClassHashErr, builtInsErr, dataErr); err != nil {
		return nil, err
	}

	classHash := crypto.PedersenArray(
		&felt.Zero,
		externalEntryPointHash,
		l1HandlerEntryPointHash,
		constructorEntryPointHash,
		builtInsHash,
		hintedClassHash,
		dataHash,
	)

	return classHash, nil
}

// computeHintedClassHash hashes the `{"abi": ..., "program": ...}` document
// rendered the way Python's json.dumps prints it, since that rendering is what
// the hash commits to.
func computeHintedClassHash(abi, program json.RawMessage) (*felt.Felt, error) {
	var mProgram Program
	d := json.NewDecoder(bytes.NewReader(program))
	d.UseNumber()
	if err := d.Decode(&mProgram); err != nil {
		return nil, err
	}
	if err := mProgram.Format(); err != nil {
		return nil, err
	}

	formattedProgramBytes, err := json.Marshal(mProgram)
	if err != nil {
		return nil, err
	}

	formattedProgramStr, err := utils.ToPythonicJSON(string(formattedProgramBytes))
	if err != nil {
		return nil, err
	}

	stringifiedABI, err := stringify(abi, nullSkipReplacer)
	if err != nil {
		return nil, err
	}
	formattedABI, err := utils.ToPythonicJSON(stringifiedABI)
	if err != nil {
		return nil, err
	}

	var hintedClassHashJSON strings.Builder
	hintedClassHashJSON.Grow(len(formattedABI) + len(formattedProgramStr) + 20)
	hintedClassHashJSON.WriteString("{\"abi\": ")
	hintedClassHashJSON.WriteString(formattedABI)
	hintedClassHashJSON.WriteString(", \"program\": ")
	hintedClassHashJSON.WriteString(formattedProgramStr)
	hintedClassHashJSON.WriteString("}")

	hash, err := crypto.StarknetKeccak([]byte(hintedClassHashJSON.String()))
	if err != nil {
		return nil, fmt.Errorf("hash hinted class document: %w", err)
	}
	return hash, nil
}
