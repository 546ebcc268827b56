package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"github.com/kkrt-labs/katana-genesis/starknet"
	"github.com/kkrt-labs/katana-genesis/utils"
)

// ErrNoBinary is returned by New when no compiler binary path is configured.
var ErrNoBinary = errors.New("no sierra compiler binary configured")

// Compiler compiles Sierra classes to CASM.
type Compiler interface {
	Compile(ctx context.Context, sierra *starknet.SierraClass) (
		*starknet.CasmClass, error,
	)
}

// compiler compiles Sierra to CASM in a safe way by spawning
// a separate process.
type compiler struct {
	binaryPath string
	sem        chan struct{}
	log        utils.SimpleLogger
}

// New creates a Compiler that runs Sierra-to-CASM compilation in isolated
// child processes with concurrency control. The binary reads the Sierra class
// JSON on stdin and writes the CASM class JSON to stdout. The caller's
// context controls the compilation deadline.
func New(
	maxConcurrent uint,
	binaryPath string,
	log utils.SimpleLogger,
) (Compiler, error) {
	if binaryPath == "" {
		return nil, ErrNoBinary
	}
	return &compiler{
		binaryPath: binaryPath,
		sem:        make(chan struct{}, maxConcurrent),
		log:        log,
	}, nil
}

// Compile runs Sierra-to-CASM compilation in an isolated child
// process. The child process is killed if the context is cancelled.
func (c *compiler) Compile(
	ctx context.Context, sierra *starknet.SierraClass,
) (*starknet.CasmClass, error) {
	c.log.Debugw("Compilation request received")

	sierraJSON, err := json.Marshal(starknet.SierraClass{
		EntryPoints: sierra.EntryPoints,
		Program:     sierra.Program,
		Version:     sierra.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sierra class: %w", err)
	}

	// Acquire semaphore slot for concurrency limiting.
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return nil, fmt.Errorf(
			"waiting for compilation slot: %w", ctx.Err(),
		)
	}

	//nolint:gosec // binaryPath comes from operator configuration, not user input
	cmd := exec.CommandContext(ctx, c.binaryPath)
	cmd.Stdin = bytes.NewReader(sierraJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.log.Warnw("Sierra to CASM compilation timed out", "err", ctxErr)
			return nil, fmt.Errorf(
				"failed to compile Sierra to CASM: %w",
				ctxErr,
			)
		}
		return nil, fmt.Errorf(
			"failed to compile Sierra to CASM: %w. stderr: %s", err, stderr.String(),
		)
	}

	var casmClass starknet.CasmClass
	if err := json.Unmarshal(stdout.Bytes(), &casmClass); err != nil {
		return nil, fmt.Errorf("couldn't unmarshall casm class: %w", err)
	}

	return &casmClass, nil
}
