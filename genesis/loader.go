package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/kkrt-labs/katana-genesis/core/felt"
	"github.com/kkrt-labs/katana-genesis/starknet"
	"github.com/kkrt-labs/katana-genesis/starknet/compiler"
	"github.com/kkrt-labs/katana-genesis/utils"
	"github.com/sourcegraph/conc/pool"
)

type loaderConfig struct {
	compiler   compiler.Compiler
	maxWorkers int
	log        utils.SimpleLogger
}

type LoaderOption func(*loaderConfig)

// WithCompiler configures the Sierra-to-CASM compiler used for
// current-generation artifacts that ship only their Sierra program.
func WithCompiler(c compiler.Compiler) LoaderOption {
	return func(cfg *loaderConfig) {
		cfg.compiler = c
	}
}

// WithMaxWorkers bounds the per-file fan-out during loading.
func WithMaxWorkers(n int) LoaderOption {
	return func(cfg *loaderConfig) {
		if n > 0 {
			cfg.maxWorkers = n
		}
	}
}

type loadedClass struct {
	path  string
	name  string
	class DeclaredClass
	err   error
}

// loadClasses walks the artifact directory, parses and hashes every regular
// file on a bounded worker pool, and joins fully before returning. Unreadable
// directory entries are skipped; file content errors are collected across the
// whole tree and reported together, sorted by path.
func loadClasses(ctx context.Context, root string, cfg *loaderConfig) ([]DeclaredClass, map[string]*felt.Felt, error) {
	workers := pool.NewWithResults[loadedClass]().WithMaxGoroutines(cfg.maxWorkers)

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are not fatal, per the traversal contract.
			cfg.log.Warnw("Skipping unreadable directory entry", "path", path, "err", err)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		workers.Go(func() loadedClass {
			return loadClass(ctx, path, cfg)
		})
		return nil
	})

	results := workers.Wait()
	if walkErr != nil {
		return nil, nil, fmt.Errorf("walk %s: %w", root, walkErr)
	}

	// The pool yields results in completion order. Sort by path so that both
	// error reporting and name collisions are deterministic.
	sort.Slice(results, func(i, j int) bool {
		return results[i].path < results[j].path
	})

	var errs []error
	classes := make([]DeclaredClass, 0, len(results))
	classHashes := make(map[string]*felt.Felt, len(results))
	for _, result := range results {
		if result.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", result.path, result.err))
			continue
		}
		classes = append(classes, result.class)
		classHashes[result.name] = result.class.ClassHash
	}
	if len(errs) > 0 {
		return nil, nil, errors.Join(errs...)
	}

	return classes, classHashes, nil
}

func loadClass(ctx context.Context, path string, cfg *loaderConfig) loadedClass {
	result := loadedClass{
		path: path,
		name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}

	artifact, err := os.ReadFile(path)
	if err != nil {
		result.err = fmt.Errorf("read artifact: %w", err)
		return result
	}

	var definition starknet.ClassDefinition
	if err := json.Unmarshal(artifact, &definition); err != nil {
		result.err = err
		return result
	}

	hash, err := classHash(ctx, &definition, cfg)
	if err != nil {
		result.err = err
		return result
	}

	cfg.log.Debugw("Loaded class artifact", "path", path, "classHash", hash)
	result.class = DeclaredClass{Class: artifact, ClassHash: hash}
	return result
}

func classHash(ctx context.Context, definition *starknet.ClassDefinition, cfg *loaderConfig) (*felt.Felt, error) {
	switch {
	case definition.Sierra != nil:
		if cfg.compiler == nil {
			return nil, errors.New("sierra artifact requires a sierra compiler")
		}
		casm, err := cfg.compiler.Compile(ctx, definition.Sierra)
		if err != nil {
			return nil, fmt.Errorf("compile sierra class: %w", err)
		}
		return casm.Hash(), nil
	case definition.Casm != nil:
		return definition.Casm.Hash(), nil
	case definition.DeprecatedCairo != nil:
		hash, err := definition.DeprecatedCairo.Hash()
		if err != nil {
			return nil, fmt.Errorf("hash deprecated class: %w", err)
		}
		return hash, nil
	default:
		return nil, starknet.ErrMalformedArtifact
	}
}

func defaultLoaderConfig(log utils.SimpleLogger) *loaderConfig {
	return &loaderConfig{
		maxWorkers: runtime.GOMAXPROCS(0),
		log:        log,
	}
}
