package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/holiman/uint256"
	"github.com/kkrt-labs/katana-genesis/core/felt"
	"github.com/kkrt-labs/katana-genesis/genesis"
	"github.com/kkrt-labs/katana-genesis/starknet/compiler"
	"github.com/kkrt-labs/katana-genesis/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version string

const greeting = `
katanagen assembles the genesis state of a Kakarot test network: it declares
the contract classes, deploys the Kakarot dispatcher and the requested EOAs,
and writes the genesis document and its manifest.

`

const (
	configF         = "config"
	verbosityF      = "verbosity"
	classesDirF     = "classes-dir"
	coinbaseF       = "coinbase"
	privateKeysF    = "private-keys"
	fundAmountF     = "fund-amount"
	genesisOutF     = "genesis-out"
	manifestOutF    = "manifest-out"
	sierraCompilerF = "sierra-compiler"
	maxWorkersF     = "max-workers"
	colourF         = "colour"

	defaultConfig         = ""
	defaultVerbosity      = utils.INFO
	defaultClassesDir     = ""
	defaultCoinbase       = ""
	defaultFundAmount     = "0x3635c9adc5dea00000" // 1000 ETH
	defaultGenesisOut     = "genesis.json"
	defaultManifestOut    = "manifest.json"
	defaultSierraCompiler = ""
	defaultMaxWorkers     = uint(0)
	defaultColour         = true

	configFlagUsage    = "The yaml configuration file."
	verbosityFlagUsage = `Verbosity of the logs. Options:
0 = debug
1 = info
2 = warn
3 = error
`
	classesDirUsage     = "Directory containing the class artifacts to declare."
	coinbaseUsage       = "EVM address receiving the priority fees, as a hex string."
	privateKeysUsage    = "EVM private keys to deploy and fund as EOAs. Defaults to the well-known dev keys."
	fundAmountUsage     = "Fee-token amount each EOA is funded with, hex or decimal."
	genesisOutUsage     = "Path the genesis document is written to."
	manifestOutUsage    = "Path the manifest is written to."
	sierraCompilerUsage = "Path to a sierra compiler binary, required when the classes directory holds Sierra artifacts."
	maxWorkersUsage     = "Bound on the class-loading workers. 0 picks the number of CPUs."
	colourUsage         = "Use colour in logs."
)

type Config struct {
	Verbosity      utils.LogLevel `mapstructure:"verbosity"`
	ClassesDir     string         `mapstructure:"classes-dir" validate:"required"`
	Coinbase       string         `mapstructure:"coinbase" validate:"required"`
	PrivateKeys    []string       `mapstructure:"private-keys"`
	FundAmount     string         `mapstructure:"fund-amount" validate:"required"`
	GenesisOut     string         `mapstructure:"genesis-out" validate:"required"`
	ManifestOut    string         `mapstructure:"manifest-out" validate:"required"`
	SierraCompiler string         `mapstructure:"sierra-compiler"`
	MaxWorkers     uint           `mapstructure:"max-workers"`
	Colour         bool           `mapstructure:"colour"`
}

var cfgFile string

func NewCmd() *cobra.Command {
	katanagenCmd := &cobra.Command{
		Use:     "katanagen [flags]",
		Short:   "Kakarot test-network genesis builder.",
		Version: Version,
	}

	katanagenCmd.Flags().StringVar(&cfgFile, configF, defaultConfig, configFlagUsage)
	katanagenCmd.Flags().Uint8(verbosityF, uint8(defaultVerbosity), verbosityFlagUsage)
	katanagenCmd.Flags().String(classesDirF, defaultClassesDir, classesDirUsage)
	katanagenCmd.Flags().String(coinbaseF, defaultCoinbase, coinbaseUsage)
	katanagenCmd.Flags().StringSlice(privateKeysF, nil, privateKeysUsage)
	katanagenCmd.Flags().String(fundAmountF, defaultFundAmount, fundAmountUsage)
	katanagenCmd.Flags().String(genesisOutF, defaultGenesisOut, genesisOutUsage)
	katanagenCmd.Flags().String(manifestOutF, defaultManifestOut, manifestOutUsage)
	katanagenCmd.Flags().String(sierraCompilerF, defaultSierraCompiler, sierraCompilerUsage)
	katanagenCmd.Flags().Uint(maxWorkersF, defaultMaxWorkers, maxWorkersUsage)
	katanagenCmd.Flags().Bool(colourF, defaultColour, colourUsage)

	katanagenCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		v := viper.New()
		if cfgFile != "" {
			v.SetConfigType("yaml")
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
		}

		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		if _, err := fmt.Fprint(cmd.OutOrStdout(), greeting); err != nil {
			return err
		}

		cfg := new(Config)
		if err := v.Unmarshal(cfg); err != nil {
			return err
		}
		if err := validator.New().Struct(cfg); err != nil {
			return err
		}

		return run(cmd, cfg)
	}

	return katanagenCmd
}

func run(cmd *cobra.Command, cfg *Config) error {
	log, err := utils.NewZapLogger(cfg.Verbosity, cfg.Colour)
	if err != nil {
		return err
	}

	coinbase, err := new(felt.Felt).SetString(cfg.Coinbase)
	if err != nil {
		return fmt.Errorf("parse coinbase: %w", err)
	}
	amount, err := parseAmount(cfg.FundAmount)
	if err != nil {
		return fmt.Errorf("parse fund amount: %w", err)
	}

	privateKeys := make([]common.Hash, 0, len(cfg.PrivateKeys))
	for _, key := range cfg.PrivateKeys {
		privateKeys = append(privateKeys, common.HexToHash(key))
	}
	if len(privateKeys) == 0 {
		privateKeys = genesis.DevPrivateKeys()
	}

	opts := []genesis.LoaderOption{genesis.WithMaxWorkers(int(cfg.MaxWorkers))}
	if cfg.SierraCompiler != "" {
		maxConcurrent := cfg.MaxWorkers
		if maxConcurrent == 0 {
			maxConcurrent = 1
		}
		sierraCompiler, err := compiler.New(maxConcurrent, cfg.SierraCompiler, log)
		if err != nil {
			return err
		}
		opts = append(opts, genesis.WithCompiler(sierraCompiler))
	}

	loaded, err := genesis.NewBuilder(log).LoadClasses(cmd.Context(), cfg.ClassesDir, opts...)
	if err != nil {
		return err
	}
	builder, err := loaded.WithKakarot(coinbase)
	if err != nil {
		return err
	}
	for _, key := range privateKeys {
		if builder, err = builder.WithEOA(key); err != nil {
			return err
		}
		if builder, err = builder.Fund(key, amount); err != nil {
			return err
		}
	}

	manifest := builder.Manifest()
	doc, err := builder.Build()
	if err != nil {
		return err
	}

	if err := writeJSON(cfg.GenesisOut, doc); err != nil {
		return err
	}
	if err := writeJSON(cfg.ManifestOut, manifest); err != nil {
		return err
	}

	log.Infow("Genesis written", "genesis", cfg.GenesisOut, "manifest", cfg.ManifestOut,
		"accounts", len(privateKeys))
	return nil
}

func parseAmount(amount string) (*uint256.Int, error) {
	if strings.HasPrefix(amount, "0x") || strings.HasPrefix(amount, "0X") {
		return uint256.FromHex(amount)
	}
	return uint256.FromDecimal(amount)
}

func writeJSON(path string, document any) error {
	encoded, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
