package genesis

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/kkrt-labs/katana-genesis/core/felt"
	"github.com/kkrt-labs/katana-genesis/utils"
)

// Class names the builder requires, matching the artifact file stems.
const (
	classKakarot         = "kakarot"
	classContractAccount = "contract_account"
	classEOA             = "externally_owned_account"
	classProxy           = "proxy"
	classPrecompiles     = "precompiles"

	cacheKakarotAddress = "kakarot_address"
)

var (
	one     = new(felt.Felt).SetUint64(1)
	maxU128 = mustFelt("0xffffffffffffffffffffffffffffffff")
)

func mustFelt(s string) *felt.Felt {
	f, err := new(felt.Felt).SetString(s)
	if err != nil {
		panic(fmt.Sprintf("parse felt constant %q: %v", s, err))
	}
	return f
}

// builderState is the accumulating state shared by the builder stages. Each
// stage transition hands the state to the next stage's builder value, so at
// most one stage can mutate it at a time.
type builderState struct {
	coinbase        felt.Felt
	classes         []DeclaredClass
	classHashes     map[string]*felt.Felt
	contracts       map[felt.Address]*ContractState
	feeTokenStorage StorageMap
	cache           map[string]*felt.Felt
	log             utils.SimpleLogger
}

func (s *builderState) classHash(name string) (*felt.Felt, error) {
	hash, found := s.classHashes[name]
	if !found {
		return nil, &MissingClassHashError{Name: name}
	}
	return hash, nil
}

func (s *builderState) cacheLoad(key string) (*felt.Felt, error) {
	value, found := s.cache[key]
	if !found {
		return nil, &MissingCacheEntryError{Key: key}
	}
	return value, nil
}

// Builder is the empty stage: the only valid operation is LoadClasses.
type Builder struct {
	state *builderState
}

func NewBuilder(log utils.SimpleLogger) *Builder {
	return &Builder{
		state: &builderState{
			classHashes:     make(map[string]*felt.Felt),
			contracts:       make(map[felt.Address]*ContractState),
			feeTokenStorage: make(StorageMap),
			cache:           make(map[string]*felt.Felt),
			log:             log,
		},
	}
}

// LoadClasses walks the artifact directory, hashes every class and moves the
// builder to the loaded stage. On error no loaded builder exists.
func (b *Builder) LoadClasses(ctx context.Context, root string, opts ...LoaderOption) (*LoadedBuilder, error) {
	cfg := defaultLoaderConfig(b.state.log)
	for _, opt := range opts {
		opt(cfg)
	}

	classes, classHashes, err := loadClasses(ctx, root, cfg)
	if err != nil {
		return nil, err
	}

	b.state.classes = classes
	b.state.classHashes = classHashes
	b.state.log.Infow("Loaded classes", "count", len(classes), "root", root)
	return &LoadedBuilder{state: b.state}, nil
}

// LoadedBuilder has its class table populated; deploying the dispatcher is
// the only way forward.
type LoadedBuilder struct {
	state *builderState
}

// WithKakarot deploys the Kakarot dispatcher contract and moves the builder
// to the initialized stage. The dispatcher address is deterministic: it
// depends only on the fixed salt, the kakarot class hash and the constructor
// arguments.
func (b *LoadedBuilder) WithKakarot(coinbaseAddress *felt.Felt) (*InitializedBuilder, error) {
	kakarotClassHash, err := b.state.classHash(classKakarot)
	if err != nil {
		return nil, err
	}
	contractAccountClassHash, err := b.state.classHash(classContractAccount)
	if err != nil {
		return nil, err
	}
	eoaClassHash, err := b.state.classHash(classEOA)
	if err != nil {
		return nil, err
	}
	proxyClassHash, err := b.state.classHash(classProxy)
	if err != nil {
		return nil, err
	}
	precompilesClassHash, err := b.state.classHash(classPrecompiles)
	if err != nil {
		return nil, err
	}

	// Constructor argument order is fixed by the kakarot contract.
	constructorArgs := []*felt.Felt{
		&felt.Zero,
		DefaultFeeTokenAddress.AsFelt(),
		contractAccountClassHash,
		eoaClassHash,
		proxyClassHash,
		precompilesClassHash,
	}
	kakarotAddress := DeployedContractAddress(DeploymentSalt, kakarotClassHash, constructorArgs)
	b.state.cache[cacheKakarotAddress] = kakarotAddress.AsFelt()

	storage := make(StorageMap)
	for _, entry := range []struct {
		name  string
		value *felt.Felt
	}{
		{"native_token_address", DefaultFeeTokenAddress.AsFelt()},
		{"contract_account_class_hash", contractAccountClassHash},
		{"externally_owned_account_class_hash", eoaClassHash},
		{"account_proxy_class_hash", proxyClassHash},
		{"precompiles_class_hash", precompilesClassHash},
		{"coinbase", coinbaseAddress},
	} {
		if err := storage.setVar(entry.name, entry.value); err != nil {
			return nil, err
		}
	}

	b.state.contracts[kakarotAddress] = &ContractState{
		ClassHash: kakarotClassHash,
		Storage:   storage,
	}
	b.state.coinbase = *coinbaseAddress

	b.state.log.Infow("Deployed Kakarot dispatcher", "address", &kakarotAddress)
	return &InitializedBuilder{state: b.state}, nil
}

// InitializedBuilder has the dispatcher deployed. Accounts can be added and
// funded repeatedly before the genesis document is assembled.
type InitializedBuilder struct {
	state *builderState
}

// WithEOA deploys an account proxy for the EVM address controlled by the
// given private key, grants it an unlimited fee-token allowance toward the
// dispatcher and registers it in the dispatcher's address mapping.
func (b *InitializedBuilder) WithEOA(privateKey common.Hash) (*InitializedBuilder, error) {
	evmAddress, err := EVMAddress(privateKey)
	if err != nil {
		return nil, err
	}

	kakarotAddress, err := b.state.cacheLoad(cacheKakarotAddress)
	if err != nil {
		return nil, err
	}
	eoaClassHash, err := b.state.classHash(classEOA)
	if err != nil {
		return nil, err
	}
	proxyClassHash, err := b.state.classHash(classProxy)
	if err != nil {
		return nil, err
	}

	storage := make(StorageMap)
	for _, entry := range []struct {
		name  string
		value *felt.Felt
	}{
		{"evm_address", evmAddress},
		{"kakarot_address", kakarotAddress},
		{"_implementation", eoaClassHash},
	} {
		if err := storage.setVar(entry.name, entry.value); err != nil {
			return nil, err
		}
	}

	starknetAddress, err := b.ComputeStarknetAddress(evmAddress)
	if err != nil {
		return nil, err
	}
	b.state.contracts[starknetAddress] = &ContractState{
		ClassHash: proxyClassHash,
		Storage:   storage,
	}

	// Unlimited allowance toward the dispatcher, as two 128-bit limbs.
	allowanceSlot, err := StorageVarAddress("ERC20_allowances", starknetAddress.AsFelt(), kakarotAddress)
	if err != nil {
		return nil, err
	}
	b.state.feeTokenStorage[*allowanceSlot] = *maxU128
	b.state.feeTokenStorage[*new(felt.Felt).Add(allowanceSlot, one)] = *maxU128

	// Reverse mapping on the dispatcher side.
	kakarotContract, found := b.state.contracts[felt.Address(*kakarotAddress)]
	if !found {
		return nil, errors.New("kakarot contract missing from genesis")
	}
	reverseSlot, err := StorageVarAddress("evm_to_starknet_address", evmAddress)
	if err != nil {
		return nil, err
	}
	if kakarotContract.Storage == nil {
		kakarotContract.Storage = make(StorageMap)
	}
	kakarotContract.Storage[*reverseSlot] = felt.Felt(starknetAddress)

	b.state.log.Infow("Deployed EOA", "evmAddress", evmAddress, "starknetAddress", &starknetAddress)
	return b, nil
}

// Fund writes the fee-token balance of the account controlled by the given
// private key. The account must have been added first.
func (b *InitializedBuilder) Fund(privateKey common.Hash, amount *uint256.Int) (*InitializedBuilder, error) {
	evmAddress, err := EVMAddress(privateKey)
	if err != nil {
		return nil, err
	}
	starknetAddress, err := b.ComputeStarknetAddress(evmAddress)
	if err != nil {
		return nil, err
	}

	account, found := b.state.contracts[starknetAddress]
	if !found {
		return nil, ErrMissingAccount
	}

	balanceSlot, err := StorageVarAddress("ERC20_balances", starknetAddress.AsFelt())
	if err != nil {
		return nil, err
	}

	lowMask := new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 128)
	low := new(uint256.Int).And(amount, lowMask)
	high := new(uint256.Int).Rsh(amount, 128)
	b.state.feeTokenStorage[*balanceSlot] = *new(felt.Felt).SetBytes(low.Bytes())
	b.state.feeTokenStorage[*new(felt.Felt).Add(balanceSlot, one)] = *new(felt.Felt).SetBytes(high.Bytes())

	account.Balance = new(uint256.Int).Set(amount)

	b.state.log.Infow("Funded account", "starknetAddress", &starknetAddress, "amount", amount)
	return b, nil
}

// Build assembles the genesis document. The header fields are genesis
// defaults and the sequencer is the ledger address derived for the coinbase.
func (b *InitializedBuilder) Build() (*Genesis, error) {
	sequencerAddress, err := b.ComputeStarknetAddress(&b.state.coinbase)
	if err != nil {
		return nil, err
	}

	return &Genesis{
		SequencerAddress: sequencerAddress,
		Classes:          b.state.classes,
		FeeToken: FeeTokenConfig{
			Name:     "Ether",
			Symbol:   "ETH",
			Decimals: 18,
			Storage:  b.state.feeTokenStorage,
		},
		Accounts:  make(map[felt.Address]*ContractState),
		Contracts: b.state.contracts,
	}, nil
}

// Manifest snapshots the declared class hashes and the cached deployment
// addresses.
func (b *InitializedBuilder) Manifest() *Manifest {
	declarations := make(map[string]*felt.Felt, len(b.state.classHashes))
	for name, hash := range b.state.classHashes {
		declarations[name] = hash.Clone()
	}
	deployments := make(map[string]*felt.Felt, len(b.state.cache))
	for key, address := range b.state.cache {
		deployments[key] = address.Clone()
	}
	return &Manifest{Declarations: declarations, Deployments: deployments}
}

// ComputeStarknetAddress returns the ledger address of the account proxy
// deployed for the given EVM address.
func (b *InitializedBuilder) ComputeStarknetAddress(evmAddress *felt.Felt) (felt.Address, error) {
	kakarotAddress, err := b.state.cacheLoad(cacheKakarotAddress)
	if err != nil {
		return felt.Address{}, err
	}
	proxyClassHash, err := b.state.classHash(classProxy)
	if err != nil {
		return felt.Address{}, err
	}
	return ContractAddress(kakarotAddress, evmAddress, proxyClassHash, nil), nil
}

func (m StorageMap) setVar(name string, value *felt.Felt) error {
	slot, err := StorageVarAddress(name)
	if err != nil {
		return err
	}
	m[*slot] = *value
	return nil
}
