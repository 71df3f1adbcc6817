package contracts

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractType represents different contract types
type ContractType string

const (
	MissionContract              ContractType = "Mission"
	MissionFactoryContract       ContractType = "MissionFactory"
	BoostManagerContract         ContractType = "BoostManager"
	LazyNFTStakingContract       ContractType = "LazyNFTStaking"
	LazyGasStationContract       ContractType = "LazyGasStation"
	LazyDelegateRegistryContract ContractType = "LazyDelegateRegistry"
	ERC20Contract                ContractType = "ERC20"
	ERC721Contract               ContractType = "ERC721"
	HRCContract                  ContractType = "HRC"
)

// KnownTypes lists the contract types in display order
var KnownTypes = []ContractType{
	MissionContract,
	MissionFactoryContract,
	BoostManagerContract,
	LazyNFTStakingContract,
	LazyGasStationContract,
	LazyDelegateRegistryContract,
	ERC20Contract,
	ERC721Contract,
	HRCContract,
}

var typeAliases = map[string]ContractType{
	"mission":              MissionContract,
	"missionfactory":       MissionFactoryContract,
	"factory":              MissionFactoryContract,
	"boostmanager":         BoostManagerContract,
	"boost":                BoostManagerContract,
	"lazynftstaking":       LazyNFTStakingContract,
	"staking":              LazyNFTStakingContract,
	"lazygasstation":       LazyGasStationContract,
	"lgs":                  LazyGasStationContract,
	"gas":                  LazyGasStationContract,
	"lazydelegateregistry": LazyDelegateRegistryContract,
	"ldr":                  LazyDelegateRegistryContract,
	"delegate":             LazyDelegateRegistryContract,
	"erc20":                ERC20Contract,
	"ft":                   ERC20Contract,
	"erc721":               ERC721Contract,
	"nft":                  ERC721Contract,
	"hrc":                  HRCContract,
}

// ParseContractType resolves a contract name or shorthand. Names that are
// not known types are returned as-is so any compiled artifact can be used.
func ParseContractType(name string) ContractType {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	if t, ok := typeAliases[key]; ok {
		return t
	}
	return ContractType(name)
}

// Embedded reports whether the ABI ships with the binary rather than an artifact
func (t ContractType) Embedded() bool {
	switch t {
	case ERC20Contract, ERC721Contract, HRCContract:
		return true
	}
	return false
}

// ContractInfo holds metadata about a contract
type ContractInfo struct {
	Name        string
	Type        ContractType
	Address     common.Address
	ContractID  string
	Description string
}

// ContractInstance binds an ABI to a deployed address
type ContractInstance struct {
	Info ContractInfo
	ABI  *abi.ABI
}

// Method looks up a method by name
func (ci *ContractInstance) Method(name string) (abi.Method, error) {
	m, ok := ci.ABI.Methods[name]
	if !ok {
		return abi.Method{}, fmt.Errorf("%s has no method %q (see `contract methods %s`)", ci.Info.Name, name, ci.Info.Type)
	}
	return m, nil
}

// ContractRegistry caches parsed ABIs per type and the instances bound to them
type ContractRegistry struct {
	artifactsDir string

	mu        sync.Mutex
	abis      map[ContractType]*abi.ABI
	contracts map[ContractType]map[common.Address]*ContractInstance
	metadata  map[common.Address]ContractInfo
}

// NewContractRegistry creates a new contract registry reading artifacts from dir
func NewContractRegistry(artifactsDir string) *ContractRegistry {
	if artifactsDir == "" {
		artifactsDir = DefaultArtifactsDir
	}
	return &ContractRegistry{
		artifactsDir: artifactsDir,
		abis:         make(map[ContractType]*abi.ABI),
		contracts:    make(map[ContractType]map[common.Address]*ContractInstance),
		metadata:     make(map[common.Address]ContractInfo),
	}
}

// ArtifactsDir returns the directory ABIs are loaded from
func (cr *ContractRegistry) ArtifactsDir() string {
	return cr.artifactsDir
}

// ABI returns the parsed ABI for a type, loading and caching it on first use
func (cr *ContractRegistry) ABI(t ContractType) (*abi.ABI, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.abiLocked(t)
}

func (cr *ContractRegistry) abiLocked(t ContractType) (*abi.ABI, error) {
	if parsed, ok := cr.abis[t]; ok {
		return parsed, nil
	}
	var parsed abi.ABI
	var err error
	switch t {
	case ERC20Contract:
		parsed, err = GetERC20ABI()
	case ERC721Contract:
		parsed, err = GetERC721ABI()
	case HRCContract:
		parsed, err = GetHRCABI()
	default:
		var art *Artifact
		art, err = LoadArtifact(cr.artifactsDir, string(t))
		if err == nil {
			parsed = art.ABI
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load %s abi: %w", t, err)
	}
	cr.abis[t] = &parsed
	return &parsed, nil
}

// SetABI installs an ABI for a type without touching disk
func (cr *ContractRegistry) SetABI(t ContractType, parsed abi.ABI) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	cr.abis[t] = &parsed
}

// RegisterContract registers a contract with the registry
func (cr *ContractRegistry) RegisterContract(info ContractInfo) (*ContractInstance, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	parsed, err := cr.abiLocked(info.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to create contract instance for %s: %w", info.Name, err)
	}
	if info.Name == "" {
		info.Name = string(info.Type)
	}
	if cr.contracts[info.Type] == nil {
		cr.contracts[info.Type] = make(map[common.Address]*ContractInstance)
	}
	instance := &ContractInstance{Info: info, ABI: parsed}
	cr.contracts[info.Type][info.Address] = instance
	cr.metadata[info.Address] = info
	return instance, nil
}

// GetContract retrieves a contract instance by type and address
func (cr *ContractRegistry) GetContract(contractType ContractType, address common.Address) (*ContractInstance, error) {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.contracts[contractType] == nil {
		return nil, fmt.Errorf("no contracts of type %s registered", contractType)
	}
	instance, exists := cr.contracts[contractType][address]
	if !exists {
		return nil, fmt.Errorf("contract of type %s at address %s not found", contractType, address.Hex())
	}
	return instance, nil
}

// Lookup returns the metadata registered for an address
func (cr *ContractRegistry) Lookup(address common.Address) (ContractInfo, bool) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	info, ok := cr.metadata[address]
	return info, ok
}

// ListContracts returns all registered contracts of a type, sorted by name
func (cr *ContractRegistry) ListContracts(contractType ContractType) []ContractInfo {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	var contracts []ContractInfo
	for _, instance := range cr.contracts[contractType] {
		contracts = append(contracts, instance.Info)
	}
	sort.Slice(contracts, func(i, j int) bool { return contracts[i].Name < contracts[j].Name })
	return contracts
}

// RegistryBuilder helps build a registry with the deployed contract family
type RegistryBuilder struct {
	registry *ContractRegistry
	errs     []error
}

// NewRegistryBuilder creates a new registry builder
func NewRegistryBuilder(artifactsDir string) *RegistryBuilder {
	return &RegistryBuilder{registry: NewContractRegistry(artifactsDir)}
}

// Add registers a contract; a zero address is skipped so optional contracts
// can be passed straight from env lookups.
func (rb *RegistryBuilder) Add(t ContractType, address common.Address, contractID string) *RegistryBuilder {
	if address == (common.Address{}) {
		return rb
	}
	_, err := rb.registry.RegisterContract(ContractInfo{
		Name:        string(t),
		Type:        t,
		Address:     address,
		ContractID:  contractID,
		Description: fmt.Sprintf("%s contract %s", t, contractID),
	})
	if err != nil {
		rb.errs = append(rb.errs, err)
	}
	return rb
}

// Build returns the constructed registry along with any registration errors
func (rb *RegistryBuilder) Build() (*ContractRegistry, error) {
	if len(rb.errs) > 0 {
		msgs := make([]string, 0, len(rb.errs))
		for _, err := range rb.errs {
			msgs = append(msgs, err.Error())
		}
		return rb.registry, fmt.Errorf("registry: %s", strings.Join(msgs, "; "))
	}
	return rb.registry, nil
}
