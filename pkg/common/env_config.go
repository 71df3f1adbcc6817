package common

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lazysuperheroes/mission-cli/pkg/common/contracts"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
)

// Environment variable names read from .env
const (
	EnvPrivateKey             = "PRIVATE_KEY"
	EnvAccountID              = "ACCOUNT_ID"
	EnvEnvironment            = "ENVIRONMENT"
	EnvLazyTokenID            = "LAZY_TOKEN_ID"
	EnvLazyGasStation         = "LAZY_GAS_STATION_CONTRACT_ID"
	EnvLazyBurnPercent        = "LAZY_BURN_PERCENT"
	EnvLazyDecimals           = "LAZY_DECIMALS"
	EnvMissionFactory         = "MISSION_FACTORY_CONTRACT_ID"
	EnvMission                = "MISSION_CONTRACT_ID"
	EnvBoostManager           = "BOOST_MANAGER_CONTRACT_ID"
	EnvLazyNFTStaking         = "LAZY_NFT_STAKING_CONTRACT_ID"
	EnvLazyDelegateRegistry   = "LAZY_DELEGATE_REGISTRY_CONTRACT_ID"
	EnvDirectusURL            = "DIRECTUS_URL"
	EnvDirectusToken          = "DIRECTUS_TOKEN"
	EnvMirrorURL              = "MIRROR_NODE_URL"
	EnvRelayURL               = "JSON_RPC_RELAY_URL"
	DefaultLazyDecimals       = 1
	DefaultLazyBurnPercentage = 25
)

// ErrMissingCredentials is returned when a command needs to sign but the
// operator key or account id is not configured
var ErrMissingCredentials = errors.New("missing operator credentials: set PRIVATE_KEY and ACCOUNT_ID in .env")

// contractEnv maps contract types to the env var holding their id
var contractEnv = map[contracts.ContractType]string{
	contracts.MissionContract:              EnvMission,
	contracts.MissionFactoryContract:       EnvMissionFactory,
	contracts.BoostManagerContract:         EnvBoostManager,
	contracts.LazyNFTStakingContract:       EnvLazyNFTStaking,
	contracts.LazyGasStationContract:       EnvLazyGasStation,
	contracts.LazyDelegateRegistryContract: EnvLazyDelegateRegistry,
}

// ContractEnvVar returns the env var name for a contract type, if any
func ContractEnvVar(t contracts.ContractType) (string, bool) {
	name, ok := contractEnv[t]
	return name, ok
}

// Operator is the account that signs transactions
type Operator struct {
	AccountID  hedera.EntityID
	PrivateKey *ecdsa.PrivateKey
}

// EVMAddress returns the address the relay attributes transactions to.
// ECDSA accounts sign as their alias address.
func (o *Operator) EVMAddress() common.Address {
	return hedera.AliasAddress(o.PrivateKey)
}

// NetworkFromEnv resolves the network from an explicit override, ENVIRONMENT,
// or the default_network of the global config, in that order
func NetworkFromEnv(override string) (hedera.Network, error) {
	value := strings.TrimSpace(override)
	if value == "" {
		value = strings.TrimSpace(os.Getenv(EnvEnvironment))
	}
	if value == "" {
		if cfg, err := LoadGlobalConfig(); err == nil {
			value = cfg.DefaultNetwork
		}
	}
	if value == "" {
		return "", fmt.Errorf("network not set: pass --network or set %s to TEST, MAIN, PREVIEW or LOCAL", EnvEnvironment)
	}
	return hedera.ParseNetwork(value)
}

// OperatorFromEnv loads PRIVATE_KEY and ACCOUNT_ID
func OperatorFromEnv() (*Operator, error) {
	rawKey := strings.TrimSpace(os.Getenv(EnvPrivateKey))
	rawAccount := strings.TrimSpace(os.Getenv(EnvAccountID))
	if rawKey == "" || rawAccount == "" {
		return nil, ErrMissingCredentials
	}

	account, err := hedera.ParseEntityID(rawAccount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvAccountID, err)
	}
	key, err := hedera.ParsePrivateKey(rawKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvPrivateKey, err)
	}
	return &Operator{AccountID: account, PrivateKey: key}, nil
}

// AccountIDFromEnv returns ACCOUNT_ID without requiring a key
func AccountIDFromEnv() (hedera.EntityID, bool) {
	id, err := hedera.ParseEntityID(os.Getenv(EnvAccountID))
	return id, err == nil
}

// LazyDecimals returns LAZY_DECIMALS, defaulting to 1
func LazyDecimals() int {
	return envInt(EnvLazyDecimals, DefaultLazyDecimals)
}

// LazyBurnPercent returns LAZY_BURN_PERCENT, defaulting to 25
func LazyBurnPercent() int {
	return envInt(EnvLazyBurnPercent, DefaultLazyBurnPercentage)
}

func envInt(name string, def int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
