package common

import "time"

// Project structure constants
const (
	// ProjectConfigFile is the versioned project config at the repo root
	ProjectConfigFile = "mission.yaml"

	// GlobalConfigFile is the name of the global YAML used to store global config details (eg, user_id)
	GlobalConfigFile = "config.yaml"

	// GlobalConfigDirName is the directory under XDG_CONFIG_HOME holding GlobalConfigFile
	GlobalConfigDirName = "mission-cli"

	// EnvFile holds operator credentials and contract ids
	EnvFile = ".env"

	// DefaultDeploymentsDir holds one manifest per network
	DefaultDeploymentsDir = "deployments"

	// DefaultArtifactsDir is where hardhat writes compiled contracts
	DefaultArtifactsDir = "artifacts"
)

// Transaction constants
const (
	// MinGasLimit is the floor applied to mirror gas estimates
	MinGasLimit = 100_000

	// GasHeadroomPercent scales mirror gas estimates
	GasHeadroomPercent = 120

	// MaxGasLimit is the per-transaction ceiling on Hedera
	MaxGasLimit = 15_000_000

	// ReceiptTimeout bounds how long Execute waits for a receipt
	ReceiptTimeout = 2 * time.Minute

	// ReceiptPollInterval is the first delay between receipt polls
	ReceiptPollInterval = 500 * time.Millisecond

	// ReceiptPollMaxInterval caps the exponential poll delay
	ReceiptPollMaxInterval = 5 * time.Second
)
