package hedera

import (
	"fmt"
	"strings"
)

// Network identifies a Hedera network the CLI can talk to
type Network string

const (
	Testnet    Network = "testnet"
	Mainnet    Network = "mainnet"
	Previewnet Network = "previewnet"
	Local      Network = "local"
)

// Networks lists every supported network in display order
var Networks = []Network{Testnet, Mainnet, Previewnet, Local}

// Info carries the endpoints and chain id of a network
type Info struct {
	Name      Network
	ChainID   int64
	MirrorURL string
	RelayURL  string
}

var networkInfo = map[Network]Info{
	Testnet: {
		Name:      Testnet,
		ChainID:   296,
		MirrorURL: "https://testnet.mirrornode.hedera.com",
		RelayURL:  "https://testnet.hashio.io/api",
	},
	Mainnet: {
		Name:      Mainnet,
		ChainID:   295,
		MirrorURL: "https://mainnet-public.mirrornode.hedera.com",
		RelayURL:  "https://mainnet.hashio.io/api",
	},
	Previewnet: {
		Name:      Previewnet,
		ChainID:   297,
		MirrorURL: "https://previewnet.mirrornode.hedera.com",
		RelayURL:  "https://previewnet.hashio.io/api",
	},
	Local: {
		Name:      Local,
		ChainID:   298,
		MirrorURL: "http://localhost:5551",
		RelayURL:  "http://localhost:7546",
	},
}

// ParseNetwork accepts the ENVIRONMENT forms (TEST, MAIN, PREVIEW, LOCAL)
// as well as the manifest names, case-insensitively.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "test", "testnet":
		return Testnet, nil
	case "main", "mainnet":
		return Mainnet, nil
	case "preview", "previewnet":
		return Previewnet, nil
	case "local", "localnet", "localhost":
		return Local, nil
	}
	return "", fmt.Errorf("unknown network %q: expected one of TEST, MAIN, PREVIEW, LOCAL", s)
}

// String returns the manifest name of the network
func (n Network) String() string {
	return string(n)
}

// Info returns endpoints for the network; unknown values fall back to testnet
func (n Network) Info() Info {
	if info, ok := networkInfo[n]; ok {
		return info
	}
	return networkInfo[Testnet]
}

// ChainID returns the EVM chain id used when signing for this network
func (n Network) ChainID() int64 {
	return n.Info().ChainID
}

// EnvName returns the ENVIRONMENT value that selects this network
func (n Network) EnvName() string {
	switch n {
	case Mainnet:
		return "MAIN"
	case Previewnet:
		return "PREVIEW"
	case Local:
		return "LOCAL"
	default:
		return "TEST"
	}
}
