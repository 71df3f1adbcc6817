package manifest

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
	"sigs.k8s.io/yaml"
)

// Validate returns every problem found in m, empty when m is consistent
func Validate(m *Manifest) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if _, err := hedera.ParseNetwork(m.Network); err != nil {
		add("network: %v", err)
	}
	for _, name := range m.ContractNames() {
		c := m.Contracts[name]
		if c == nil {
			add("contracts.%s: entry is null", name)
			continue
		}
		id, idErr := hedera.ParseEntityID(c.ContractID)
		if idErr != nil {
			add("contracts.%s.contractId: %q is not a shard.realm.num id", name, c.ContractID)
		}
		if c.EVMAddress != "" {
			if !common.IsHexAddress(c.EVMAddress) {
				add("contracts.%s.evmAddress: %q is not an EVM address", name, c.EVMAddress)
			} else if addr := common.HexToAddress(c.EVMAddress); idErr == nil && hedera.IsLongZero(addr) && addr != id.ToEVMAddress() {
				add("contracts.%s: evmAddress %s does not match contractId %s", name, c.EVMAddress, c.ContractID)
			}
		}
		for _, dep := range c.Dependencies {
			if _, ok := m.Contracts[dep]; !ok {
				add("contracts.%s.dependencies: unknown contract %q", name, dep)
			}
		}
	}
	for _, role := range RoleNames {
		for _, account := range *m.Roles.list(role) {
			if _, err := hedera.ParseEntityID(account); err != nil {
				add("roles.%s: %q is not an account id", role, account)
			}
		}
	}
	for i, c := range m.StakingCollections {
		if _, err := hedera.ParseEntityID(c.TokenID); err != nil {
			add("stakingCollections[%d].tokenId: %q is not a token id", i, c.TokenID)
		}
	}
	if m.Missions != nil {
		for i, ex := range m.Missions.Examples {
			if _, err := hedera.ParseEntityID(ex.ContractID); err != nil {
				add("missions.examples[%d].contractId: %q is not a contract id", i, ex.ContractID)
			}
		}
	}
	return problems
}

// Upgrade brings a manifest to CurrentVersion, adding the missions and
// metadata sections that 1.0.0 files lack. It reports whether m changed.
func Upgrade(m *Manifest) bool {
	changed := false
	if m.Missions == nil {
		m.Missions = &Missions{Examples: []MissionExample{}}
		changed = true
	}
	if m.Metadata == nil {
		m.Metadata = &Metadata{}
		changed = true
	}
	if m.Version != CurrentVersion {
		m.Version = CurrentVersion
		changed = true
	}
	return changed
}

// Export renders a manifest as json or yaml
func Export(m *Manifest, format string) ([]byte, error) {
	m.normalize()
	data, err := jsonIndent(m)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "json":
		return data, nil
	case "yaml", "yml":
		return yaml.JSONToYAML(data)
	}
	return nil, fmt.Errorf("unsupported export format %q (json or yaml)", format)
}
