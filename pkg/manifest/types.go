package manifest

import (
	"encoding/json"
	"sort"
)

// CurrentVersion is written by Upgrade and LoadOrInit
const CurrentVersion = "1.1.0"

// Manifest is deployments/<network>.json
type Manifest struct {
	Network            string                    `json:"network"`
	ChainID            int64                     `json:"chainId"`
	Version            string                    `json:"version"`
	Deployer           string                    `json:"deployer,omitempty"`
	Description        string                    `json:"description,omitempty"`
	Contracts          map[string]*ContractEntry `json:"contracts"`
	Roles              Roles                     `json:"roles"`
	StakingCollections []StakingCollection       `json:"stakingCollections"`
	Missions           *Missions                 `json:"missions,omitempty"`
	Metadata           *Metadata                 `json:"metadata,omitempty"`
}

// ContractEntry is one deployed contract
type ContractEntry struct {
	ContractID   string   `json:"contractId"`
	EVMAddress   string   `json:"evmAddress,omitempty"`
	SourcePath   string   `json:"sourcePath,omitempty"`
	Dependencies []string `json:"dependencies"`
	KnownIssues  []string `json:"knownIssues"`
	DeployedAt   string   `json:"deployedAt,omitempty"`
	Version      string   `json:"version,omitempty"`
}

// Roles holds account ids per administrative role
type Roles struct {
	FactoryAdmins    []string `json:"factoryAdmins"`
	FactoryDeployers []string `json:"factoryDeployers"`
	StakingAdmins    []string `json:"stakingAdmins"`
}

// Role names accepted by AddRole and RemoveRole
const (
	RoleFactoryAdmins    = "factoryAdmins"
	RoleFactoryDeployers = "factoryDeployers"
	RoleStakingAdmins    = "stakingAdmins"
)

// RoleNames lists the valid role names
var RoleNames = []string{RoleFactoryAdmins, RoleFactoryDeployers, RoleStakingAdmins}

func (r *Roles) list(role string) *[]string {
	switch role {
	case RoleFactoryAdmins:
		return &r.FactoryAdmins
	case RoleFactoryDeployers:
		return &r.FactoryDeployers
	case RoleStakingAdmins:
		return &r.StakingAdmins
	}
	return nil
}

// StakingCollection is an NFT collection accepted by LazyNFTStaking
type StakingCollection struct {
	TokenID       string `json:"tokenId"`
	EVMAddress    string `json:"evmAddress,omitempty"`
	Name          string `json:"name,omitempty"`
	MaxRewardRate *int64 `json:"maxRewardRate,omitempty"`
}

type Missions struct {
	Examples []MissionExample `json:"examples"`
}

// MissionExample is a reference mission deployed from the factory
type MissionExample struct {
	ContractID  string `json:"contractId"`
	EVMAddress  string `json:"evmAddress,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Metadata keeps keys it does not know about across a load/save round trip
type Metadata struct {
	LastUpdated string
	UpdatedBy   string
	Notes       string
	Extra       map[string]json.RawMessage
}

var metadataKeys = map[string]bool{"lastUpdated": true, "updatedBy": true, "notes": true}

func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+3)
	for k, v := range m.Extra {
		out[k] = v
	}
	out["lastUpdated"] = m.LastUpdated
	if m.UpdatedBy != "" {
		out["updatedBy"] = m.UpdatedBy
	}
	if m.Notes != "" {
		out["notes"] = m.Notes
	}
	return json.Marshal(out)
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Metadata{}
	for k, v := range raw {
		var err error
		switch k {
		case "lastUpdated":
			err = json.Unmarshal(v, &m.LastUpdated)
		case "updatedBy":
			err = json.Unmarshal(v, &m.UpdatedBy)
		case "notes":
			err = json.Unmarshal(v, &m.Notes)
		default:
			if m.Extra == nil {
				m.Extra = make(map[string]json.RawMessage)
			}
			m.Extra[k] = v
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ContractNames returns the contract names in sorted order
func (m *Manifest) ContractNames() []string {
	names := make([]string, 0, len(m.Contracts))
	for name := range m.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalize fills nil collections so the file always has every section
func (m *Manifest) normalize() {
	if m.Contracts == nil {
		m.Contracts = make(map[string]*ContractEntry)
	}
	for _, c := range m.Contracts {
		if c == nil {
			continue
		}
		if c.Dependencies == nil {
			c.Dependencies = []string{}
		}
		if c.KnownIssues == nil {
			c.KnownIssues = []string{}
		}
	}
	for _, role := range RoleNames {
		if l := m.Roles.list(role); *l == nil {
			*l = []string{}
		}
	}
	if m.StakingCollections == nil {
		m.StakingCollections = []StakingCollection{}
	}
	if m.Missions != nil && m.Missions.Examples == nil {
		m.Missions.Examples = []MissionExample{}
	}
}

func jsonIndent(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
