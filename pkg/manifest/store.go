package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/lazysuperheroes/mission-cli/pkg/hedera"
)

// ErrManifestNotFound is returned by Load when deployments/<network>.json is absent
var ErrManifestNotFound = errors.New("deployment manifest not found")

// Store reads and writes one manifest per network under a directory.
// Every write replaces the whole file.
type Store struct {
	dir       string
	updatedBy string
	now       func() time.Time
}

// NewStore returns a store rooted at dir. updatedBy is stamped into
// metadata.updatedBy on save when non-empty.
func NewStore(dir, updatedBy string) *Store {
	if dir == "" {
		dir = "deployments"
	}
	return &Store{dir: dir, updatedBy: updatedBy, now: time.Now}
}

// Dir returns the manifest directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file backing a network
func (s *Store) Path(network string) string {
	return filepath.Join(s.dir, strings.ToLower(network)+".json")
}

// Networks lists the networks that have a manifest
func (s *Store) Networks() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			out = append(out, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return out, nil
}

// New returns an empty manifest for a network
func New(network string) *Manifest {
	m := &Manifest{
		Network:  strings.ToLower(network),
		Version:  CurrentVersion,
		Missions: &Missions{},
		Metadata: &Metadata{},
	}
	if n, err := hedera.ParseNetwork(network); err == nil {
		m.Network = n.String()
		m.ChainID = n.ChainID()
	}
	m.normalize()
	return m
}

// Load reads a network's manifest
func (s *Store) Load(network string) (*Manifest, error) {
	path := s.Path(network)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, name := range m.ContractNames() {
		if m.Contracts[name] == nil {
			return nil, fmt.Errorf("parse %s: contracts.%s is null", path, name)
		}
	}
	m.normalize()
	return &m, nil
}

// LoadOrInit reads a manifest, or returns a fresh one when none exists
func (s *Store) LoadOrInit(network string) (*Manifest, error) {
	m, err := s.Load(network)
	if errors.Is(err, ErrManifestNotFound) {
		return New(network), nil
	}
	return m, err
}

// Save stamps metadata.lastUpdated and atomically replaces the file
func (s *Store) Save(network string, m *Manifest) error {
	m.normalize()
	if m.Metadata == nil {
		m.Metadata = &Metadata{}
	}
	m.Metadata.LastUpdated = s.now().UTC().Format(time.RFC3339)
	if s.updatedBy != "" {
		m.Metadata.UpdatedBy = s.updatedBy
	}

	data, err := jsonIndent(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	return writeFile(s.Path(network), data, 0o644)
}

// writeFile writes bytes via a temp file, then atomically replaces the target
func writeFile(path string, b []byte, mode os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// update loads (or initialises) a manifest, applies fn and saves it
func (s *Store) update(network string, fn func(*Manifest) error) (*Manifest, error) {
	m, err := s.LoadOrInit(network)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if err := s.Save(network, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateContract merges the non-empty fields of info into the named entry.
// A missing evmAddress is derived from the contract id.
func (s *Store) UpdateContract(network, name string, info ContractEntry) (*ContractEntry, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("contract name is required")
	}
	var out *ContractEntry
	_, err := s.update(network, func(m *Manifest) error {
		entry, ok := m.Contracts[name]
		if !ok {
			entry = &ContractEntry{}
			m.Contracts[name] = entry
		}
		mergeContract(entry, info)
		if entry.EVMAddress == "" && entry.ContractID != "" {
			if id, err := hedera.ParseEntityID(entry.ContractID); err == nil {
				entry.EVMAddress = id.ToEVMAddress().Hex()
			}
		}
		out = entry
		return nil
	})
	return out, err
}

func mergeContract(dst *ContractEntry, src ContractEntry) {
	if src.ContractID != "" {
		dst.ContractID = src.ContractID
	}
	if src.EVMAddress != "" {
		dst.EVMAddress = src.EVMAddress
	}
	if src.SourcePath != "" {
		dst.SourcePath = src.SourcePath
	}
	if src.Dependencies != nil {
		dst.Dependencies = src.Dependencies
	}
	if src.KnownIssues != nil {
		dst.KnownIssues = src.KnownIssues
	}
	if src.DeployedAt != "" {
		dst.DeployedAt = src.DeployedAt
	}
	if src.Version != "" {
		dst.Version = src.Version
	}
}

// GetContract returns a copy of the named entry
func (s *Store) GetContract(network, name string) (*ContractEntry, error) {
	m, err := s.Load(network)
	if err != nil {
		return nil, err
	}
	entry, ok := m.Contracts[name]
	if !ok {
		return nil, fmt.Errorf("contract %q not in %s manifest", name, network)
	}
	c := *entry
	return &c, nil
}

// GetContractAddress returns the contract id and EVM address of an entry
func (s *Store) GetContractAddress(network, name string) (contractID, evmAddress string, err error) {
	entry, err := s.GetContract(network, name)
	if err != nil {
		return "", "", err
	}
	return entry.ContractID, entry.EVMAddress, nil
}

// RemoveContract deletes an entry; removing a missing one is an error
func (s *Store) RemoveContract(network, name string) error {
	_, err := s.update(network, func(m *Manifest) error {
		if _, ok := m.Contracts[name]; !ok {
			return fmt.Errorf("contract %q not in %s manifest", name, network)
		}
		delete(m.Contracts, name)
		return nil
	})
	return err
}

// ListContracts returns the contract names of a network, sorted
func (s *Store) ListContracts(network string) ([]string, error) {
	m, err := s.Load(network)
	if err != nil {
		return nil, err
	}
	return m.ContractNames(), nil
}

// AddRole grants a role to an account. Adding an existing member is a no-op.
func (s *Store) AddRole(network, role, account string) error {
	if _, err := hedera.ParseEntityID(account); err != nil {
		return fmt.Errorf("role member: %w", err)
	}
	_, err := s.update(network, func(m *Manifest) error {
		members := m.Roles.list(role)
		if members == nil {
			return unknownRole(role)
		}
		if !slices.Contains(*members, account) {
			*members = append(*members, account)
		}
		return nil
	})
	return err
}

// RemoveRole revokes a role. Removing an absent member is a no-op.
func (s *Store) RemoveRole(network, role, account string) error {
	_, err := s.update(network, func(m *Manifest) error {
		members := m.Roles.list(role)
		if members == nil {
			return unknownRole(role)
		}
		*members = slices.DeleteFunc(*members, func(a string) bool { return a == account })
		return nil
	})
	return err
}

func unknownRole(role string) error {
	return fmt.Errorf("unknown role %q, expected one of %s", role, strings.Join(RoleNames, ", "))
}

// AddStakingCollection adds a collection, replacing one with the same token id
func (s *Store) AddStakingCollection(network string, c StakingCollection) error {
	id, err := hedera.ParseEntityID(c.TokenID)
	if err != nil {
		return fmt.Errorf("collection token: %w", err)
	}
	if c.EVMAddress == "" {
		c.EVMAddress = id.ToEVMAddress().Hex()
	}
	_, err = s.update(network, func(m *Manifest) error {
		for i := range m.StakingCollections {
			if m.StakingCollections[i].TokenID == c.TokenID {
				m.StakingCollections[i] = c
				return nil
			}
		}
		m.StakingCollections = append(m.StakingCollections, c)
		return nil
	})
	return err
}

// RemoveStakingCollection drops a collection by token id
func (s *Store) RemoveStakingCollection(network, tokenID string) error {
	_, err := s.update(network, func(m *Manifest) error {
		before := len(m.StakingCollections)
		m.StakingCollections = slices.DeleteFunc(m.StakingCollections, func(c StakingCollection) bool {
			return c.TokenID == tokenID
		})
		if len(m.StakingCollections) == before {
			return fmt.Errorf("collection %s not in %s manifest", tokenID, network)
		}
		return nil
	})
	return err
}

// AddMissionExample records a mission, replacing one with the same contract id
func (s *Store) AddMissionExample(network string, ex MissionExample) error {
	id, err := hedera.ParseEntityID(ex.ContractID)
	if err != nil {
		return fmt.Errorf("mission: %w", err)
	}
	if ex.EVMAddress == "" {
		ex.EVMAddress = id.ToEVMAddress().Hex()
	}
	_, err = s.update(network, func(m *Manifest) error {
		if m.Missions == nil {
			m.Missions = &Missions{}
		}
		for i := range m.Missions.Examples {
			if m.Missions.Examples[i].ContractID == ex.ContractID {
				m.Missions.Examples[i] = ex
				return nil
			}
		}
		m.Missions.Examples = append(m.Missions.Examples, ex)
		return nil
	})
	return err
}

// AddKnownIssue appends an issue note to a contract entry
func (s *Store) AddKnownIssue(network, contract, issue string) error {
	if strings.TrimSpace(issue) == "" {
		return errors.New("issue text is required")
	}
	_, err := s.update(network, func(m *Manifest) error {
		entry, ok := m.Contracts[contract]
		if !ok {
			return fmt.Errorf("contract %q not in %s manifest", contract, network)
		}
		if !slices.Contains(entry.KnownIssues, issue) {
			entry.KnownIssues = append(entry.KnownIssues, issue)
		}
		return nil
	})
	return err
}

// UpgradeFile upgrades a stored manifest in place. It reports whether
// anything changed.
func (s *Store) UpgradeFile(network string) (bool, error) {
	m, err := s.Load(network)
	if err != nil {
		return false, err
	}
	if !Upgrade(m) {
		return false, nil
	}
	return true, s.Save(network, m)
}
