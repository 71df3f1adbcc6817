package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// DefaultArtifactsDir is where hardhat writes compiled contracts
const DefaultArtifactsDir = "artifacts"

// Artifact is the subset of a hardhat build artifact the CLI needs
type Artifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	RawABI       json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`

	ABI  abi.ABI `json:"-"`
	Path string  `json:"-"`
}

// ArtifactPath returns the conventional artifact location of a contract
func ArtifactPath(dir, name string) string {
	return filepath.Join(dir, "contracts", name+".sol", name+".json")
}

// LoadArtifact reads artifacts/contracts/<Name>.sol/<Name>.json, falling
// back to the first <Name>.json found anywhere under dir.
func LoadArtifact(dir, name string) (*Artifact, error) {
	if dir == "" {
		dir = DefaultArtifactsDir
	}
	path := ArtifactPath(dir, name)
	if _, err := os.Stat(path); err != nil {
		found, ferr := findArtifact(dir, name)
		if ferr != nil {
			return nil, ferr
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if len(art.RawABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no abi", path)
	}
	parsed, err := abi.JSON(bytes.NewReader(art.RawABI))
	if err != nil {
		return nil, fmt.Errorf("parse abi in %s: %w", path, err)
	}
	art.ABI = parsed
	art.Path = path
	if art.ContractName == "" {
		art.ContractName = name
	}
	return &art, nil
}

var errFound = errors.New("found")

func findArtifact(dir, name string) (string, error) {
	target := name + ".json"
	var match string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == "build-info" {
			return filepath.SkipDir
		}
		if !d.IsDir() && d.Name() == target {
			match = path
			return errFound
		}
		return nil
	})
	if match != "" {
		return match, nil
	}
	if err != nil && !errors.Is(err, errFound) {
		return "", fmt.Errorf("artifact for %s not found under %s: %w", name, dir, err)
	}
	return "", fmt.Errorf("artifact for %s not found under %s (run `npx hardhat compile`)", name, dir)
}
