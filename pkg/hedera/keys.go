package hedera

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// DER PKCS#8 prefix of a raw secp256k1 private key as exported by the portal
	ecdsaDERPrefix = "3030020100300706052b8104000a04220420"
	// DER PKCS#8 prefix of an ED25519 private key
	ed25519DERPrefix = "302e020100300506032b657004220420"
)

// ErrED25519Key is returned for ED25519 keys, which cannot sign EVM transactions
var ErrED25519Key = errors.New("ED25519 keys cannot sign EVM transactions; use an ECDSA (secp256k1) operator key")

// ParsePrivateKey accepts a 32-byte hex key (with or without 0x) or a DER
// encoded secp256k1 key.
func ParsePrivateKey(s string) (*ecdsa.PrivateKey, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, "0x")
	if raw == "" {
		return nil, fmt.Errorf("private key is empty")
	}

	switch {
	case strings.HasPrefix(raw, ed25519DERPrefix):
		return nil, ErrED25519Key
	case strings.HasPrefix(raw, ecdsaDERPrefix):
		raw = strings.TrimPrefix(raw, ecdsaDERPrefix)
	}

	if len(raw) != 64 {
		return nil, fmt.Errorf("invalid private key: expected 32 bytes of hex, got %d characters", len(raw))
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	key, err := crypto.HexToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// AliasAddress returns the ECDSA alias EVM address of a key
func AliasAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}
