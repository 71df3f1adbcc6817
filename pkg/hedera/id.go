package hedera

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EntityID is a shard.realm.num identifier for accounts, tokens and contracts
type EntityID struct {
	Shard uint64
	Realm uint64
	Num   uint64
}

// ParseEntityID parses "0.0.123"
func ParseEntityID(s string) (EntityID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return EntityID{}, fmt.Errorf("invalid entity id %q: expected shard.realm.num", s)
	}
	var vals [3]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return EntityID{}, fmt.Errorf("invalid entity id %q: %w", s, err)
		}
		vals[i] = v
	}
	if vals[0] > 0xffffffff {
		return EntityID{}, fmt.Errorf("invalid entity id %q: shard out of range", s)
	}
	return EntityID{Shard: vals[0], Realm: vals[1], Num: vals[2]}, nil
}

// IsEntityID reports whether s looks like shard.realm.num
func IsEntityID(s string) bool {
	_, err := ParseEntityID(s)
	return err == nil
}

func (id EntityID) String() string {
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

// ToEVMAddress returns the long-zero EVM address: 4 bytes shard, 8 bytes
// realm, 8 bytes num, all big-endian.
func (id EntityID) ToEVMAddress() common.Address {
	var addr common.Address
	binary.BigEndian.PutUint32(addr[0:4], uint32(id.Shard))
	binary.BigEndian.PutUint64(addr[4:12], id.Realm)
	binary.BigEndian.PutUint64(addr[12:20], id.Num)
	return addr
}

// IsLongZero reports whether addr encodes an entity id rather than an ECDSA alias
func IsLongZero(addr common.Address) bool {
	for _, b := range addr[0:12] {
		if b != 0 {
			return false
		}
	}
	return true
}

// EntityIDFromEVMAddress recovers the entity id from a long-zero address.
// ECDSA alias addresses need a mirror lookup instead.
func EntityIDFromEVMAddress(addr common.Address) (EntityID, error) {
	if !IsLongZero(addr) {
		return EntityID{}, fmt.Errorf("address %s is not a long-zero address", addr.Hex())
	}
	return EntityID{
		Shard: uint64(binary.BigEndian.Uint32(addr[0:4])),
		Realm: binary.BigEndian.Uint64(addr[4:12]),
		Num:   binary.BigEndian.Uint64(addr[12:20]),
	}, nil
}

// ResolveAddress accepts either an entity id or a 0x-prefixed hex address
func ResolveAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return common.Address{}, fmt.Errorf("empty address")
	}
	if id, err := ParseEntityID(s); err == nil {
		return id.ToEVMAddress(), nil
	}
	hex := s
	if !strings.HasPrefix(hex, "0x") && !strings.HasPrefix(hex, "0X") {
		hex = "0x" + hex
	}
	if !common.IsHexAddress(hex) {
		return common.Address{}, fmt.Errorf("invalid address %q: expected 0.0.N or 0x-prefixed hex", s)
	}
	return common.HexToAddress(hex), nil
}

// DisplayAddress renders an address as "0.0.N (0x...)" when it is long-zero
func DisplayAddress(addr common.Address) string {
	if id, err := EntityIDFromEVMAddress(addr); err == nil && addr != (common.Address{}) {
		return fmt.Sprintf("%s (%s)", id, addr.Hex())
	}
	return addr.Hex()
}
