package hedera

import (
	"fmt"
	"math/big"
	"strings"
)

const (
	// TinybarsPerHbar is the number of tinybars in one HBAR
	TinybarsPerHbar = 100_000_000
	// WeibarsPerTinybar converts between the native unit and the 18 decimal
	// unit the JSON-RPC relay expects for tx values
	WeibarsPerTinybar = 10_000_000_000
)

// TinybarToWeibar scales a tinybar amount for the relay
func TinybarToWeibar(tinybar *big.Int) *big.Int {
	if tinybar == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(tinybar, big.NewInt(WeibarsPerTinybar))
}

// WeibarToTinybar truncates a relay amount to tinybars
func WeibarToTinybar(weibar *big.Int) *big.Int {
	if weibar == nil {
		return new(big.Int)
	}
	return new(big.Int).Quo(weibar, big.NewInt(WeibarsPerTinybar))
}

// ParseHbar parses amounts like "5", "1.5", "1.5hbar" or "150tinybar" into tinybars
func ParseHbar(s string) (*big.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("amount string is empty")
	}
	if strings.HasSuffix(s, "tinybar") || strings.HasSuffix(s, "t") {
		num := strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "tinybar"), "t"))
		v, ok := new(big.Int).SetString(num, 10)
		if !ok || v.Sign() < 0 {
			return nil, fmt.Errorf("invalid tinybar amount %q", s)
		}
		return v, nil
	}
	num := strings.TrimSpace(strings.TrimSuffix(s, "hbar"))
	return ParseDecimal(num, 8)
}

// ParseDecimal converts a decimal string into an integer amount with the given
// number of decimals. More fractional digits than decimals is an error.
func ParseDecimal(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount string is empty")
	}
	if strings.HasPrefix(s, "-") {
		return nil, fmt.Errorf("invalid amount %q: must not be negative", s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > decimals {
		return nil, fmt.Errorf("invalid amount %q: at most %d decimal places", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// FormatDecimal renders an integer amount with the given number of decimals
func FormatDecimal(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	neg := v.Sign() < 0
	s := new(big.Int).Abs(v).String()
	if decimals > 0 {
		if len(s) <= decimals {
			s = strings.Repeat("0", decimals-len(s)+1) + s
		}
		whole, frac := s[:len(s)-decimals], strings.TrimRight(s[len(s)-decimals:], "0")
		s = whole
		if frac != "" {
			s += "." + frac
		}
	}
	if neg {
		s = "-" + s
	}
	return s
}

// FormatHbar renders tinybars as HBAR with the ℏ suffix
func FormatHbar(tinybar *big.Int) string {
	return FormatDecimal(tinybar, 8) + " ℏ"
}
