package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Input validation errors. These are raised before any network access.
var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidAddress = errors.New("invalid address")
)

// EtherDecimals is the decimal count of ETH and of most ERC-20 tokens.
const EtherDecimals = 18

// displayDecimals caps the fractional digits shown by FormatDisplay.
const displayDecimals = 4

// ParseUnits converts a plain decimal string ("1.5", "0.25", "42") into base
// units for a token with the given decimal count. Signs, exponents and
// separators are rejected. Trailing fractional zeros are ignored, so "1.5"
// and "1.500000000000000000" produce the same value.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("%w: negative decimals %d", ErrInvalidAmount, decimals)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if hasDot && whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !isDigits(whole) || !isDigits(frac) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	digits := strings.TrimLeft(whole+frac, "0")
	if digits == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return n, nil
}

// ParsePositiveUnits is ParseUnits that also rejects zero.
func ParsePositiveUnits(s string, decimals int) (*big.Int, error) {
	n, err := ParseUnits(s, decimals)
	if err != nil {
		return nil, err
	}
	if n.Sign() == 0 {
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalidAmount)
	}
	return n, nil
}

// ParseEther is ParsePositiveUnits with 18 decimals.
func ParseEther(s string) (*big.Int, error) {
	return ParsePositiveUnits(s, EtherDecimals)
}

// FormatUnits renders base units as an exact decimal string with trailing
// fractional zeros removed ("1500000000000000000", 18 → "1.5").
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)
	s := abs.String()
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

// FormatDisplay is FormatUnits truncated to four fractional digits.
func FormatDisplay(v *big.Int, decimals int) string {
	s := FormatUnits(v, decimals)
	whole, frac, ok := strings.Cut(s, ".")
	if !ok {
		return s
	}
	if len(frac) > displayDecimals {
		frac = strings.TrimRight(frac[:displayDecimals], "0")
	}
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

// FormatEther is FormatDisplay with 18 decimals.
func FormatEther(v *big.Int) string { return FormatDisplay(v, EtherDecimals) }

// ParseAddress validates a 0x-prefixed 20-byte hex address.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%w: %q must start with 0x", ErrInvalidAddress, s)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
