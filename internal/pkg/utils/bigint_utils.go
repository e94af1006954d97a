package utils

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatBigInt renders amount as a decimal string scaled down by 10^decimals,
// trimming trailing zeros. Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) (string, error) {
	if amount == nil {
		return "0", nil
	}
	if decimals == 0 {
		return amount.String(), nil
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	quo, rem := new(big.Int).QuoRem(new(big.Int).Abs(amount), divisor, new(big.Int))

	frac := rem.String()
	if len(frac) > int(decimals) {
		return "", fmt.Errorf("fraction %s longer than %d decimals", frac, decimals)
	}
	frac = strings.Repeat("0", int(decimals)-len(frac)) + frac
	frac = strings.TrimRight(frac, "0")

	out := quo.String()
	if frac != "" {
		out += "." + frac
	}
	if amount.Sign() < 0 {
		out = "-" + out
	}
	return out, nil
}

// ParseDecimal converts a human readable decimal ("0.5") into base units for the given decimals.
func ParseDecimal(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(value, ".")
	if hasFrac && len(frac) > int(decimals) {
		return nil, fmt.Errorf("amount %q has more than %d decimal places", value, decimals)
	}
	if whole == "" {
		whole = "0"
	}
	digits := whole + frac + strings.Repeat("0", int(decimals)-len(frac))
	out, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if out.Sign() < 0 {
		return nil, fmt.Errorf("negative amount %q", value)
	}
	return out, nil
}
