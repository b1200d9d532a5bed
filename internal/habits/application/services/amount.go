package services

import (
	"math/big"
	"strings"
)

// EtherDecimals is the number of decimals of the reward asset.
const EtherDecimals = 18

// FormatUnits renders an atomic amount as a decimal string with trailing
// zeros trimmed, e.g. 55000000000000000 at 18 decimals is "0.055".
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0"
	}
	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)

	digits := abs.String()
	if decimals > 0 {
		if len(digits) <= decimals {
			digits = strings.Repeat("0", decimals-len(digits)+1) + digits
		}
		whole := digits[:len(digits)-decimals]
		frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
		digits = whole
		if frac != "" {
			digits += "." + frac
		}
	}
	if neg {
		return "-" + digits
	}
	return digits
}

// FormatEther renders wei as ether.
func FormatEther(v *big.Int) string {
	return FormatUnits(v, EtherDecimals)
}
