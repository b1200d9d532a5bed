// Package convert provides safe type conversion utilities.
package convert

import (
	"fmt"
	"math"
	"math/big"
)

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// BigToUint64 converts a ledger integer to uint64, returning an error if it
// is nil, negative, or overflows.
func BigToUint64(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("cannot convert nil integer to uint64")
	}
	if v.Sign() < 0 {
		return 0, fmt.Errorf("cannot convert negative integer to uint64: %s", v)
	}
	if v.Cmp(maxUint64) > 0 {
		return 0, fmt.Errorf("integer overflow: %s cannot be converted to uint64", v)
	}
	return v.Uint64(), nil
}

// BigToUint64Clamped converts a ledger integer to uint64, mapping nil and
// negative values to 0 and clamping overflow to MaxUint64.
// Use this when truncation is acceptable behavior (e.g., day numbers, streaks).
func BigToUint64Clamped(v *big.Int) uint64 {
	if v == nil || v.Sign() < 0 {
		return 0
	}
	if v.Cmp(maxUint64) > 0 {
		return math.MaxUint64
	}
	return v.Uint64()
}

// Uint64ToInt64Clamped converts a uint64 to int64, clamping to MaxInt64.
func Uint64ToInt64Clamped(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

// IntToUint32Clamped converts an int to uint32, clamping to min/max bounds if overflow.
func IntToUint32Clamped(v int) uint32 {
	if v < 0 {
		return 0
	}
	if uint64(v) > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
