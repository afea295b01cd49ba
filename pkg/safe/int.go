// Package safe provides helpers for numeric conversions between ledger and storage types with overflow checks.
package safe

import (
	"errors"
	"fmt"
	"math"
	"math/big"
)

// ErrNilBigInt is returned when a ledger quantity is missing.
var ErrNilBigInt = errors.New("nil big integer")

// Uint64FromBig converts a non-negative big integer (block numbers, vote counts) to uint64.
func Uint64FromBig(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, ErrNilBigInt
	}
	if v.Sign() < 0 {
		return 0, fmt.Errorf("value %s is negative", v)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("value %s out of uint64 range", v)
	}
	return v.Uint64(), nil
}

// Int64 converts unsigned integers to int64 for storage columns and unix timestamps.
func Int64[T ~uint | ~uint32 | ~uint64](v T) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of int64 range", v)
	}
	return int64(v), nil
}

// Uint64 converts signed integers to uint64 while guarding against negatives.
func Uint64[T ~int | ~int32 | ~int64](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}

// Sub returns a-b, or zero when b exceeds a. A node can report a latest
// height behind a receipt's block while it catches up.
func Sub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
