package math

import (
	"errors"
	"math"
	"sort"
)

// Possible error types for mathematical functions.
var (
	ErrNotEnoughArgs   = errors.New("not enough args")
	ErrInvalidArgCount = errors.New("invalid argument count")
	ErrEmptyReduction  = errors.New("empty reduction")
	ErrDivByZero       = errors.New("division by zero")
)

func saturate(v int64) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

// Abs returns the absolute value of v.
func Abs(v int32) int32 {
	if v == math.MinInt32 {
		return math.MaxInt32
	}
	if v < 0 {
		return -v
	}
	return v
}

// Sum returns the sum of xs, 0 for an empty slice.
func Sum(xs []int32) int32 {
	var s int64
	for _, x := range xs {
		s += int64(x)
	}
	return saturate(s)
}

// Avg returns the truncated mean of xs, 0 for an empty slice.
func Avg(xs []int32) int32 {
	if len(xs) == 0 {
		return 0
	}
	var s int64
	for _, x := range xs {
		s += int64(x)
	}
	return saturate(s / int64(len(xs)))
}

// Len returns len(xs) as an int32.
func Len(xs []int32) int32 { return int32(len(xs)) }

// Max returns the largest element of xs.
func Max(xs []int32) (int32, error) {
	if len(xs) == 0 {
		return 0, ErrEmptyReduction
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m, nil
}

// Min returns the smallest element of xs.
func Min(xs []int32) (int32, error) {
	if len(xs) == 0 {
		return 0, ErrEmptyReduction
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m, nil
}

// Sort returns a copy of xs in ascending order.
func Sort(xs []int32) []int32 {
	out := append([]int32(nil), xs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortDesc returns a copy of xs in descending order.
func SortDesc(xs []int32) []int32 {
	out := Sort(xs)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// TopN returns the n largest elements of xs, in ascending order,
// implementing max(list, n)'s keep-highest semantics.
func TopN(xs []int32, n int) []int32 {
	s := Sort(xs)
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return append([]int32(nil), s[len(s)-n:]...)
}

// BottomN returns the n smallest elements of xs, in ascending order,
// implementing min(list, n)'s keep-lowest semantics.
func BottomN(xs []int32, n int) []int32 {
	s := Sort(xs)
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	return append([]int32(nil), s[:n]...)
}

// DivNearest rounds a/b to the nearest integer, ties away from zero.
func DivNearest(a, b int32) (int32, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	return saturate(int64(math.Round(float64(a) / float64(b)))), nil
}

// DivFloor rounds a/b toward negative infinity.
func DivFloor(a, b int32) (int32, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	return saturate(int64(math.Floor(float64(a) / float64(b)))), nil
}

// DivCeil rounds a/b toward positive infinity.
func DivCeil(a, b int32) (int32, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	return saturate(int64(math.Ceil(float64(a) / float64(b)))), nil
}

// DivTrunc truncates a/b toward zero: the default rule applied to a
// bare `/` wherever an integer result is required (spec.md §4.6).
func DivTrunc(a, b int32) (int32, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	return saturate(int64(math.Trunc(float64(a) / float64(b)))), nil
}

// Mod returns a%b, Go's truncated-remainder semantics.
func Mod(a, b int32) (int32, error) {
	if b == 0 {
		return 0, ErrDivByZero
	}
	return a % b, nil
}
