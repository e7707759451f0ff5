package math

import (
	goMath "math"
)

const MaxIntVal = int((^uint(0)) >> 1)
const MinIntVal = -MaxIntVal - 1

func Trunc(x float32) int {
	return int(goMath.Trunc(float64(x)))
}

// ClampInt limits x to the closed range [lo, hi].
func ClampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func MinInt(values ...int) int {
	min := MaxIntVal
	for _, value := range values {
		if value < min {
			min = value
		}
	}
	return min
}

func MaxInt(values ...int) int {
	max := MinIntVal
	for _, value := range values {
		if value > max {
			max = value
		}
	}
	return max
}
