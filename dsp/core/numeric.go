package core

import "math"

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}
	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}
	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}
	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}
	return x
}

// SoftLimit passes x unchanged while |x| <= knee and bends it smoothly
// towards ceiling above the knee. The result never exceeds ceiling in
// magnitude. NaN maps to 0 so a poisoned feedback path recovers.
func SoftLimit(x, knee, ceiling float64) float64 {
	if x != x {
		return 0
	}
	if ceiling <= knee {
		return Clamp(x, -ceiling, ceiling)
	}

	mag := math.Abs(x)
	if mag <= knee {
		return x
	}

	span := ceiling - knee
	limited := knee + span*math.Tanh((mag-knee)/span)
	if x < 0 {
		return -limited
	}
	return limited
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}
	if linear == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}
