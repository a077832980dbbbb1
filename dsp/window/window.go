package window

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

var hannCoeffs = []float64{0.5, -0.5}

// Hann returns symmetric Hann window coefficients. A size of 1 yields a
// single unit coefficient.
func Hann(size int) ([]float64, error) {
	err := validateLength(size)
	if err != nil {
		return nil, err
	}

	coeffs := make([]float64, size)
	if size == 1 {
		coeffs[0] = 1
		return coeffs, nil
	}

	for i := range coeffs {
		coeffs[i] = cosineFromCoeffs(samplePosition(i, size), hannCoeffs)
	}

	return coeffs, nil
}

// ApplyCoefficientsInPlace multiplies samples with coefficients in place.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int) float64 {
	return float64(n) / float64(size-1)
}
