package allpass

import (
	"math"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
)

// NyquistSafetyRatio bounds break frequencies to this fraction of the
// sample rate.
const NyquistSafetyRatio = 0.49

// Coefficient returns the first-order all-pass coefficient whose -90 degree
// phase point sits at freqHz. The frequency is clamped to
// [1 Hz, NyquistSafetyRatio*sampleRate].
func Coefficient(freqHz, sampleRate float64) float64 {
	maxFreq := NyquistSafetyRatio * sampleRate
	if !(freqHz >= 1) {
		freqHz = 1
	} else if freqHz > maxFreq {
		freqHz = maxFreq
	}

	g := math.Tan(math.Pi * freqHz / sampleRate)
	if math.IsInf(g, 0) || math.IsNaN(g) {
		return 0
	}

	return (g - 1) / (g + 1)
}

// FirstOrder is a single first-order all-pass section,
// y[n] = a*x[n] + x[n-1] - a*y[n-1].
type FirstOrder struct {
	a  float64
	x1 float64
	y1 float64
}

// SetCoefficient sets the raw coefficient a, clamped to (-1, 1).
func (f *FirstOrder) SetCoefficient(a float64) {
	const limit = 0.999999
	if a > limit {
		a = limit
	} else if a < -limit {
		a = -limit
	} else if a != a {
		a = 0
	}
	f.a = a
}

// SetBreakFrequency derives the coefficient from a break frequency.
func (f *FirstOrder) SetBreakFrequency(freqHz, sampleRate float64) {
	f.SetCoefficient(Coefficient(freqHz, sampleRate))
}

// Coefficient returns the current coefficient.
func (f *FirstOrder) Coefficient() float64 { return f.a }

// Process filters one sample.
func (f *FirstOrder) Process(x float64) float64 {
	y := f.a*x + f.x1 - f.a*f.y1
	f.x1 = x
	f.y1 = core.FlushDenormals(y)

	return y
}

// Reset clears the section history.
func (f *FirstOrder) Reset() {
	f.x1 = 0
	f.y1 = 0
}
