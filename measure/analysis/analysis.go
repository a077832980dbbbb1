package analysis

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
	"github.com/cwbudde/algo-fxkernels/dsp/spectrum"
	"github.com/cwbudde/algo-fxkernels/dsp/window"
)

// ErrEmptySignal is returned when there is nothing to analyse.
var ErrEmptySignal = errors.New("analysis: empty signal")

// RMS returns the root-mean-square level of x.
func RMS(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}

	buf := widen(x)
	vecmath.MulBlockInPlace(buf, buf)

	var sum float64
	for _, v := range buf {
		sum += v
	}

	return math.Sqrt(sum / float64(len(buf)))
}

// Peak returns the largest absolute sample of x.
func Peak(x []float32) float64 {
	var peak float64
	for _, v := range x {
		peak = math.Max(peak, math.Abs(float64(v)))
	}

	return peak
}

// WindowRMS splits x into consecutive windows of size samples and returns
// the RMS of each complete window. A trailing partial window is dropped.
func WindowRMS(x []float32, size int) []float64 {
	if size <= 0 || len(x) < size {
		return nil
	}

	buf := widen(x)
	vecmath.MulBlock(buf, buf, buf)

	out := make([]float64, len(buf)/size)
	for w := range out {
		var sum float64
		for _, v := range buf[w*size : (w+1)*size] {
			sum += v
		}

		out[w] = math.Sqrt(sum / float64(size))
	}

	return out
}

// Spectrum is a one-sided power spectrum, bins [0..Nyquist].
type Spectrum struct {
	Power      []float64
	BinHz      float64
	SampleRate float64
}

// PowerSpectrum returns the Hann-windowed power spectrum of x. The FFT
// length is the next power of two at or above len(x); the tail is zero.
func PowerSpectrum(x []float32, sampleRate float64) (Spectrum, error) {
	if len(x) == 0 {
		return Spectrum{}, ErrEmptySignal
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return Spectrum{}, fmt.Errorf("analysis: sample rate must be > 0: %f", sampleRate)
	}

	fftSize := nextPow2(len(x))

	samples := widen(x)

	coeffs, err := window.Hann(len(samples))
	if err != nil {
		return Spectrum{}, fmt.Errorf("analysis: %w", err)
	}

	err = window.ApplyCoefficientsInPlace(samples, coeffs)
	if err != nil {
		return Spectrum{}, fmt.Errorf("analysis: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range samples {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Spectrum{}, fmt.Errorf("analysis: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)

	err = plan.Forward(out, in)
	if err != nil {
		return Spectrum{}, fmt.Errorf("analysis: fft: %w", err)
	}

	return Spectrum{
		Power:      spectrum.Power(out[:fftSize/2+1]),
		BinHz:      sampleRate / float64(fftSize),
		SampleRate: sampleRate,
	}, nil
}

// Bin returns the bin nearest to hz, clamped to the spectrum.
func (s Spectrum) Bin(hz float64) int {
	if len(s.Power) == 0 || s.BinHz <= 0 {
		return 0
	}

	k := int(math.Round(hz / s.BinHz))

	return max(0, min(k, len(s.Power)-1))
}

// PeakFrequency returns the frequency of the strongest bin in [loHz, hiHz],
// refined by parabolic interpolation of the log power around it.
func (s Spectrum) PeakFrequency(loHz, hiHz float64) float64 {
	if len(s.Power) == 0 {
		return 0
	}

	lo, hi := s.Bin(loHz), s.Bin(hiHz)
	if lo > hi {
		lo, hi = hi, lo
	}

	best := lo
	for k := lo + 1; k <= hi; k++ {
		if s.Power[k] > s.Power[best] {
			best = k
		}
	}

	offset := 0.0

	if best > 0 && best < len(s.Power)-1 {
		a := logPower(s.Power[best-1])
		b := logPower(s.Power[best])
		c := logPower(s.Power[best+1])

		den := a - 2*b + c
		if den < 0 {
			offset = 0.5 * (a - c) / den
		}
	}

	return (float64(best) + offset) * s.BinHz
}

// BandPower sums the power of the bins in [loHz, hiHz].
func (s Spectrum) BandPower(loHz, hiHz float64) float64 {
	if len(s.Power) == 0 {
		return 0
	}

	lo, hi := s.Bin(loHz), s.Bin(hiHz)
	if lo > hi {
		lo, hi = hi, lo
	}

	var sum float64
	for _, p := range s.Power[lo : hi+1] {
		sum += p
	}

	return sum
}

func logPower(p float64) float64 {
	return math.Log(math.Max(p, 1e-300))
}

func widen(x []float32) []float64 {
	out := make([]float64, len(x))
	core.Widen(out, x)

	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
