package allpass

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestCoefficientClamping(t *testing.T) {
	const fs = 48000

	if got, want := Coefficient(0, fs), Coefficient(1, fs); got != want {
		t.Fatalf("below 1 Hz: got %v want %v", got, want)
	}

	if got, want := Coefficient(fs, fs), Coefficient(NyquistSafetyRatio*fs, fs); got != want {
		t.Fatalf("above Nyquist guard: got %v want %v", got, want)
	}

	if got := Coefficient(fs/4, fs); math.Abs(got) > 1e-12 {
		t.Fatalf("fs/4 coefficient: got %v want 0", got)
	}
}

func TestFirstOrderUnityMagnitude(t *testing.T) {
	const fs = 48000

	var ap FirstOrder
	ap.SetBreakFrequency(1000, fs)

	h := make([]float64, 4096)
	h[0] = ap.Process(1)
	for i := 1; i < len(h); i++ {
		h[i] = ap.Process(0)
	}

	for _, f := range []float64{50, 500, 1000, 5000, 15000} {
		w := 2 * math.Pi * f / fs

		var sum complex128
		for n, v := range h {
			sum += complex(v, 0) * cmplx.Exp(complex(0, -w*float64(n)))
		}

		if mag := cmplx.Abs(sum); math.Abs(mag-1) > 1e-6 {
			t.Fatalf("f=%v: |H|=%v want 1", f, mag)
		}
	}
}

func TestFirstOrderQuarterPhaseAtBreak(t *testing.T) {
	const (
		fs = 48000.0
		fc = 2000.0
	)

	a := Coefficient(fc, fs)
	w := 2 * math.Pi * fc / fs
	z1 := cmplx.Exp(complex(0, -w))
	h := (complex(a, 0) + z1) / (1 + complex(a, 0)*z1)

	if phase := cmplx.Phase(h); math.Abs(phase+math.Pi/2) > 1e-9 {
		t.Fatalf("phase at break: got %v want %v", phase, -math.Pi/2)
	}
}

func TestFirstOrderReset(t *testing.T) {
	var ap FirstOrder
	ap.SetCoefficient(0.3)

	first := ap.Process(1)
	ap.Process(0.5)
	ap.Reset()

	if got := ap.Process(1); got != first {
		t.Fatalf("after reset: got %v want %v", got, first)
	}
}

func TestSetCoefficientBounds(t *testing.T) {
	var ap FirstOrder

	ap.SetCoefficient(2)
	if ap.Coefficient() >= 1 {
		t.Fatalf("coefficient not clamped: %v", ap.Coefficient())
	}

	ap.SetCoefficient(math.NaN())
	if ap.Coefficient() != 0 {
		t.Fatalf("NaN coefficient: got %v want 0", ap.Coefficient())
	}
}
