package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxkernels/dsp/interp"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// --- construction and validation ---

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for size=0")
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected error for size=-1")
	}

	if _, err := New(3, WithMode(interp.Hermite)); err == nil {
		t.Fatal("expected error for hermite line shorter than 4")
	}
}

func TestNewDefaults(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	if d.Len() != 16 {
		t.Fatalf("Len: got %d want 16", d.Len())
	}

	if d.Mode() != interp.Linear {
		t.Fatalf("default mode: got %v want Linear", d.Mode())
	}

	if d.MaxDelay() != 15 {
		t.Fatalf("MaxDelay: got %v want 15", d.MaxDelay())
	}
}

func TestNewWithOptions(t *testing.T) {
	d, err := New(16, WithMode(interp.Hermite), nil)
	if err != nil {
		t.Fatal(err)
	}

	if d.Mode() != interp.Hermite {
		t.Fatalf("mode: got %v want Hermite", d.Mode())
	}

	if d.MaxDelay() != 13 {
		t.Fatalf("MaxDelay: got %v want 13", d.MaxDelay())
	}
}

func TestNewForDuration(t *testing.T) {
	d, err := NewForDuration(48000, 0.01)
	if err != nil {
		t.Fatal(err)
	}

	if d.MaxDelay() < 480 {
		t.Fatalf("MaxDelay: got %v want >= 480", d.MaxDelay())
	}

	h, err := NewForDuration(48000, 0.01, WithMode(interp.Hermite))
	if err != nil {
		t.Fatal(err)
	}

	if h.MaxDelay() < 480 {
		t.Fatalf("hermite MaxDelay: got %v want >= 480", h.MaxDelay())
	}

	if _, err := NewForDuration(0, 0.01); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	if _, err := NewForDuration(48000, 0); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

// --- integer Read/Write ---

func TestReadWrite(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i))
	}
	// delay=1 => most recently written (7)
	if got := d.Read(1); got != 7 {
		t.Fatalf("got %v want 7", got)
	}
	// delay=3 => 3 samples back from write head
	if got := d.Read(3); got != 5 {
		t.Fatalf("got %v want 5", got)
	}
}

func TestReadWraparound(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		d.Write(float64(i))
	}
	// buffer should contain [8, 9, 6, 7], writePos=2
	if got := d.Read(1); got != 9 {
		t.Fatalf("got %v want 9", got)
	}
	if got := d.Read(4); got != 6 {
		t.Fatalf("got %v want 6", got)
	}
}

func TestReset(t *testing.T) {
	d, err := New(4)
	if err != nil {
		t.Fatal(err)
	}

	d.Write(1)
	d.Write(2)
	d.Reset()

	for i := 0; i < 4; i++ {
		if got := d.Read(i); got != 0 {
			t.Fatalf("after reset Read(%d): got %v want 0", i, got)
		}
	}
}

// --- fractional reads ---

// fillRamp fills a delay line with a linear ramp [0, 1, 2, ..., size-1].
func fillRamp(d *Line) {
	for i := 0; i < d.Len(); i++ {
		d.Write(float64(i))
	}
}

func TestReadFractionalIntegerMatchesRead(t *testing.T) {
	d, err := New(16)
	if err != nil {
		t.Fatal(err)
	}

	fillRamp(d)

	for delay := 1; delay < 15; delay++ {
		if got, want := d.ReadFractional(float64(delay)), d.Read(delay); got != want {
			t.Fatalf("delay %d: got %v want %v", delay, got, want)
		}
	}
}

func TestReadFractionalLinear(t *testing.T) {
	d, err := New(32, WithMode(interp.Linear))
	if err != nil {
		t.Fatal(err)
	}

	fillRamp(d)
	// With a linear ramp, linear interpolation is exact.
	got := d.ReadFractional(5.5)

	want := float64(d.Len()) - 5.5 // 26.5
	if !approxEqual(got, want, 1e-10) {
		t.Fatalf("Linear: got %v want %v", got, want)
	}
}

func TestReadFractionalHermite(t *testing.T) {
	d, err := New(32, WithMode(interp.Hermite))
	if err != nil {
		t.Fatal(err)
	}

	fillRamp(d)
	got := d.ReadFractional(5.5)

	want := float64(d.Len()) - 5.5
	if !approxEqual(got, want, 1e-10) {
		t.Fatalf("Hermite: got %v want %v", got, want)
	}
}

func TestReadFractionalClamped(t *testing.T) {
	d, err := New(8)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 8; i++ {
		d.Write(float64(i + 1))
	}

	if got, want := d.ReadFractional(-1.0), d.Read(1); got != want {
		t.Fatalf("negative delay: got %v want %v", got, want)
	}

	if got, want := d.ReadFractional(100), d.ReadFractional(d.MaxDelay()); got != want {
		t.Fatalf("oversized delay: got %v want %v", got, want)
	}

	if got, want := d.ReadFractional(math.NaN()), d.Read(1); got != want {
		t.Fatalf("NaN delay: got %v want %v", got, want)
	}
}

func TestReadFractionalNeverReadsStaleSlot(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Linear, interp.Hermite} {
		d, err := New(8, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}

		// Newest sample is 8, the slot about to be overwritten holds 1.
		for i := 0; i < 8; i++ {
			d.Write(float64(i + 1))
		}

		newest, next := d.Read(1), d.Read(2)

		for _, delay := range []float64{0, 0.25, 0.5, 0.99, 1} {
			if got := d.ReadFractional(delay); got != newest {
				t.Fatalf("%s delay %v: got %v want newest %v", mode, delay, got, newest)
			}
		}

		for _, delay := range []float64{1.25, 1.5, 1.75} {
			got := d.ReadFractional(delay)
			if got < next || got > newest {
				t.Fatalf("%s delay %v: got %v outside [%v, %v]", mode, delay, got, next, newest)
			}
		}
	}
}

func TestAllModesDCPreservation(t *testing.T) {
	for _, mode := range []interp.Mode{interp.Linear, interp.Hermite} {
		d, err := New(32, WithMode(mode))
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < d.Len(); i++ {
			d.Write(42.0)
		}

		if got := d.ReadFractional(5.3); !approxEqual(got, 42.0, 1e-9) {
			t.Fatalf("%s DC: got %v want 42", mode, got)
		}
	}
}

func TestAllModesSineQuality(t *testing.T) {
	freq := 0.02 // cycles per sample
	size := 256

	for _, tc := range []struct {
		mode interp.Mode
		tol  float64
	}{
		{interp.Linear, 0.01},
		{interp.Hermite, 1e-4},
	} {
		d, err := New(size, WithMode(tc.mode))
		if err != nil {
			t.Fatal(err)
		}

		for i := 0; i < size; i++ {
			d.Write(math.Sin(2 * math.Pi * freq * float64(i)))
		}

		delay := 20.37
		// Read(k) returns the sample written at index size-k.
		want := math.Sin(2 * math.Pi * freq * (float64(size) - delay))
		got := d.ReadFractional(delay)

		if diff := math.Abs(got - want); diff > tc.tol {
			t.Fatalf("%s sine: got %v want %v (err=%e, tol=%e)", tc.mode, got, want, diff, tc.tol)
		}
	}
}

// --- benchmarks ---

func BenchmarkReadFractionalLinear(b *testing.B) {
	d, _ := New(1024, WithMode(interp.Linear))
	fillRamp(d)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.ReadFractional(100.37)
	}
}

func BenchmarkReadFractionalHermite(b *testing.B) {
	d, _ := New(1024, WithMode(interp.Hermite))
	fillRamp(d)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		d.ReadFractional(100.37)
	}
}
