package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
	"github.com/cwbudde/algo-fxkernels/dsp/interp"
)

// Option mutates delay line construction parameters.
type Option func(*Line)

// WithMode selects the fractional interpolation algorithm.
func WithMode(mode interp.Mode) Option {
	return func(d *Line) {
		if mode == interp.Linear || mode == interp.Hermite {
			d.mode = mode
		}
	}
}

// Line is a circular delay line. Read(1) returns the most recently written
// sample and Read(Len()) the oldest one.
type Line struct {
	buffer   []float64
	writePos int
	mode     interp.Mode
}

// New returns a delay line of fixed size.
func New(size int, opts ...Option) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}

	d := &Line{buffer: make([]float64, size), mode: interp.Linear}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	if size < d.mode.Taps() {
		return nil, fmt.Errorf("delay size must be >= %d for %s interpolation: %d", d.mode.Taps(), d.mode, size)
	}

	return d, nil
}

// NewForDuration returns a line long enough to read any fractional delay up
// to maxDelaySeconds at sampleRate with the selected interpolation.
func NewForDuration(sampleRate, maxDelaySeconds float64, opts ...Option) (*Line, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0 and finite: %f", sampleRate)
	}

	if maxDelaySeconds <= 0 || math.IsNaN(maxDelaySeconds) || math.IsInf(maxDelaySeconds, 0) {
		return nil, fmt.Errorf("delay max duration must be > 0 and finite: %f", maxDelaySeconds)
	}

	probe := &Line{mode: interp.Linear}
	for _, opt := range opts {
		if opt != nil {
			opt(probe)
		}
	}

	size := int(math.Ceil(sampleRate*maxDelaySeconds)) + probe.mode.Taps()

	return New(size, opts...)
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Mode returns the interpolation mode.
func (d *Line) Mode() interp.Mode {
	return d.mode
}

// MaxDelay returns the largest fractional delay ReadFractional accepts
// without clamping.
func (d *Line) MaxDelay() float64 {
	if d.mode == interp.Hermite {
		return float64(len(d.buffer) - 3)
	}
	return float64(len(d.buffer) - 1)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples. Valid delays are 1..Len().
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	readPos := (d.writePos - delay) % size
	if readPos < 0 {
		readPos += size
	}
	return d.buffer[readPos]
}

// ReadFractional reads a fractional delay, clamped to [1, MaxDelay]. A
// delay of 1 is the most recently written sample. Hermite reads at delays
// below 2 repeat that sample in place of the missing newer neighbour.
func (d *Line) ReadFractional(delay float64) float64 {
	if !(delay > 1) {
		delay = 1
	}

	maxDelay := d.MaxDelay()
	if delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	t := delay - float64(p)

	if d.mode == interp.Hermite {
		x0 := d.Read(p)
		xm1 := x0
		if p > 1 {
			xm1 = d.Read(p - 1)
		}
		x1 := d.Read(p + 1)
		x2 := d.Read(p + 2)
		return interp.Hermite4(t, xm1, x0, x1, x2)
	}

	if t == 0 {
		return d.Read(p)
	}
	return interp.Linear2(t, d.Read(p), d.Read(p+1))
}

// Reset clears line state.
func (d *Line) Reset() {
	core.Zero(d.buffer)
	d.writePos = 0
}
