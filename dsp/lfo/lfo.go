// Package lfo provides the phase-accumulator low-frequency oscillator that
// drives the flanger delay sweep and the phaser notch sweep.
package lfo

import "math"

// Waveform selects the LFO shape.
type Waveform int

const (
	// Sine is a sinusoid, 0 at phase 0 and rising.
	Sine Waveform = iota
	// Triangle is a triangle wave in phase with Sine.
	Triangle
)

// Oscillator keeps a phase in [0, 1). The rate is passed on every Advance so
// a ramped rate can drive it sample by sample.
type Oscillator struct {
	phase float64
}

// Phase returns the current phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// Value returns the bipolar waveform value in [-1, 1] at the current phase.
func (o *Oscillator) Value(w Waveform) float64 {
	p := o.phase
	if w == Triangle {
		switch {
		case p < 0.25:
			return 4 * p
		case p < 0.75:
			return 2 - 4*p
		default:
			return 4*p - 4
		}
	}
	return math.Sin(2 * math.Pi * p)
}

// Unipolar returns the waveform value mapped to [0, 1].
func (o *Oscillator) Unipolar(w Waveform) float64 {
	return 0.5 * (1 + o.Value(w))
}

// Advance moves the phase forward by rateHz/sampleRate, wrapping at 1.
func (o *Oscillator) Advance(rateHz, sampleRate float64) {
	o.phase += rateHz / sampleRate
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}
}

// Reset zeros the phase.
func (o *Oscillator) Reset() {
	o.phase = 0
}
