package core

import (
	"fmt"
	"math"
)

// Config holds the construction-time settings every engine shares.
type Config struct {
	SampleRate float64
	Channels   int
}

// NewConfig validates sampleRate and channels. The name prefixes the
// returned error, e.g. "flanger: sample rate must be > 0 and finite: 0".
func NewConfig(name string, sampleRate float64, channels int) (Config, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return Config{}, fmt.Errorf("%s: %w: %f", name, ErrInvalidSampleRate, sampleRate)
	}

	if channels < 1 {
		return Config{}, fmt.Errorf("%s: %w: %d", name, ErrInvalidChannelCount, channels)
	}

	return Config{SampleRate: sampleRate, Channels: channels}, nil
}

// Samples converts a duration in seconds to a whole number of samples.
func (c Config) Samples(seconds float64) int {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	return int(math.Round(seconds * c.SampleRate))
}

// CheckBlock verifies the block-processing preconditions shared by all
// engines. in is only checked when needInput is set; generators pass false.
func (c Config) CheckBlock(in, out [][]float32, frames int, needInput bool) error {
	if frames < 0 {
		return ErrInvalidFrameCount
	}

	if len(out) != c.Channels {
		return ErrChannelMismatch
	}

	for _, ch := range out {
		if len(ch) < frames {
			return ErrShortBuffer
		}
	}

	if !needInput {
		return nil
	}

	if len(in) != c.Channels {
		return ErrChannelMismatch
	}

	for _, ch := range in {
		if len(ch) < frames {
			return ErrShortBuffer
		}
	}

	return nil
}
