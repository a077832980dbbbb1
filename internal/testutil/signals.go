package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a float32 sine wave starting at phase 0.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = float32(amplitude * math.Sin(step*float64(i)))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float32 {
	out := make([]float32, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = float32((rng.Float64()*2 - 1) * amplitude)
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float32 {
	out := make([]float32, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float32, length int) []float32 {
	out := make([]float32, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Planar returns channels silent buffers of frames samples each.
func Planar(channels, frames int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	return out
}

// Replicate copies x into channels independent buffers.
func Replicate(x []float32, channels int) [][]float32 {
	out := make([][]float32, channels)
	for ch := range out {
		out[ch] = append([]float32(nil), x...)
	}
	return out
}

// Processor is a planar float32 block processor.
type Processor interface {
	Process(in, out [][]float32, frames int) error
	Channels() int
}

// Render runs in through p in blocks of at most block frames and returns
// the output. A nil in renders frames samples of a generator.
func Render(p Processor, in [][]float32, frames, block int) ([][]float32, error) {
	out := Planar(p.Channels(), frames)
	inView := make([][]float32, p.Channels())
	outView := make([][]float32, p.Channels())

	for off := 0; off < frames; off += block {
		n := min(block, frames-off)
		for ch := range outView {
			outView[ch] = out[ch][off : off+n]
			if in != nil {
				inView[ch] = in[ch][off : off+n]
			}
		}

		src := inView
		if in == nil {
			src = nil
		}

		err := p.Process(src, outView, n)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}
