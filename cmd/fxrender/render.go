package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-fxkernels/dsp/engine"
	"github.com/cwbudde/algo-fxkernels/internal/testutil"
	"github.com/cwbudde/algo-fxkernels/measure/analysis"
)

// maxAnalysisFrames bounds the tail analysed for the peak frequency.
const maxAnalysisFrames = 1 << 16

type setting struct {
	name  string
	value float64
}

// settings collects repeated -set name=value flags.
type settings []setting

func (s *settings) String() string {
	parts := make([]string, len(*s))
	for i, st := range *s {
		parts[i] = fmt.Sprintf("%s=%g", st.name, st.value)
	}
	return strings.Join(parts, ",")
}

func (s *settings) Set(v string) error {
	name, raw, ok := strings.Cut(v, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", v)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("parameter %s: %w", name, err)
	}

	*s = append(*s, setting{name: name, value: value})

	return nil
}

type renderConfig struct {
	kind             engine.Kind
	sampleRate       float64
	channels         int
	frames           int
	block            int
	signal           string
	toneHz           float64
	rampSeconds      float64
	retriggerSeconds float64
	settings         settings
}

func defaultRenderConfig() renderConfig {
	return renderConfig{
		kind:       engine.Flanger,
		sampleRate: 48000,
		channels:   2,
		frames:     96000,
		block:      256,
		signal:     "noise",
		toneHz:     440,
	}
}

// render builds the engine, applies the settings and runs the input signal
// through it block by block.
func render(cfg renderConfig) ([][]float32, error) {
	if cfg.block <= 0 {
		return nil, fmt.Errorf("block size must be > 0: %d", cfg.block)
	}
	if cfg.frames < 0 {
		return nil, fmt.Errorf("frame count must be >= 0: %d", cfg.frames)
	}

	e, err := engine.New(cfg.kind, cfg.sampleRate, cfg.channels)
	if err != nil {
		return nil, err
	}

	e.SetRampDuration(cfg.rampSeconds)

	for _, st := range cfg.settings {
		id, ok := e.ParameterID(st.name)
		if !ok {
			return nil, fmt.Errorf("%s has no parameter %q", cfg.kind, st.name)
		}
		e.SetParameterImmediately(id, st.value)
	}

	in, err := inputSignal(cfg)
	if err != nil {
		return nil, err
	}

	gen, isGenerator := e.(engine.Generator)

	retrigger := 0
	if isGenerator && cfg.retriggerSeconds > 0 {
		retrigger = max(1, int(math.Round(cfg.retriggerSeconds*cfg.sampleRate)))
	}

	out := make([][]float32, cfg.channels)
	for ch := range out {
		out[ch] = make([]float32, cfg.frames)
	}

	inView := make([][]float32, cfg.channels)
	outView := make([][]float32, cfg.channels)
	nextTrigger := 0

	for off := 0; off < cfg.frames; {
		n := min(cfg.block, cfg.frames-off)

		if isGenerator && off >= nextTrigger && nextTrigger >= 0 {
			gen.Trigger()

			nextTrigger = -1
			if retrigger > 0 {
				nextTrigger = off + retrigger
			}
		}

		// Blocks end at the next trigger so retriggers land on time.
		if nextTrigger > off {
			n = min(n, nextTrigger-off)
		}

		for ch := range outView {
			outView[ch] = out[ch][off : off+n]
			inView[ch] = in[ch][off : off+n]
		}

		if err := e.Process(inView, outView, n); err != nil {
			return nil, fmt.Errorf("process at frame %d: %w", off, err)
		}

		off += n
	}

	return out, nil
}

// noiseSeed fixes the noise input so renders are reproducible.
const noiseSeed = 0x12345678

func inputSignal(cfg renderConfig) ([][]float32, error) {
	var mono []float32

	switch strings.ToLower(cfg.signal) {
	case "noise":
		mono = testutil.DeterministicNoise(noiseSeed, 0.5, cfg.frames)
	case "sine":
		mono = testutil.DeterministicSine(cfg.toneHz, cfg.sampleRate, 0.5, cfg.frames)
	case "impulse":
		mono = testutil.Impulse(cfg.frames, 0)
	case "silence":
		return testutil.Planar(cfg.channels, cfg.frames), nil
	default:
		return nil, fmt.Errorf("unknown signal %q", cfg.signal)
	}

	return testutil.Replicate(mono, cfg.channels), nil
}

func peakFrequency(x []float32, sampleRate float64) float64 {
	if len(x) > maxAnalysisFrames {
		x = x[len(x)-maxAnalysisFrames:]
	}

	s, err := analysis.PowerSpectrum(x, sampleRate)
	if err != nil {
		return 0
	}

	return s.PeakFrequency(20, sampleRate/2)
}

// writeWAV stores out as interleaved 16-bit PCM.
func writeWAV(path string, out [][]float32, sampleRate float64) (err error) {
	if len(out) == 0 {
		return errors.New("wav: no channels")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: create %v: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("wav: close %v: %w", path, cerr)
		}
	}()

	format := &audio.Format{SampleRate: int(math.Round(sampleRate)), NumChannels: len(out)}
	enc := wav.NewEncoder(f, format.SampleRate, 16, format.NumChannels, 1)

	frames := len(out[0])
	data := make([]int, frames*len(out))

	for i := range frames {
		for ch := range out {
			v := math.Max(-1, math.Min(1, float64(out[ch][i])))
			data[i*len(out)+ch] = int(math.Round(v * math.MaxInt16))
		}
	}

	if err := enc.Write(&audio.IntBuffer{Data: data, Format: format, SourceBitDepth: 16}); err != nil {
		return fmt.Errorf("wav: write %v: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav: finalize %v: %w", path, err)
	}

	return nil
}
