package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
	"github.com/cwbudde/algo-fxkernels/dsp/filter/allpass"
	"github.com/cwbudde/algo-fxkernels/dsp/lfo"
	"github.com/cwbudde/algo-fxkernels/dsp/param"
)

// Phaser parameter IDs.
const (
	PhaserNotchMinimumFrequency param.ID = iota
	PhaserNotchMaximumFrequency
	PhaserNotchWidth
	PhaserNotchFrequency
	PhaserVibratoMode
	PhaserDepth
	PhaserFeedback
	PhaserInverted
	PhaserLFOBPM
	PhaserFrequency
	PhaserDryWetMix
)

// Phaser parameter ranges and preset-compatible defaults.
const (
	MinPhaserNotchMinimumFrequency     = 20.0
	MaxPhaserNotchMinimumFrequency     = 5000.0
	DefaultPhaserNotchMinimumFrequency = 100.0

	MinPhaserNotchMaximumFrequency     = 40.0
	MaxPhaserNotchMaximumFrequency     = 10000.0
	DefaultPhaserNotchMaximumFrequency = 800.0

	MinPhaserNotchWidth     = 10.0
	MaxPhaserNotchWidth     = 5000.0
	DefaultPhaserNotchWidth = 1000.0

	MinPhaserNotchFrequency     = 1.1
	MaxPhaserNotchFrequency     = 4.0
	DefaultPhaserNotchFrequency = 1.5

	DefaultPhaserVibratoMode = 1.0
	DefaultPhaserDepth       = 1.0
	DefaultPhaserFeedback    = 0.0
	DefaultPhaserInverted    = 0.0

	MinPhaserLFOBPM     = 24.0
	MaxPhaserLFOBPM     = 360.0
	DefaultPhaserLFOBPM = 30.0

	MinPhaserFrequency     = MinPhaserLFOBPM / 60
	MaxPhaserFrequency     = MaxPhaserLFOBPM / 60
	DefaultPhaserFrequency = DefaultPhaserLFOBPM / 60

	DefaultPhaserDryWetMix = 0.5
)

// PhaserNotches is the number of notch pairs; the cascade holds two
// first-order sections per notch.
const PhaserNotches = 4

var phaserSpecs = []param.Spec{
	PhaserNotchMinimumFrequency: {Name: "notchMinimumFrequency", Unit: "Hz", Min: MinPhaserNotchMinimumFrequency, Max: MaxPhaserNotchMinimumFrequency, Default: DefaultPhaserNotchMinimumFrequency},
	PhaserNotchMaximumFrequency: {Name: "notchMaximumFrequency", Unit: "Hz", Min: MinPhaserNotchMaximumFrequency, Max: MaxPhaserNotchMaximumFrequency, Default: DefaultPhaserNotchMaximumFrequency},
	PhaserNotchWidth:            {Name: "notchWidth", Unit: "Hz", Min: MinPhaserNotchWidth, Max: MaxPhaserNotchWidth, Default: DefaultPhaserNotchWidth},
	PhaserNotchFrequency:        {Name: "notchFrequency", Min: MinPhaserNotchFrequency, Max: MaxPhaserNotchFrequency, Default: DefaultPhaserNotchFrequency},
	PhaserVibratoMode:           {Name: "vibratoMode", Min: 0, Max: 1, Default: DefaultPhaserVibratoMode, Stepped: true},
	PhaserDepth:                 {Name: "depth", Min: 0, Max: 1, Default: DefaultPhaserDepth},
	PhaserFeedback:              {Name: "feedback", Min: 0, Max: 1, Default: DefaultPhaserFeedback},
	PhaserInverted:              {Name: "inverted", Min: 0, Max: 1, Default: DefaultPhaserInverted, Stepped: true},
	PhaserLFOBPM:                {Name: "lfoBPM", Unit: "BPM", Min: MinPhaserLFOBPM, Max: MaxPhaserLFOBPM, Default: DefaultPhaserLFOBPM},
	PhaserFrequency:             {Name: "frequency", Unit: "Hz", Min: MinPhaserFrequency, Max: MaxPhaserFrequency, Default: DefaultPhaserFrequency},
	PhaserDryWetMix:             {Name: "dryWetMix", Min: 0, Max: 1, Default: DefaultPhaserDryWetMix},
}

// PhaserOption mutates phaser construction parameters.
type PhaserOption func(*phaserConfig) error

type phaserConfig struct {
	rampSeconds float64
}

// WithPhaserRampDuration sets the initial ramp duration in seconds.
func WithPhaserRampDuration(seconds float64) PhaserOption {
	return func(cfg *phaserConfig) error {
		if seconds < 0 || math.IsNaN(seconds) || seconds > param.MaxRampSeconds {
			return fmt.Errorf("phaser ramp duration must be in [0, %g]: %f", param.MaxRampSeconds, seconds)
		}

		cfg.rampSeconds = seconds

		return nil
	}
}

type phaserChannel struct {
	stages         [2 * PhaserNotches]allpass.FirstOrder
	osc            lfo.Oscillator
	feedbackSample float64
	ramps          param.Bank
}

//nolint:funlen
func (c *phaserChannel) process(x, sampleRate float64) float64 {
	lo := c.ramps[PhaserNotchMinimumFrequency].Next()
	hi := c.ramps[PhaserNotchMaximumFrequency].Next()
	width := c.ramps[PhaserNotchWidth].Next()
	ratio := c.ramps[PhaserNotchFrequency].Next()
	vibrato := c.ramps[PhaserVibratoMode].Next()
	depth := c.ramps[PhaserDepth].Next()
	feedback := c.ramps[PhaserFeedback].Next()
	inverted := c.ramps[PhaserInverted].Next()
	c.ramps[PhaserLFOBPM].Next()
	rate := c.ramps[PhaserFrequency].Next()
	mix := c.ramps[PhaserDryWetMix].Next()

	if lo > hi {
		lo, hi = hi, lo
	}

	wave := lfo.Sine
	if vibrato != 0 {
		wave = lfo.Triangle
	}

	sign := 1.0
	if inverted >= 0.5 {
		sign = -1
	}

	sweep := depth * c.osc.Unipolar(wave)
	centre := lo * math.Pow(hi/lo, sweep)

	y := x + sign*core.SoftLimit(feedback*c.feedbackSample, feedbackKnee, feedbackCeiling)

	for k := range PhaserNotches {
		spread := 1 + width/(2*centre)
		c.stages[2*k].SetBreakFrequency(centre/spread, sampleRate)
		c.stages[2*k+1].SetBreakFrequency(centre*spread, sampleRate)

		y = c.stages[2*k].Process(y)
		y = c.stages[2*k+1].Process(y)

		centre *= ratio
	}

	c.feedbackSample = core.FlushDenormals(y)
	c.osc.Advance(rate, sampleRate)

	return (1-mix)*x + mix*sign*y
}

func (c *phaserChannel) reset() {
	for i := range c.stages {
		c.stages[i].Reset()
	}

	c.osc.Reset()
	c.feedbackSample = 0
	c.ramps.Snap()
}

// Phaser is an LFO-swept cascade of first-order all-pass sections with
// feedback, inversion and wet/dry mix.
type Phaser struct {
	param.Controls

	cfg      core.Config
	table    *param.Table
	snapshot param.Snapshot
	channels []phaserChannel
}

// NewPhaser creates a phaser with preset-compatible defaults.
func NewPhaser(sampleRate float64, channels int, opts ...PhaserOption) (*Phaser, error) {
	cfg, err := core.NewConfig("phaser", sampleRate, channels)
	if err != nil {
		return nil, err
	}

	var pc phaserConfig

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&pc)
		if err != nil {
			return nil, err
		}
	}

	table := param.NewTable(sampleRate, phaserSpecs)
	table.SetRampDuration(pc.rampSeconds)

	p := &Phaser{
		Controls: param.NewControls(table),
		cfg:      cfg,
		table:    table,
		snapshot: table.NewSnapshot(),
		channels: make([]phaserChannel, channels),
	}

	for i := range p.channels {
		p.channels[i].ramps = param.NewBank(p.snapshot)
	}

	return p, nil
}

// SetParameter clamps v and moves id to it over the current ramp
// duration. Writing PhaserFrequency also writes PhaserLFOBPM and vice versa.
func (p *Phaser) SetParameter(id param.ID, v float64) float64 {
	return p.set(id, v, p.table.Set)
}

// SetParameterImmediately clamps v and applies it at the next sample.
func (p *Phaser) SetParameterImmediately(id param.ID, v float64) float64 {
	return p.set(id, v, p.table.SetImmediately)
}

func (p *Phaser) set(id param.ID, v float64, store func(param.ID, float64) float64) float64 {
	switch id {
	case PhaserFrequency:
		hz := store(PhaserFrequency, v)
		store(PhaserLFOBPM, hz*60)

		return hz
	case PhaserLFOBPM:
		bpm := store(PhaserLFOBPM, v)
		store(PhaserFrequency, bpm/60)

		return bpm
	default:
		return store(id, v)
	}
}

// Process reads frames samples per channel from in and writes the phased
// signal to out. in and out may alias.
func (p *Phaser) Process(in, out [][]float32, frames int) error {
	err := p.cfg.CheckBlock(in, out, frames, true)
	if err != nil {
		return err
	}

	p.table.Load(p.snapshot)

	for ch := range p.channels {
		c := &p.channels[ch]
		c.ramps.Sync(p.snapshot)

		src := in[ch][:frames]
		dst := out[ch][:frames]

		for i, x := range src {
			dst[i] = float32(c.process(float64(x), p.cfg.SampleRate))
		}
	}

	return nil
}

// ProcessInPlace phases buf in place, one slice per channel.
func (p *Phaser) ProcessInPlace(buf [][]float32) error {
	frames := 0
	if len(buf) > 0 {
		frames = len(buf[0])
	}

	return p.Process(buf, buf, frames)
}

// Reset clears all-pass and modulation state and ends ramps in progress.
// It must not run concurrently with Process.
func (p *Phaser) Reset() {
	for i := range p.channels {
		p.channels[i].reset()
	}
}

// SampleRate returns sample rate in Hz.
func (p *Phaser) SampleRate() float64 { return p.cfg.SampleRate }

// Channels returns the channel count.
func (p *Phaser) Channels() int { return p.cfg.Channels }

// SetFrequency sets the LFO rate in Hz (and lfoBPM), ramped.
func (p *Phaser) SetFrequency(hz float64) float64 { return p.SetParameter(PhaserFrequency, hz) }

// SetLFOBPM sets the LFO rate in beats per minute (and frequency), ramped.
func (p *Phaser) SetLFOBPM(bpm float64) float64 { return p.SetParameter(PhaserLFOBPM, bpm) }

// SetNotchRange sets both sweep bounds in Hz, ramped.
func (p *Phaser) SetNotchRange(minHz, maxHz float64) {
	p.table.Set(PhaserNotchMinimumFrequency, minHz)
	p.table.Set(PhaserNotchMaximumFrequency, maxHz)
}

// SetNotchWidth sets the notch width in Hz, ramped.
func (p *Phaser) SetNotchWidth(hz float64) float64 { return p.table.Set(PhaserNotchWidth, hz) }

// SetNotchFrequency sets the spacing ratio between notches, ramped.
func (p *Phaser) SetNotchFrequency(ratio float64) float64 {
	return p.table.Set(PhaserNotchFrequency, ratio)
}

// SetVibratoMode selects the triangle LFO when on.
func (p *Phaser) SetVibratoMode(on bool) { p.table.Set(PhaserVibratoMode, boolValue(on)) }

// SetInverted flips the polarity of the feedback and wet taps.
func (p *Phaser) SetInverted(on bool) { p.table.Set(PhaserInverted, boolValue(on)) }

// SetDepth sets the sweep excursion in [0, 1], ramped.
func (p *Phaser) SetDepth(depth float64) float64 { return p.table.Set(PhaserDepth, depth) }

// SetFeedback sets the feedback amount in [0, 1], ramped.
func (p *Phaser) SetFeedback(feedback float64) float64 {
	return p.table.Set(PhaserFeedback, feedback)
}

// SetDryWetMix sets the wet amount in [0, 1], ramped.
func (p *Phaser) SetDryWetMix(mix float64) float64 { return p.table.Set(PhaserDryWetMix, mix) }

// Frequency returns the LFO rate in Hz.
func (p *Phaser) Frequency() float64 { return p.table.Value(PhaserFrequency) }

// LFOBPM returns the LFO rate in beats per minute.
func (p *Phaser) LFOBPM() float64 { return p.table.Value(PhaserLFOBPM) }

func boolValue(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
