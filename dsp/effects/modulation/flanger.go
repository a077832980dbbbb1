package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
	"github.com/cwbudde/algo-fxkernels/dsp/delay"
	"github.com/cwbudde/algo-fxkernels/dsp/interp"
	"github.com/cwbudde/algo-fxkernels/dsp/lfo"
	"github.com/cwbudde/algo-fxkernels/dsp/param"
)

// Flanger parameter IDs.
const (
	FlangerFrequency param.ID = iota
	FlangerDepth
	FlangerFeedback
	FlangerDryWetMix
)

// Flanger parameter ranges and preset-compatible defaults.
const (
	MinFlangerFrequency     = 0.1
	MaxFlangerFrequency     = 10.0
	DefaultFlangerFrequency = 1.0

	MinFlangerDepth     = 0.0
	MaxFlangerDepth     = 1.0
	DefaultFlangerDepth = 0.0

	MinFlangerFeedback     = -0.95
	MaxFlangerFeedback     = 0.95
	DefaultFlangerFeedback = 0.0

	MinFlangerDryWetMix     = 0.0
	MaxFlangerDryWetMix     = 1.0
	DefaultFlangerDryWetMix = 0.0
)

// Delay geometry. The instantaneous delay sweeps
// FlangerBaseDelaySeconds ± depth*FlangerModulationSeconds.
const (
	FlangerBaseDelaySeconds  = 0.005
	FlangerModulationSeconds = 0.004
	flangerMaxDelaySeconds   = 0.010
)

// Feedback taps pass unchanged up to the knee and saturate towards the
// ceiling, which bounds the loop for any feedback setting.
const (
	feedbackKnee    = 1.0
	feedbackCeiling = 2.0
)

var flangerSpecs = []param.Spec{
	FlangerFrequency: {Name: "frequency", Unit: "Hz", Min: MinFlangerFrequency, Max: MaxFlangerFrequency, Default: DefaultFlangerFrequency},
	FlangerDepth:     {Name: "depth", Min: MinFlangerDepth, Max: MaxFlangerDepth, Default: DefaultFlangerDepth},
	FlangerFeedback:  {Name: "feedback", Min: MinFlangerFeedback, Max: MaxFlangerFeedback, Default: DefaultFlangerFeedback},
	FlangerDryWetMix: {Name: "dryWetMix", Min: MinFlangerDryWetMix, Max: MaxFlangerDryWetMix, Default: DefaultFlangerDryWetMix},
}

// FlangerOption mutates flanger construction parameters.
type FlangerOption func(*flangerConfig) error

type flangerConfig struct {
	interpolation interp.Mode
	rampSeconds   float64
}

func defaultFlangerConfig() flangerConfig {
	return flangerConfig{interpolation: interp.Linear}
}

// WithFlangerInterpolation selects the fractional delay interpolation.
func WithFlangerInterpolation(mode interp.Mode) FlangerOption {
	return func(cfg *flangerConfig) error {
		if mode != interp.Linear && mode != interp.Hermite {
			return fmt.Errorf("flanger interpolation not supported: %d", mode)
		}

		cfg.interpolation = mode

		return nil
	}
}

// WithFlangerRampDuration sets the initial ramp duration in seconds.
func WithFlangerRampDuration(seconds float64) FlangerOption {
	return func(cfg *flangerConfig) error {
		if seconds < 0 || math.IsNaN(seconds) || seconds > param.MaxRampSeconds {
			return fmt.Errorf("flanger ramp duration must be in [0, %g]: %f", param.MaxRampSeconds, seconds)
		}

		cfg.rampSeconds = seconds

		return nil
	}
}

type flangerChannel struct {
	line  *delay.Line
	osc   lfo.Oscillator
	ramps param.Bank
}

func (c *flangerChannel) process(x, sampleRate float64) float64 {
	rate := c.ramps[FlangerFrequency].Next()
	depth := c.ramps[FlangerDepth].Next()
	feedback := c.ramps[FlangerFeedback].Next()
	mix := c.ramps[FlangerDryWetMix].Next()

	delaySeconds := FlangerBaseDelaySeconds + depth*FlangerModulationSeconds*c.osc.Value(lfo.Sine)
	wet := c.line.ReadFractional(delaySeconds * sampleRate)

	fb := core.SoftLimit(feedback*wet, feedbackKnee, feedbackCeiling)
	c.line.Write(core.FlushDenormals(x + fb))

	c.osc.Advance(rate, sampleRate)

	return (1-mix)*x + mix*wet
}

func (c *flangerChannel) reset() {
	c.line.Reset()
	c.osc.Reset()
	c.ramps.Snap()
}

// Flanger is a short modulated-delay effect with feedback and wet/dry mix.
// Each channel owns its delay line, LFO and parameter ramps; parameters are
// shared by all channels.
type Flanger struct {
	param.Controls

	cfg      core.Config
	table    *param.Table
	snapshot param.Snapshot
	channels []flangerChannel
}

// NewFlanger creates a flanger with preset-compatible defaults.
func NewFlanger(sampleRate float64, channels int, opts ...FlangerOption) (*Flanger, error) {
	cfg, err := core.NewConfig("flanger", sampleRate, channels)
	if err != nil {
		return nil, err
	}

	fc := defaultFlangerConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&fc)
		if err != nil {
			return nil, err
		}
	}

	table := param.NewTable(sampleRate, flangerSpecs)
	table.SetRampDuration(fc.rampSeconds)

	f := &Flanger{
		Controls: param.NewControls(table),
		cfg:      cfg,
		table:    table,
		snapshot: table.NewSnapshot(),
		channels: make([]flangerChannel, channels),
	}

	for i := range f.channels {
		line, err := delay.NewForDuration(sampleRate, flangerMaxDelaySeconds, delay.WithMode(fc.interpolation))
		if err != nil {
			return nil, fmt.Errorf("flanger: %w", err)
		}

		f.channels[i] = flangerChannel{line: line, ramps: param.NewBank(f.snapshot)}
	}

	return f, nil
}

// Process reads frames samples per channel from in and writes the flanged
// signal to out. in and out may alias.
func (f *Flanger) Process(in, out [][]float32, frames int) error {
	err := f.cfg.CheckBlock(in, out, frames, true)
	if err != nil {
		return err
	}

	f.table.Load(f.snapshot)

	for ch := range f.channels {
		c := &f.channels[ch]
		c.ramps.Sync(f.snapshot)

		src := in[ch][:frames]
		dst := out[ch][:frames]

		for i, x := range src {
			dst[i] = float32(c.process(float64(x), f.cfg.SampleRate))
		}
	}

	return nil
}

// ProcessInPlace flanges buf in place, one slice per channel.
func (f *Flanger) ProcessInPlace(buf [][]float32) error {
	frames := 0
	if len(buf) > 0 {
		frames = len(buf[0])
	}

	return f.Process(buf, buf, frames)
}

// Reset clears delay lines and LFO phase and ends ramps in progress. It
// must not run concurrently with Process.
func (f *Flanger) Reset() {
	for i := range f.channels {
		f.channels[i].reset()
	}
}

// SampleRate returns sample rate in Hz.
func (f *Flanger) SampleRate() float64 { return f.cfg.SampleRate }

// Channels returns the channel count.
func (f *Flanger) Channels() int { return f.cfg.Channels }

// SetFrequency sets the LFO rate in Hz, ramped.
func (f *Flanger) SetFrequency(hz float64) float64 { return f.table.Set(FlangerFrequency, hz) }

// SetDepth sets the modulation depth in [0, 1], ramped.
func (f *Flanger) SetDepth(depth float64) float64 { return f.table.Set(FlangerDepth, depth) }

// SetFeedback sets the feedback amount in [-0.95, 0.95], ramped.
func (f *Flanger) SetFeedback(feedback float64) float64 {
	return f.table.Set(FlangerFeedback, feedback)
}

// SetDryWetMix sets the wet amount in [0, 1], ramped.
func (f *Flanger) SetDryWetMix(mix float64) float64 { return f.table.Set(FlangerDryWetMix, mix) }

// Frequency returns the LFO rate in Hz.
func (f *Flanger) Frequency() float64 { return f.table.Value(FlangerFrequency) }

// Depth returns the modulation depth.
func (f *Flanger) Depth() float64 { return f.table.Value(FlangerDepth) }

// Feedback returns the feedback amount.
func (f *Flanger) Feedback() float64 { return f.table.Value(FlangerFeedback) }

// DryWetMix returns the wet amount.
func (f *Flanger) DryWetMix() float64 { return f.table.Value(FlangerDryWetMix) }
