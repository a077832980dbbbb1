package physmod

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
	"github.com/cwbudde/algo-fxkernels/dsp/delay"
	"github.com/cwbudde/algo-fxkernels/dsp/param"
)

// Plucked string parameter IDs.
const (
	PluckFrequency param.ID = iota
	PluckAmplitude
)

// Plucked string parameter ranges and preset-compatible defaults.
const (
	MinPluckFrequency     = 0.0
	MaxPluckFrequency     = 22000.0
	DefaultPluckFrequency = 110.0

	MinPluckAmplitude     = 0.0
	MaxPluckAmplitude     = 1.0
	DefaultPluckAmplitude = 0.5
)

// Construction defaults.
const (
	DefaultLowestFrequency = 110.0
	DefaultDecaySeconds    = 3.0
	DefaultDamping         = 0.5
	DefaultSeed            = 0x9e3779b97f4a7c15

	minDecaySeconds = 0.05
	maxDecaySeconds = 60.0
	maxDamping      = 0.95

	// One-pole smoothing applied to the excitation noise.
	excitationSmoothing = 0.5
	// Loop gain reaches -60 dB after decaySeconds.
	decayTarget = 0.001
)

var pluckSpecs = []param.Spec{
	PluckFrequency: {Name: "frequency", Unit: "Hz", Min: MinPluckFrequency, Max: MaxPluckFrequency, Default: DefaultPluckFrequency},
	PluckAmplitude: {Name: "amplitude", Min: MinPluckAmplitude, Max: MaxPluckAmplitude, Default: DefaultPluckAmplitude},
}

// EffectiveFrequency doubles hz until it reaches lowest. Non-positive or
// non-finite frequencies map to lowest.
func EffectiveFrequency(hz, lowest float64) float64 {
	if !(hz > 0) || math.IsInf(hz, 0) {
		return lowest
	}

	for hz < lowest {
		hz *= 2
	}

	return hz
}

// PluckOption mutates plucked string construction parameters.
type PluckOption func(*pluckConfig) error

type pluckConfig struct {
	lowest      float64
	decay       float64
	damping     float64
	seed        uint64
	rampSeconds float64
}

func defaultPluckConfig() pluckConfig {
	return pluckConfig{
		lowest:  DefaultLowestFrequency,
		decay:   DefaultDecaySeconds,
		damping: DefaultDamping,
		seed:    DefaultSeed,
	}
}

// WithLowestFrequency sets the pitch floor in Hz. Lower frequencies are
// doubled until they reach it; the delay line is sized for one period of it.
func WithLowestFrequency(hz float64) PluckOption {
	return func(cfg *pluckConfig) error {
		if !(hz >= 1) || hz > MaxPluckFrequency {
			return fmt.Errorf("pluck lowest frequency must be in [1, %g]: %f", MaxPluckFrequency, hz)
		}

		cfg.lowest = hz

		return nil
	}
}

// WithDecaySeconds sets the time for the loop to lose 60 dB, clamped to
// [0.05, 60].
func WithDecaySeconds(seconds float64) PluckOption {
	return func(cfg *pluckConfig) error {
		if math.IsNaN(seconds) {
			return fmt.Errorf("pluck decay must not be NaN")
		}

		cfg.decay = core.Clamp(seconds, minDecaySeconds, maxDecaySeconds)

		return nil
	}
}

// WithDamping sets the loop low-pass coefficient, clamped to [0, 0.95].
// Larger values darken the tone faster.
func WithDamping(coefficient float64) PluckOption {
	return func(cfg *pluckConfig) error {
		if math.IsNaN(coefficient) {
			return fmt.Errorf("pluck damping must not be NaN")
		}

		cfg.damping = core.Clamp(coefficient, 0, maxDamping)

		return nil
	}
}

// WithSeed sets the excitation noise seed. Zero selects DefaultSeed.
func WithSeed(seed uint64) PluckOption {
	return func(cfg *pluckConfig) error {
		if seed == 0 {
			seed = DefaultSeed
		}

		cfg.seed = seed

		return nil
	}
}

// WithPluckRampDuration sets the initial ramp duration in seconds.
func WithPluckRampDuration(seconds float64) PluckOption {
	return func(cfg *pluckConfig) error {
		if seconds < 0 || math.IsNaN(seconds) || seconds > param.MaxRampSeconds {
			return fmt.Errorf("pluck ramp duration must be in [0, %g]: %f", param.MaxRampSeconds, seconds)
		}

		cfg.rampSeconds = seconds

		return nil
	}
}

type stringChannel struct {
	line  *delay.Line
	ramps param.Bank
	rng   uint64

	// pitch glides between floored frequencies, so a glide that crosses
	// the floor never jumps an octave midway.
	pitch     param.Ramp
	pitchSeen *param.Target

	loop     float64
	lastFreq float64
	period   float64
	gain     float64
}

// syncPitch floors a newly observed frequency target and glides to it.
func (c *stringChannel) syncPitch(t *param.Target, lowest float64) {
	if t == nil || t == c.pitchSeen {
		return
	}

	c.pitchSeen = t
	c.pitch.Retarget(EffectiveFrequency(t.Value, lowest), t.RampSamples)
}

// retune sets the loop for an already floored frequency.
func (c *stringChannel) retune(hz float64, p *PluckedString) {
	c.lastFreq = hz

	loopSamples := p.cfg.SampleRate / hz
	c.period = core.Clamp(loopSamples-p.filterDelay, 1, c.line.MaxDelay())
	c.gain = math.Pow(decayTarget, (c.period+p.filterDelay)/(p.cfg.SampleRate*p.decay))
}

func (c *stringChannel) process(p *PluckedString) float64 {
	c.ramps[PluckFrequency].Next()
	c.ramps[PluckAmplitude].Next()
	hz := c.pitch.Next()

	if hz != c.lastFreq {
		c.retune(hz, p)
	}

	x := c.line.ReadFractional(c.period)

	c.loop = core.FlushDenormals((1-p.damping)*x + p.damping*c.loop)
	c.line.Write(c.gain * c.loop)

	return x
}

// excite refills the whole line with DC-free band-limited noise. The noise
// is generated twice from the same state: once for its mean, once to write.
func (c *stringChannel) excite(amplitude float64) {
	n := c.line.Len()
	start := c.rng

	var lp, sum float64
	for range n {
		lp += excitationSmoothing * (c.noise() - lp)
		sum += lp
	}

	mean := sum / float64(n)
	c.rng = start
	lp = 0

	for range n {
		lp += excitationSmoothing * (c.noise() - lp)
		c.line.Write(amplitude * (lp - mean))
	}

	c.loop = 0
}

// noise returns a uniform value in [-1, 1) from a xorshift64* generator.
func (c *stringChannel) noise() float64 {
	c.rng ^= c.rng >> 12
	c.rng ^= c.rng << 25
	c.rng ^= c.rng >> 27
	v := c.rng * 2685821657736338717

	return float64(v>>11)/(1<<53)*2 - 1
}

// PluckedString is a Karplus-Strong plucked string generator. Every
// channel renders its own string from the same parameters and seed.
type PluckedString struct {
	param.Controls

	cfg      core.Config
	table    *param.Table
	snapshot param.Snapshot
	channels []stringChannel

	lowest      float64
	decay       float64
	damping     float64
	filterDelay float64
	seed        uint64

	triggers atomic.Uint64
	handled  uint64
}

// NewPluckedString creates a silent string; call Trigger to pluck it.
func NewPluckedString(sampleRate float64, channels int, opts ...PluckOption) (*PluckedString, error) {
	cfg, err := core.NewConfig("pluck", sampleRate, channels)
	if err != nil {
		return nil, err
	}

	pc := defaultPluckConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(&pc)
		if err != nil {
			return nil, err
		}
	}

	table := param.NewTable(sampleRate, pluckSpecs)
	table.SetRampDuration(pc.rampSeconds)

	p := &PluckedString{
		Controls:    param.NewControls(table),
		cfg:         cfg,
		table:       table,
		snapshot:    table.NewSnapshot(),
		channels:    make([]stringChannel, channels),
		lowest:      pc.lowest,
		decay:       pc.decay,
		damping:     pc.damping,
		filterDelay: pc.damping / (1 - pc.damping),
		seed:        pc.seed,
	}

	for i := range p.channels {
		line, err := delay.NewForDuration(sampleRate, 1/pc.lowest)
		if err != nil {
			return nil, fmt.Errorf("pluck: %w", err)
		}

		c := &p.channels[i]
		c.line = line
		c.ramps = param.NewBank(p.snapshot)
		c.rng = pc.seed
		c.syncPitch(p.snapshot[PluckFrequency], p.lowest)
		c.retune(c.pitch.Current(), p)
	}

	return p, nil
}

// Trigger plucks the string with the current frequency and amplitude at
// the start of the next block.
func (p *PluckedString) Trigger() {
	p.triggers.Add(1)
}

// TriggerWith sets frequency and amplitude immediately and plucks.
func (p *PluckedString) TriggerWith(frequency, amplitude float64) {
	p.table.SetImmediately(PluckFrequency, frequency)
	p.table.SetImmediately(PluckAmplitude, amplitude)
	p.triggers.Add(1)
}

// Process renders frames samples per channel into out. in is ignored and
// may be nil or alias out.
func (p *PluckedString) Process(in, out [][]float32, frames int) error {
	err := p.cfg.CheckBlock(in, out, frames, false)
	if err != nil {
		return err
	}

	// Load the trigger count before the targets so a TriggerWith that is
	// observed also has its values observed.
	triggers := p.triggers.Load()
	pluck := triggers != p.handled
	p.handled = triggers

	p.table.Load(p.snapshot)

	for ch := range p.channels {
		c := &p.channels[ch]
		c.ramps.Sync(p.snapshot)
		c.syncPitch(p.snapshot[PluckFrequency], p.lowest)

		if pluck {
			c.excite(c.ramps[PluckAmplitude].Target())
		}

		dst := out[ch][:frames]
		for i := range dst {
			dst[i] = float32(c.process(p))
		}
	}

	return nil
}

// Reset silences the string, reseeds the noise and ends ramps in progress.
// It must not run concurrently with Process.
func (p *PluckedString) Reset() {
	for i := range p.channels {
		c := &p.channels[i]
		c.line.Reset()
		c.ramps.Snap()
		c.pitch.Snap()
		c.rng = p.seed
		c.loop = 0
		c.retune(c.pitch.Current(), p)
	}
}

// SampleRate returns sample rate in Hz.
func (p *PluckedString) SampleRate() float64 { return p.cfg.SampleRate }

// Channels returns the channel count.
func (p *PluckedString) Channels() int { return p.cfg.Channels }

// LowestFrequency returns the pitch floor in Hz.
func (p *PluckedString) LowestFrequency() float64 { return p.lowest }

// SetFrequency sets the pitch in Hz, ramped. A ramp glides the sounding
// string between the floored start and end pitches.
func (p *PluckedString) SetFrequency(hz float64) float64 { return p.table.Set(PluckFrequency, hz) }

// SetAmplitude sets the excitation gain for the next pluck.
func (p *PluckedString) SetAmplitude(amplitude float64) float64 {
	return p.table.Set(PluckAmplitude, amplitude)
}

// Frequency returns the stored pitch in Hz before floor doubling.
func (p *PluckedString) Frequency() float64 { return p.table.Value(PluckFrequency) }

// Amplitude returns the stored excitation gain.
func (p *PluckedString) Amplitude() float64 { return p.table.Value(PluckAmplitude) }
