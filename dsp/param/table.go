package param

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
)

// MaxRampSeconds bounds the ramp duration a table accepts.
const MaxRampSeconds = 10.0

// ID indexes a parameter inside its engine's table.
type ID int

// Spec declares a parameter's range and default. Stepped parameters
// (switches) ignore the ramp duration and always apply at the next sample.
type Spec struct {
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
	Stepped bool
}

// Clamp limits v to [Min, Max]. NaN is returned unchanged.
func (s Spec) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Target is a published parameter value. RampSamples is the number of
// samples over which the render thread moves to Value; 0 applies it at the
// next sample.
type Target struct {
	Value       float64
	RampSamples int
}

// Table stores the latest target of every parameter of one engine.
type Table struct {
	specs      []Spec
	targets    []atomic.Pointer[Target]
	rampBits   atomic.Uint64
	cfg        core.Config
}

// NewTable creates a table with every parameter at its default. sampleRate
// converts ramp durations to samples and must already be validated.
func NewTable(sampleRate float64, specs []Spec) *Table {
	t := &Table{
		specs:      append([]Spec(nil), specs...),
		targets:    make([]atomic.Pointer[Target], len(specs)),
		cfg:        core.Config{SampleRate: sampleRate},
	}

	for i, s := range t.specs {
		t.targets[i].Store(&Target{Value: s.Clamp(s.Default)})
	}

	return t
}

// Len returns the number of parameters.
func (t *Table) Len() int { return len(t.specs) }

// Spec returns the declaration of id.
func (t *Table) Spec(id ID) (Spec, bool) {
	if !t.valid(id) {
		return Spec{}, false
	}
	return t.specs[id], true
}

// Lookup finds a parameter by name.
func (t *Table) Lookup(name string) (ID, bool) {
	for i, s := range t.specs {
		if s.Name == name {
			return ID(i), true
		}
	}
	return -1, false
}

// Set clamps v and publishes it, ramped over the current ramp duration.
// It returns the stored value. NaN writes are ignored and unknown IDs
// return NaN.
func (t *Table) Set(id ID, v float64) float64 {
	return t.store(id, v, t.rampSamples())
}

// SetImmediately clamps v and publishes it without a ramp.
func (t *Table) SetImmediately(id ID, v float64) float64 {
	return t.store(id, v, 0)
}

// Value returns the last stored value of id, or NaN for unknown IDs.
func (t *Table) Value(id ID) float64 {
	if !t.valid(id) {
		return math.NaN()
	}
	return t.targets[id].Load().Value
}

// SetRampDuration sets the duration used by Set, clamped to
// [0, MaxRampSeconds]. NaN is ignored.
func (t *Table) SetRampDuration(seconds float64) {
	if seconds != seconds {
		return
	}
	if seconds < 0 {
		seconds = 0
	} else if seconds > MaxRampSeconds {
		seconds = MaxRampSeconds
	}
	t.rampBits.Store(math.Float64bits(seconds))
}

// RampDuration returns the duration used by Set in seconds.
func (t *Table) RampDuration() float64 {
	return math.Float64frombits(t.rampBits.Load())
}

// NewSnapshot returns a snapshot sized for this table, filled with the
// current targets.
func (t *Table) NewSnapshot() Snapshot {
	s := make(Snapshot, len(t.targets))
	t.Load(s)
	return s
}

// Load copies the current targets into s. It does not allocate.
func (t *Table) Load(s Snapshot) {
	n := min(len(s), len(t.targets))
	for i := range n {
		s[i] = t.targets[i].Load()
	}
}

func (t *Table) store(id ID, v float64, rampSamples int) float64 {
	if !t.valid(id) {
		return math.NaN()
	}

	if v != v {
		return t.targets[id].Load().Value
	}

	if t.specs[id].Stepped {
		rampSamples = 0
	}

	v = t.specs[id].Clamp(v)
	t.targets[id].Store(&Target{Value: v, RampSamples: rampSamples})

	return v
}

func (t *Table) rampSamples() int {
	return t.cfg.Samples(t.RampDuration())
}

func (t *Table) valid(id ID) bool {
	return id >= 0 && int(id) < len(t.specs)
}

// Snapshot is a per-block view of a table's targets.
type Snapshot []*Target
