package param

// Ramp moves a parameter linearly from its current value to the latest
// target. It is owned by a single render thread.
type Ramp struct {
	current   float64
	target    float64
	step      float64
	remaining int
	seen      *Target
}

// NewRamp returns a ramp resting at t.
func NewRamp(t *Target) Ramp {
	return Ramp{current: t.Value, target: t.Value, seen: t}
}

// Sync starts moving towards t if t was not observed before.
func (r *Ramp) Sync(t *Target) {
	if t == nil || t == r.seen {
		return
	}

	r.seen = t
	r.Retarget(t.Value, t.RampSamples)
}

// Retarget starts moving towards v over samples samples, or jumps there
// when samples is not positive. Engines use it for values derived from a
// parameter rather than the parameter itself.
func (r *Ramp) Retarget(v float64, samples int) {
	r.target = v

	if samples <= 0 || r.current == r.target {
		r.current = r.target
		r.remaining = 0
		return
	}

	r.step = (r.target - r.current) / float64(samples)
	r.remaining = samples
}

// Next advances one sample and returns the value for it. The value equals
// the target exactly on the last sample of the ramp.
func (r *Ramp) Next() float64 {
	if r.remaining > 0 {
		r.remaining--
		if r.remaining == 0 {
			r.current = r.target
		} else {
			r.current += r.step
		}
	}
	return r.current
}

// Current returns the value of the last sample.
func (r *Ramp) Current() float64 { return r.current }

// Target returns the value the ramp is heading to.
func (r *Ramp) Target() float64 { return r.target }

// Ramping reports whether a ramp is in progress.
func (r *Ramp) Ramping() bool { return r.remaining > 0 }

// Snap ends any ramp in progress at its target.
func (r *Ramp) Snap() {
	r.current = r.target
	r.remaining = 0
}

// Bank is one ramp per parameter of a table.
type Bank []Ramp

// NewBank returns ramps resting at the targets of s.
func NewBank(s Snapshot) Bank {
	b := make(Bank, len(s))
	for i, t := range s {
		b[i] = NewRamp(t)
	}
	return b
}

// Sync forwards every target of s to its ramp.
func (b Bank) Sync(s Snapshot) {
	n := min(len(b), len(s))
	for i := range n {
		b[i].Sync(s[i])
	}
}

// Snap ends all ramps at their targets.
func (b Bank) Snap() {
	for i := range b {
		b[i].Snap()
	}
}
