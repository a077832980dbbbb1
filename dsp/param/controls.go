package param

// Controls exposes a Table through the setter surface shared by all
// engines. Engines embed it.
type Controls struct {
	table *Table
}

// NewControls wraps t.
func NewControls(t *Table) Controls {
	return Controls{table: t}
}

// SetParameter clamps v and moves id to it over the current ramp duration.
// It returns the stored value.
func (c Controls) SetParameter(id ID, v float64) float64 {
	return c.table.Set(id, v)
}

// SetParameterImmediately clamps v and applies it at the next sample.
func (c Controls) SetParameterImmediately(id ID, v float64) float64 {
	return c.table.SetImmediately(id, v)
}

// Parameter returns the last stored value of id.
func (c Controls) Parameter(id ID) float64 {
	return c.table.Value(id)
}

// SetRampDuration sets the ramp duration used by SetParameter.
func (c Controls) SetRampDuration(seconds float64) {
	c.table.SetRampDuration(seconds)
}

// RampDuration returns the ramp duration used by SetParameter.
func (c Controls) RampDuration() float64 {
	return c.table.RampDuration()
}

// ParameterSpec returns the declaration of id.
func (c Controls) ParameterSpec(id ID) (Spec, bool) {
	return c.table.Spec(id)
}

// ParameterID finds a parameter by name.
func (c Controls) ParameterID(name string) (ID, bool) {
	return c.table.Lookup(name)
}
