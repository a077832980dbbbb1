// Package param holds engine parameters: declared ranges and defaults,
// clamped control-thread writes and sample-accurate linear ramps on the
// render thread.
//
// Writes and reads never share mutable memory. [Table.Set] clamps the value
// and publishes an immutable [Target] through an atomic pointer. The render
// thread loads all targets once per block into a preallocated [Snapshot] and
// each channel's [Ramp] interpolates from its current value towards the newest
// target. Loading and ramping never allocate or lock.
package param
