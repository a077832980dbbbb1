// Package physmod provides physical-modelling generators.
//
// PluckedString is a Karplus-Strong string: a delay line holding one period
// of the string is filled with band-limited noise on every pluck, and each
// sample read from it is low-passed, attenuated and written back. The
// low-pass makes high partials die faster than the fundamental, as on a real
// string. Pitch follows the fractional read length, so a ramped frequency
// change glides the sounding string instead of restarting it.
package physmod
