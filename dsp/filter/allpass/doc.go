// Package allpass provides the first-order all-pass section used by the
// phaser cascade.
//
// A first-order all-pass passes every frequency at unity gain and shifts the
// phase from 0 at DC to -180 degrees at Nyquist, crossing -90 degrees at the
// break frequency. Mixing a cascade of such sections with the dry signal
// produces the swept notches of a phaser.
package allpass
