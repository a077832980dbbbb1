// Package modulation provides the LFO-driven effects.
//
// Included processors:
//   - Flanger: Short modulated delay with feedback.
//   - Phaser: Swept cascade of first-order all-pass notch pairs.
//
// Both process planar float32 blocks, one slice per channel, and take
// parameter changes from any goroutine while a render goroutine calls
// Process.
package modulation
