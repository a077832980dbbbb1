// Package delay provides a fixed-size circular delay line with integer and
// fractional reads. It is the storage primitive behind the flanger and the
// plucked-string loop.
package delay
