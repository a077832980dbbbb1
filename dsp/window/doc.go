// Package window provides analysis window coefficients and helpers to apply
// them to sample blocks.
package window
