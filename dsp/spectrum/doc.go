// Package spectrum provides spectrum-domain helpers that operate on complex
// bins produced by an external FFT backend.
package spectrum
