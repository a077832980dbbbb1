// Package analysis measures rendered blocks: windowed RMS envelopes and
// Hann-windowed power spectra with interpolated peak picking. It backs the
// fxrender report and the behavioural tests of the effect engines.
package analysis
