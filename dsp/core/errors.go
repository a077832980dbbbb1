package core

import "errors"

var (
	// ErrInvalidSampleRate is returned when a sample rate is <= 0, NaN or Inf.
	ErrInvalidSampleRate = errors.New("sample rate must be > 0 and finite")
	// ErrInvalidChannelCount is returned when a channel count is < 1.
	ErrInvalidChannelCount = errors.New("channel count must be >= 1")

	// ErrChannelMismatch is returned when a block does not carry one buffer per channel.
	ErrChannelMismatch = errors.New("buffer channel count does not match engine")
	// ErrShortBuffer is returned when a channel buffer holds fewer samples than requested.
	ErrShortBuffer = errors.New("channel buffer shorter than frame count")
	// ErrInvalidFrameCount is returned for negative frame counts.
	ErrInvalidFrameCount = errors.New("frame count must be >= 0")
)
