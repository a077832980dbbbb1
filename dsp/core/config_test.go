package core

import (
	"errors"
	"math"
	"testing"
)

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		channels   int
		want       error
	}{
		{name: "ok", sampleRate: 48000, channels: 2},
		{name: "zero-rate", sampleRate: 0, channels: 1, want: ErrInvalidSampleRate},
		{name: "negative-rate", sampleRate: -44100, channels: 1, want: ErrInvalidSampleRate},
		{name: "nan-rate", sampleRate: math.NaN(), channels: 1, want: ErrInvalidSampleRate},
		{name: "inf-rate", sampleRate: math.Inf(1), channels: 1, want: ErrInvalidSampleRate},
		{name: "no-channels", sampleRate: 48000, channels: 0, want: ErrInvalidChannelCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig("test", tt.sampleRate, tt.channels)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("NewConfig() error = %v", err)
				}
				if cfg.SampleRate != tt.sampleRate || cfg.Channels != tt.channels {
					t.Fatalf("cfg = %#v", cfg)
				}
				return
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("NewConfig() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigSamples(t *testing.T) {
	cfg := Config{SampleRate: 48000, Channels: 1}
	if got := cfg.Samples(0.01); got != 480 {
		t.Fatalf("Samples(0.01) = %d, want 480", got)
	}
	if got := cfg.Samples(-1); got != 0 {
		t.Fatalf("Samples(-1) = %d, want 0", got)
	}
}

func TestCheckBlock(t *testing.T) {
	cfg := Config{SampleRate: 48000, Channels: 2}
	buf := [][]float32{make([]float32, 8), make([]float32, 8)}

	if err := cfg.CheckBlock(buf, buf, 8, true); err != nil {
		t.Fatalf("CheckBlock() error = %v", err)
	}
	if err := cfg.CheckBlock(nil, buf, 8, false); err != nil {
		t.Fatalf("generator CheckBlock() error = %v", err)
	}
	if err := cfg.CheckBlock(nil, buf, 8, true); !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("missing input: error = %v", err)
	}
	if err := cfg.CheckBlock(buf, buf[:1], 8, true); !errors.Is(err, ErrChannelMismatch) {
		t.Fatalf("missing output channel: error = %v", err)
	}
	if err := cfg.CheckBlock(buf, buf, 9, true); !errors.Is(err, ErrShortBuffer) {
		t.Fatalf("short buffer: error = %v", err)
	}
	if err := cfg.CheckBlock(buf, buf, -1, true); !errors.Is(err, ErrInvalidFrameCount) {
		t.Fatalf("negative frames: error = %v", err)
	}
}
