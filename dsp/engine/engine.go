// Package engine is the common entry point for all effect and generator
// engines. New creates an engine of a given Kind behind the Engine
// interface; callers that need engine-specific setters type-assert to the
// concrete type.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-fxkernels/dsp/effects/modulation"
	"github.com/cwbudde/algo-fxkernels/dsp/param"
	"github.com/cwbudde/algo-fxkernels/dsp/physmod"
)

// ErrUnknownKind is returned for engine kinds New does not know.
var ErrUnknownKind = errors.New("unknown engine kind")

// Kind selects an engine implementation.
type Kind int

const (
	Flanger Kind = iota
	Phaser
	PluckedString
)

var kindNames = [...]string{
	Flanger:       "flanger",
	Phaser:        "phaser",
	PluckedString: "pluck",
}

// Kinds lists every known engine kind.
func Kinds() []Kind {
	return []Kind{Flanger, Phaser, PluckedString}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind resolves a kind by name, ignoring case.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flanger":
		return Flanger, nil
	case "phaser":
		return Phaser, nil
	case "pluck", "pluckedstring", "plucked-string":
		return PluckedString, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Engine is the contract shared by all engines. Process, Reset and the
// trigger methods belong to the render thread; the setters may be called
// from any goroutine.
type Engine interface {
	Process(in, out [][]float32, frames int) error
	Reset()
	SampleRate() float64
	Channels() int

	SetParameter(id param.ID, v float64) float64
	SetParameterImmediately(id param.ID, v float64) float64
	Parameter(id param.ID) float64
	ParameterSpec(id param.ID) (param.Spec, bool)
	ParameterID(name string) (param.ID, bool)
	SetRampDuration(seconds float64)
	RampDuration() float64
}

// Generator is an engine that ignores its input and sounds on Trigger.
type Generator interface {
	Engine
	Trigger()
}

var (
	_ Engine    = (*modulation.Flanger)(nil)
	_ Engine    = (*modulation.Phaser)(nil)
	_ Generator = (*physmod.PluckedString)(nil)
)

// New creates an engine of the given kind with default parameters.
func New(kind Kind, sampleRate float64, channels int) (Engine, error) {
	switch kind {
	case Flanger:
		f, err := modulation.NewFlanger(sampleRate, channels)
		if err != nil {
			return nil, err
		}
		return f, nil
	case Phaser:
		p, err := modulation.NewPhaser(sampleRate, channels)
		if err != nil {
			return nil, err
		}
		return p, nil
	case PluckedString:
		s, err := physmod.NewPluckedString(sampleRate, channels)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
	}
}

// Parameters returns the declarations of all parameters of e in ID order.
func Parameters(e Engine) []param.Spec {
	var specs []param.Spec
	for id := param.ID(0); ; id++ {
		spec, ok := e.ParameterSpec(id)
		if !ok {
			return specs
		}
		specs = append(specs, spec)
	}
}
