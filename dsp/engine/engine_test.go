package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
	"github.com/cwbudde/algo-fxkernels/dsp/effects/modulation"
	"github.com/cwbudde/algo-fxkernels/dsp/param"
	"github.com/cwbudde/algo-fxkernels/dsp/physmod"
	"github.com/cwbudde/algo-fxkernels/internal/testutil"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", k, err)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k, got, k)
		}
	}

	if got, err := ParseKind("  Plucked-String "); err != nil || got != PluckedString {
		t.Fatalf("ParseKind alias = %v, %v", got, err)
	}
	if _, err := ParseKind("chorus"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("ParseKind(chorus) error = %v", err)
	}
	if s := Kind(9).String(); s != "Kind(9)" {
		t.Fatalf("String() = %q", s)
	}
}

func TestNewValidation(t *testing.T) {
	for _, k := range Kinds() {
		e, err := New(k, 0, 2)
		if !errors.Is(err, core.ErrInvalidSampleRate) {
			t.Fatalf("%v: zero rate error = %v", k, err)
		}
		if e != nil {
			t.Fatalf("%v: expected nil engine on error", k)
		}

		e, err = New(k, 44100, 0)
		if !errors.Is(err, core.ErrInvalidChannelCount) {
			t.Fatalf("%v: zero channels error = %v", k, err)
		}
		if e != nil {
			t.Fatalf("%v: expected nil engine on error", k)
		}
	}

	if _, err := New(Kind(-1), 44100, 1); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("unknown kind error = %v", err)
	}
}

func TestNewConcreteTypes(t *testing.T) {
	tests := []struct {
		kind  Kind
		check func(Engine) bool
	}{
		{kind: Flanger, check: func(e Engine) bool { _, ok := e.(*modulation.Flanger); return ok }},
		{kind: Phaser, check: func(e Engine) bool { _, ok := e.(*modulation.Phaser); return ok }},
		{kind: PluckedString, check: func(e Engine) bool { _, ok := e.(*physmod.PluckedString); return ok }},
	}

	for _, tt := range tests {
		e, err := New(tt.kind, 48000, 2)
		if err != nil {
			t.Fatalf("%v: New() error = %v", tt.kind, err)
		}
		if !tt.check(e) {
			t.Fatalf("%v: unexpected type %T", tt.kind, e)
		}
		if e.SampleRate() != 48000 || e.Channels() != 2 {
			t.Fatalf("%v: config mismatch", tt.kind)
		}

		_, isGen := e.(Generator)
		if isGen != (tt.kind == PluckedString) {
			t.Fatalf("%v: Generator = %v", tt.kind, isGen)
		}
	}
}

func TestParameters(t *testing.T) {
	want := map[Kind]int{Flanger: 4, Phaser: 11, PluckedString: 2}

	for _, k := range Kinds() {
		e, err := New(k, 48000, 1)
		if err != nil {
			t.Fatalf("%v: New() error = %v", k, err)
		}

		specs := Parameters(e)
		if len(specs) != want[k] {
			t.Fatalf("%v: %d parameters, want %d", k, len(specs), want[k])
		}

		for i, spec := range specs {
			id, ok := e.ParameterID(spec.Name)
			if !ok || int(id) != i {
				t.Fatalf("%v: ParameterID(%q) = %d, %v", k, spec.Name, id, ok)
			}
			if got := e.Parameter(id); got != spec.Default {
				t.Fatalf("%v: %s = %g, want default %g", k, spec.Name, got, spec.Default)
			}
			if spec.Default < spec.Min || spec.Default > spec.Max {
				t.Fatalf("%v: %s default %g outside [%g, %g]", k, spec.Name, spec.Default, spec.Min, spec.Max)
			}
		}
	}
}

func renderEngine(t *testing.T, e Engine, in [][]float32, frames int) [][]float32 {
	t.Helper()

	if g, ok := e.(Generator); ok {
		g.Trigger()
	}

	out, err := testutil.Render(e, in, frames, 256)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	return out
}

func TestSettingDefaultsLeavesOutputUnchanged(t *testing.T) {
	const frames = 4096

	in := [][]float32{
		testutil.DeterministicNoise(21, 0.7, frames),
		testutil.DeterministicSine(500, 48000, 0.5, frames),
	}

	for _, k := range Kinds() {
		plain, err := New(k, 48000, 2)
		if err != nil {
			t.Fatalf("%v: New() error = %v", k, err)
		}

		touched, err := New(k, 48000, 2)
		if err != nil {
			t.Fatalf("%v: New() error = %v", k, err)
		}

		touched.SetRampDuration(0.05)

		for id, spec := range Parameters(touched) {
			touched.SetParameter(param.ID(id), spec.Default)
		}

		testutil.RequireIdentical(t, renderEngine(t, touched, in, frames), renderEngine(t, plain, in, frames))
	}
}

func TestRampDurationThroughEngine(t *testing.T) {
	for _, k := range Kinds() {
		e, err := New(k, 1000, 1)
		if err != nil {
			t.Fatalf("%v: New() error = %v", k, err)
		}

		e.SetRampDuration(0.25)
		if got := e.RampDuration(); got != 0.25 {
			t.Fatalf("%v: RampDuration() = %g, want 0.25", k, got)
		}

		e.SetRampDuration(math.NaN())
		if got := e.RampDuration(); got != 0.25 {
			t.Fatalf("%v: NaN ramp changed duration to %g", k, got)
		}

		e.SetRampDuration(-1)
		if got := e.RampDuration(); got != 0 {
			t.Fatalf("%v: negative ramp = %g, want 0", k, got)
		}
	}
}

func TestResetThroughEngine(t *testing.T) {
	const frames = 2048

	in := [][]float32{testutil.DeterministicNoise(22, 1, frames)}

	for _, k := range Kinds() {
		e, err := New(k, 44100, 1)
		if err != nil {
			t.Fatalf("%v: New() error = %v", k, err)
		}

		first := renderEngine(t, e, in, frames)
		e.Reset()
		second := renderEngine(t, e, in, frames)

		testutil.RequireIdentical(t, second, first)
	}
}
