// Command fxrender renders an engine over a test signal and prints level
// and pitch figures per channel.
//
// Usage:
//
//	fxrender [flags]
//
// Examples:
//
//	fxrender -engine flanger -set depth=0.8 -set dryWetMix=0.5
//	fxrender -engine phaser -set lfoBPM=120 -signal sine -tone 220
//	fxrender -engine pluck -set frequency=196 -retrigger 0.5 -wav pluck.wav
//	fxrender -engine phaser -list
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-fxkernels/dsp/core"
	"github.com/cwbudde/algo-fxkernels/dsp/engine"
	"github.com/cwbudde/algo-fxkernels/measure/analysis"
)

func main() {
	cfg := defaultRenderConfig()

	engineName := flag.String("engine", "flanger", "engine kind: flanger, phaser or pluck")
	flag.Float64Var(&cfg.sampleRate, "rate", cfg.sampleRate, "sample rate in Hz")
	flag.IntVar(&cfg.channels, "channels", cfg.channels, "channel count")
	seconds := flag.Float64("seconds", 2, "rendered duration in seconds")
	flag.IntVar(&cfg.block, "block", cfg.block, "block size in frames")
	flag.StringVar(&cfg.signal, "signal", cfg.signal, "input signal: noise, sine, impulse or silence")
	flag.Float64Var(&cfg.toneHz, "tone", cfg.toneHz, "sine input frequency in Hz")
	flag.Float64Var(&cfg.rampSeconds, "ramp", cfg.rampSeconds, "parameter ramp duration in seconds")
	flag.Float64Var(&cfg.retriggerSeconds, "retrigger", cfg.retriggerSeconds, "generator retrigger interval in seconds (0 = once)")
	flag.Var(&cfg.settings, "set", "parameter assignment name=value (repeatable)")
	wavPath := flag.String("wav", "", "write the rendered output as 16-bit WAV to this path")
	list := flag.Bool("list", false, "list the parameters of the engine and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fxrender [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Renders an engine over a test signal and reports RMS, peak and peak frequency.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fxrender -engine flanger -set depth=0.8 -set dryWetMix=0.5\n")
		fmt.Fprintf(os.Stderr, "  fxrender -engine pluck -set frequency=196 -wav pluck.wav\n")
		fmt.Fprintf(os.Stderr, "  fxrender -engine phaser -list\n")
	}
	flag.Parse()

	kind, err := engine.ParseKind(*engineName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	cfg.kind = kind
	cfg.frames = int(*seconds * cfg.sampleRate)

	if *list {
		if err := printParameters(kind, cfg.sampleRate); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	out, err := render(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *wavPath != "" {
		if err := writeWAV(*wavPath, out, cfg.sampleRate); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	printReport(out, cfg.sampleRate)
}

func printParameters(kind engine.Kind, sampleRate float64) error {
	e, err := engine.New(kind, sampleRate, 1)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Parameter\tMin\tMax\tDefault\tUnit\n")
	_, _ = fmt.Fprintf(tw, "---------\t---\t---\t-------\t----\n")

	for _, spec := range engine.Parameters(e) {
		_, _ = fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%s\n", spec.Name, spec.Min, spec.Max, spec.Default, spec.Unit)
	}

	return tw.Flush()
}

func printReport(out [][]float32, sampleRate float64) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Channel\tRMS\tRMS [dB]\tPeak\tPeak [dB]\tPeak Freq [Hz]\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "-------\t---\t--------\t----\t---------\t--------------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for ch, x := range out {
		rms := analysis.RMS(x)
		peak := analysis.Peak(x)

		if _, err := fmt.Fprintf(tw, "%d\t%.6f\t%.2f\t%.6f\t%.2f\t%.2f\n",
			ch,
			rms,
			core.LinearToDB(rms),
			peak,
			core.LinearToDB(peak),
			peakFrequency(x, sampleRate),
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}

	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
