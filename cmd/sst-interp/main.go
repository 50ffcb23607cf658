// Package main fills missing cells of SST analyses and writes one NetCDF
// file per timestamp for use as model boundary conditions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/akamensky/argparse"

	"go.ngs.io/sst-prescription/internal/adapter/interp"
	"go.ngs.io/sst-prescription/internal/adapter/store/output"
	"go.ngs.io/sst-prescription/internal/adapter/store/sst"
	"go.ngs.io/sst-prescription/internal/cli"
	"go.ngs.io/sst-prescription/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	parser := argparse.NewParser("sst-interp", "Fills missing SST cells and writes prescribed SST files")
	flags := cli.AddCommonFlags(parser)
	step := parser.String("", "step", &argparse.Options{Help: "Time step, e.g. 1h"})
	outDir := parser.String("o", "output", &argparse.Options{Help: "Output directory"})
	method := parser.Selector("m", "method", []string{string(interp.Nearest), string(interp.Linear)}, &argparse.Options{
		Help: "Interpolation method"})
	format := parser.Selector("f", "format", []string{output.FormatNetCDF, output.FormatCSV}, &argparse.Options{
		Help: "Output format"})
	noInterp := parser.Flag("", "no-interp", &argparse.Options{Help: "Write the cropped grid without filling (mask always written)"})
	noMask := parser.Flag("", "no-mask", &argparse.Options{Help: "Do not write the fill-origin mask"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		return 2
	}
	if *flags.Version {
		fmt.Printf("sst-interp version %s\n", cli.Version)
		return 0
	}

	log := cli.NewLogger(*flags.Verbose)

	cfg, err := flags.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 2
	}
	cli.Override(&cfg.Period.Step, *step)
	cli.Override(&cfg.Paths.Output, *outDir)
	cli.Override(&cfg.Interp.Method, *method)
	cli.Override(&cfg.Interp.Format, *format)
	if *noInterp {
		cfg.Interp.Enabled = false
	}
	if *noMask {
		cfg.Interp.Mask = false
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 2
	}

	times, _ := cfg.Times()
	m, _ := interp.ParseMethod(cfg.Interp.Method)
	store, err := sst.NewStore(cfg.Paths.Input, cfg.Dataset, cfg.Region)
	if err != nil {
		log.Error().Err(err).Msg("failed to open dataset")
		return 2
	}
	writer, err := output.New(cfg.Interp.Format, cfg.Paths.Output)
	if err != nil {
		log.Error().Err(err).Msg("failed to create writer")
		return 2
	}

	log.Info().
		Str("dataset", cfg.Dataset).
		Str("input", cfg.Paths.Input).
		Str("output", cfg.Paths.Output).
		Int("timestamps", len(times)).
		Bool("interpolate", cfg.Interp.Enabled).
		Str("method", string(m)).
		Msg("starting prescription")

	p := usecase.NewPrescriber(store, writer, usecase.PrescribeOptions{
		Interpolate: cfg.Interp.Enabled,
		Method:      m,
		Mask:        cfg.Interp.Mask,
	}, log)
	if *flags.Progress {
		progress, finish := cli.ProgressBar(len(times))
		defer finish()
		p.OnProgress(progress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := p.Run(ctx, times)
	if err != nil {
		log.Error().Err(err).Int("done", report.Succeeded+len(report.Failures)).Msg("interrupted")
		return 1
	}
	if err := report.Err(); err != nil {
		log.Error().Err(err).Int("failed", len(report.Failures)).Int("succeeded", report.Succeeded).Msg("finished with failures")
		return 1
	}
	log.Info().Int("files", len(report.Outputs)).Msg("finished")
	return 0
}
