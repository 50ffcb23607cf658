// Package main draws SST and analysis-error maps per timestamp.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/akamensky/argparse"

	"go.ngs.io/sst-prescription/internal/adapter/render"
	"go.ngs.io/sst-prescription/internal/adapter/store/sst"
	"go.ngs.io/sst-prescription/internal/cli"
	"go.ngs.io/sst-prescription/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	parser := argparse.NewParser("sst-plot", "Draws filled-contour maps of SST and its analysis error")
	flags := cli.AddCommonFlags(parser)
	step := parser.String("", "step", &argparse.Options{Help: "Time step, e.g. 24h"})
	images := parser.String("o", "images", &argparse.Options{Help: "Image output directory"})
	coastline := parser.String("", "coastline", &argparse.Options{Help: "Coastline shapefile to overlay"})
	dpi := parser.Int("", "dpi", &argparse.Options{Help: "Image resolution", Default: 0})
	noSST := parser.Flag("", "no-sst", &argparse.Options{Help: "Skip SST maps"})
	noErr := parser.Flag("", "no-err", &argparse.Options{Help: "Skip analysis-error maps"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		return 2
	}
	if *flags.Version {
		fmt.Printf("sst-plot version %s\n", cli.Version)
		return 0
	}

	log := cli.NewLogger(*flags.Verbose)

	cfg, err := flags.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		return 2
	}
	cli.Override(&cfg.Plot.Step, *step)
	cli.Override(&cfg.Paths.Images, *images)
	cli.Override(&cfg.Plot.Coastline, *coastline)
	if *dpi > 0 {
		cfg.Plot.DPI = *dpi
	}
	if *noSST {
		cfg.Plot.SST = false
	}
	if *noErr {
		cfg.Plot.Err = false
	}
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return 2
	}

	var coast *render.Coastline
	if cfg.Plot.Coastline != "" {
		coast, err = render.LoadCoastline(cfg.Plot.Coastline, cfg.Region)
		if err != nil {
			log.Error().Err(err).Msg("failed to load coastline")
			return 2
		}
		log.Debug().Int("lines", coast.Len()).Msg("coastline loaded")
	}
	renderer, err := render.NewRenderer(render.Options{
		Region:    cfg.Region,
		DPI:       cfg.Plot.DPI,
		SSTLevels: cfg.Plot.SSTLevels,
		ErrLevels: cfg.Plot.ErrLevels,
		Coastline: coast,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create renderer")
		return 2
	}
	store, err := sst.NewStore(cfg.Paths.Input, cfg.Dataset, cfg.Region)
	if err != nil {
		log.Error().Err(err).Msg("failed to open dataset")
		return 2
	}

	times, _ := cfg.PlotTimes()
	log.Info().
		Str("dataset", cfg.Dataset).
		Str("images", cfg.Paths.Images).
		Int("timestamps", len(times)).
		Msg("starting visualization")

	v := usecase.NewVisualizer(store, renderer, usecase.VisualizeOptions{
		Dir: cfg.Paths.Images,
		SST: cfg.Plot.SST,
		Err: cfg.Plot.Err,
	}, log)
	if *flags.Progress {
		progress, finish := cli.ProgressBar(len(times))
		defer finish()
		v.OnProgress(progress)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := v.Run(ctx, times)
	if err != nil {
		log.Error().Err(err).Msg("interrupted")
		return 1
	}
	if err := report.Err(); err != nil {
		log.Error().Err(err).Int("failed", len(report.Failures)).Int("succeeded", report.Succeeded).Msg("finished with failures")
		return 1
	}
	log.Info().Int("images", len(report.Outputs)).Msg("finished")
	return 0
}
