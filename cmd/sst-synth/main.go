// Package main writes synthetic SST product files laid out like the real
// archives, so the prescription and plotting tools can run without them.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akamensky/argparse"

	"go.ngs.io/sst-prescription/internal/adapter/store/sst"
	"go.ngs.io/sst-prescription/internal/cli"
	"go.ngs.io/sst-prescription/internal/domain"
)

func main() {
	os.Exit(run())
}

func run() int {
	parser := argparse.NewParser("sst-synth", "Writes synthetic SST product files for every supported layout")
	outDir := parser.String("o", "out", &argparse.Options{Help: "Archive root to write into", Default: "./data"})
	datasets := parser.String("d", "datasets", &argparse.Options{Help: "Comma-separated dataset ids (default: all)"})
	region := parser.Selector("r", "region", []string{"japan", "global", "custom"}, &argparse.Options{
		Help: "Grid extent preset", Default: "japan"})
	lat := parser.String("", "lat", &argparse.Options{Help: "Latitude bounds as min,max (custom region)", Default: "20,50"})
	lon := parser.String("", "lon", &argparse.Options{Help: "Longitude bounds as min,max (custom region)", Default: "115,150"})
	resolution := parser.Float("", "resolution", &argparse.Options{Help: "Grid resolution in degrees", Default: 0.25})
	lon0360 := parser.Flag("", "lon-0360", &argparse.Options{Help: "Write longitudes on the 0-360 convention"})
	island := parser.Flag("", "island", &argparse.Options{Help: "Mask an island at the grid centre as land"})
	start := parser.String("s", "start", &argparse.Options{Help: "First day, YYYY-MM-DD", Default: "2021-09-07"})
	days := parser.Int("n", "days", &argparse.Options{Help: "Number of days", Default: 1})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Enable debug logging"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		return 2
	}
	log := cli.NewLogger(*verbose)

	opts := sst.SynthOptions{Resolution: *resolution, Lon0360: *lon0360, Island: *island}
	switch *region {
	case "japan":
		opts.Lat, opts.Lon = domain.Range{20, 50}, domain.Range{115, 150}
	case "global":
		opts.Lat, opts.Lon = domain.Range{-89.5, 89.5}, domain.Range{-179.5, 179.5}
		opts.Resolution = 1.0 // Lower resolution for global
	case "custom":
		var err error
		if opts.Lat, err = cli.ParseRange(*lat); err != nil {
			log.Error().Err(err).Msg("invalid --lat")
			return 2
		}
		if opts.Lon, err = cli.ParseRange(*lon); err != nil {
			log.Error().Err(err).Msg("invalid --lon")
			return 2
		}
	}

	first, err := time.ParseInLocation("2006-01-02", *start, time.UTC)
	if err != nil {
		log.Error().Err(err).Msg("invalid --start")
		return 2
	}
	if *days < 1 {
		log.Error().Int("days", *days).Msg("--days must be at least 1")
		return 2
	}

	ids := sst.IDs()
	if *datasets != "" {
		ids = strings.Split(*datasets, ",")
	}

	log.Info().
		Str("out", *outDir).
		Str("region", *region).
		Float64("resolution", opts.Resolution).
		Strs("datasets", ids).
		Msg("generating synthetic SST files")

	failed := 0
	for d := 0; d < *days; d++ {
		day := first.AddDate(0, 0, d)
		for _, id := range ids {
			path, err := sst.Synthesize(strings.TrimSpace(id), *outDir, day, opts)
			if err != nil {
				log.Error().Err(err).Str("dataset", id).Time("day", day).Msg("failed to generate")
				failed++
				continue
			}
			log.Info().Str("dataset", id).Str("path", path).Msg("generated")
		}
	}
	if failed > 0 {
		log.Error().Int("failed", failed).Msg("finished with failures")
		return 1
	}
	return 0
}
