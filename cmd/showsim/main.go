// showsim compiles a plan and steps through the result offline,
// printing sampled fixture values. Handy for checking a show without a
// browser or fixtures.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bluewatersql/twinklr-sub004/internal/config"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/preview"
	"github.com/bluewatersql/twinklr-sub004/internal/show"
	"github.com/bluewatersql/twinklr-sub004/internal/timing"
)

func main() {
	var (
		planPath = flag.String("plan", "plan.yaml", "choreography plan")
		libsPath = flag.String("libs", "libraries.yaml", "libraries file")
		fps      = flag.Int("fps", 4, "samples per second")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	libs, err := plan.LoadLibraries(*libsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading libraries")
	}
	pf, err := plan.Load(*planPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading plan")
	}
	grid, err := timing.NewBeatGrid(pf.Timing.TempoBPM, pf.Timing.BeatsPerBar, pf.Timing.TotalBars, pf.Timing.OffsetMS)
	if err != nil {
		log.Fatal().Err(err).Msg("building beat grid")
	}

	compiled, err := show.Compile(&pf.Plan, libs, grid, pf.Timing.TotalDurationMS, config.Default(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("compiling show")
	}
	for _, w := range compiled.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	state := preview.NewState(compiled, *fps)
	stepMS := int64(1000 / *fps)
	if stepMS <= 0 {
		stepMS = 250
	}

	for t := int64(0); t < compiled.DurationMS; t += stepMS {
		frame := state.Sample(t)
		fixtures := make([]string, 0, len(frame.Fixtures))
		for f := range frame.Fixtures {
			fixtures = append(fixtures, f)
		}
		sort.Strings(fixtures)
		for _, f := range fixtures {
			values := frame.Fixtures[f]
			channels := make([]string, 0, len(values))
			for ch := range values {
				channels = append(channels, ch)
			}
			sort.Strings(channels)
			fmt.Printf("t=%06dms %s", t, f)
			for _, ch := range channels {
				fmt.Printf(" %s=%.1f", ch, values[ch])
			}
			fmt.Println()
		}
	}
}
