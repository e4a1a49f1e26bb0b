package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bluewatersql/twinklr-sub004/internal/config"
	"github.com/bluewatersql/twinklr-sub004/internal/export"
	"github.com/bluewatersql/twinklr-sub004/internal/plan"
	"github.com/bluewatersql/twinklr-sub004/internal/preview"
	"github.com/bluewatersql/twinklr-sub004/internal/show"
	"github.com/bluewatersql/twinklr-sub004/internal/timing"
)

func main() {
	var (
		planPath   = flag.String("plan", "plan.yaml", "choreography plan (timing + sections)")
		libsPath   = flag.String("libs", "libraries.yaml", "template/movement/geometry/dimmer libraries")
		configPath = flag.String("config", "config.yaml", "compiler configuration")
		outPath    = flag.String("out", "show.yaml", "compiled show output")
		serveAddr  = flag.String("serve", "", "optional preview listen address, e.g. :8080")
		fps        = flag.Int("fps", 0, "preview frames per second (overrides config)")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config (optional; flags still apply) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *fps > 0 {
		cfg.PreviewFPS = *fps
	}

	// ---- Inputs ----
	libs, err := plan.LoadLibraries(*libsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *libsPath).Msg("loading libraries")
	}
	pf, err := plan.Load(*planPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *planPath).Msg("loading plan")
	}

	grid, err := timing.NewBeatGrid(pf.Timing.TempoBPM, pf.Timing.BeatsPerBar, pf.Timing.TotalBars, pf.Timing.OffsetMS)
	if err != nil {
		log.Fatal().Err(err).Msg("building beat grid")
	}

	// ---- Compile ----
	compiled, err := show.Compile(&pf.Plan, libs, grid, pf.Timing.TotalDurationMS, cfg, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("compiling show")
	}
	log.Info().
		Int("segments", len(compiled.Segments)).
		Int("transitions", len(compiled.Transitions)).
		Int("warnings", len(compiled.Warnings)).
		Int64("duration_ms", compiled.DurationMS).
		Msg("show compiled")

	if err := export.Write(*outPath, compiled); err != nil {
		log.Fatal().Err(err).Str("path", *outPath).Msg("writing show")
	}
	log.Info().Str("path", *outPath).Msg("show written")

	if *serveAddr == "" {
		return
	}

	// ---- Preview server ----
	state := preview.NewState(compiled, cfg.PreviewFPS)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go state.RunLoop(ctx)

	go func() {
		log.Info().Str("addr", *serveAddr).Msg("preview server starting")
		if err := http.ListenAndServe(*serveAddr, state.Mux()); err != nil {
			log.Fatal().Err(err).Msg("preview server crashed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Info().Str("signal", s.String()).Msg("shutting down")
}
