package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	router "github.com/dkeye/neonroom/internal/adapters/http"
	"github.com/dkeye/neonroom/internal/app"
	"github.com/dkeye/neonroom/internal/app/clock"
	"github.com/dkeye/neonroom/internal/app/orch"
	"github.com/dkeye/neonroom/internal/app/rooms"
	"github.com/dkeye/neonroom/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	catalog := rooms.Default()
	if cfg.FixturesPath != "" {
		loaded, err := rooms.LoadFile(cfg.FixturesPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.FixturesPath).Msg("fixtures not loaded, using built-in rooms")
		} else {
			catalog = loaded
		}
	}

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    catalog,
		Clock:    clock.System(),
		Config:   cfg.Orch(),
		Policy:   app.SimplePolicy{MaxDropped: cfg.Limits.MaxDropped},
	}

	r := router.SetupRouter(ctx, cfg, o)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		log.Info().Str("addr", addr).Msg("NeonRoom server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	})

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Msg("Server exited gracefully")
}
