package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bookstore/internal/config"
	"bookstore/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "bookstore",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Pretty:  cfg.AppEnv == "dev",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("bookstore stopped with error")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()
	log.Info().Str("driver", cfg.DBDriver).Msg("storage ready")

	// --- Events ---
	publisher, closePublisher, err := openPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closePublisher(); err != nil {
			log.Error().Err(err).Msg("error closing event publisher")
		}
	}()
	log.Info().Str("backend", cfg.EventsBackend).Msg("event publisher ready")

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application := newApp(cfg, log, dependencies{
		stores:    st,
		publisher: publisher,
		registry:  registry,
	})

	if cfg.SeedData || cfg.DBDriver == "memory" {
		if err := seed(ctx, application, cfg, log); err != nil {
			return err
		}
	}

	// --- HTTP server ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		serverErr <- application.http.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	if err := application.http.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
	return nil
}
