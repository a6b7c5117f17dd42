package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/registry-sync/pkg/handlers/run"
	"github.com/de-tools/registry-sync/pkg/models/domain"
	registrysyncmiddleware "github.com/de-tools/registry-sync/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Dependencies struct {
	Runner handlers.Runner
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	RunTimeout      time.Duration
	Policy          domain.Policy
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	runHandler := handlers.NewHandler(config.Dependencies.Runner, config.Policy)

	router := chi.NewRouter()

	router.Use(registrysyncmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)
	if config.RunTimeout > 0 {
		router.Use(middleware.Timeout(config.RunTimeout))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", runHandler.TriggerRun)
	})
	router.Get("/healthz", runHandler.Health)

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: shutdownTimeout,
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
