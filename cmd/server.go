// Command server runs the floor dashboard: it fetches bolt readings and
// diff records for the selected floor and serves them as an HTML page,
// an SVG chart and a JSON view.
//
// Usage:
//
//	server -config .
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"BoltWatch.dashboard/internal/config"
	"BoltWatch.dashboard/internal/controller"
	"BoltWatch.dashboard/internal/logging"
	"BoltWatch.dashboard/internal/repository"
	"BoltWatch.dashboard/internal/routes"
	"BoltWatch.dashboard/internal/service"
)

func main() {
	configPath := flag.String("config", ".", "Directory holding an optional config.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("error loading configuration")
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	zlog.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize repository, service, and controller
	repo, closeRepo, err := newRepository(ctx, cfg, logging.Component(logger, "repository"))
	if err != nil {
		logger.Fatal().Err(err).Msg("error initializing repository")
	}
	defer closeRepo()

	svc := service.NewDashboardService(repo, service.Options{
		Floors:          cfg.Floors,
		DefaultFloor:    cfg.DefaultFloor,
		RequestTimeout:  cfg.RequestTimeout,
		RefreshInterval: cfg.RefreshInterval,
	}, logging.Component(logger, "service"))
	ctrl := controller.NewDashboardController(svc, logging.Component(logger, "controller"))

	var proxy http.Handler
	if cfg.ProxyEnabled && cfg.Source == config.SourceBackend {
		proxy, err = controller.NewBackendProxy(cfg.BackendURL, logging.Component(logger, "proxy"))
		if err != nil {
			logger.Fatal().Err(err).Msg("error creating backend proxy")
		}
	}

	router := routes.SetupRouter(ctrl, proxy, logging.Component(logger, "http"))
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      routes.WithCORS(router, cfg.AllowedOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go svc.Run(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown")
		}
	}()

	logger.Info().
		Str("addr", server.Addr).
		Str("source", cfg.Source).
		Ints("floors", cfg.Floors).
		Msg("dashboard listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("error starting server")
	}
	logger.Info().Msg("dashboard stopped")
}

// newRepository picks the reading source named by the configuration.
func newRepository(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.Repository, func(), error) {
	switch cfg.Source {
	case config.SourceInfluxDB:
		repo := repository.NewInfluxDBRepository(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket, log)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := repo.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Msg("InfluxDB not ready, fetches will fail until it is")
		} else {
			log.Info().Str("bucket", cfg.InfluxDBBucket).Msg("connected to InfluxDB")
		}
		return repo, repo.Close, nil
	case config.SourceBackend:
		log.Info().Str("backend", cfg.BackendURL).Msg("using HTTP backend")
		return repository.NewBackendRepository(cfg.BackendURL, cfg.RequestTimeout, log), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q", cfg.Source)
	}
}
