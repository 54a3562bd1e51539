package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Matttaylor8910/generals-events-sub000/internal/api"
	"github.com/Matttaylor8910/generals-events-sub000/internal/batch"
	"github.com/Matttaylor8910/generals-events-sub000/internal/config"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events"
	"github.com/Matttaylor8910/generals-events-sub000/internal/game/events/subscribers"
	"github.com/Matttaylor8910/generals-events-sub000/internal/grpc/replayserver"
	"github.com/Matttaylor8910/generals-events-sub000/internal/monitoring"
	"github.com/Matttaylor8910/generals-events-sub000/internal/replay"
	"github.com/Matttaylor8910/generals-events-sub000/internal/simulation"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	httpPort := flag.Int("http-port", -1, "The HTTP port (-1 to use config default)")
	grpcPort := flag.Int("grpc-port", -1, "The gRPC port (-1 to use config default)")
	host := flag.String("host", "", "The server host (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	workers := flag.Int("workers", -1, "Concurrent replay downloads per batch (-1 to use config default)")
	enableReflection := flag.Bool("enable-reflection", false, "Enable gRPC reflection for debugging")
	logEvents := flag.Bool("log-events", false, "Log every match event at debug level")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}

	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *httpPort == -1 {
		*httpPort = cfg.Server.HTTP.Port
	}
	if *grpcPort == -1 {
		*grpcPort = cfg.Server.GRPC.Port
	}
	if *logLevel == "" {
		*logLevel = cfg.Server.LogLevel
	}
	if *workers == -1 {
		*workers = cfg.Batch.Workers
	}
	if !*enableReflection {
		*enableReflection = cfg.Server.GRPC.EnableReflection
	}
	httpListen := cfg.Server.HTTP
	httpListen.Port = *httpPort
	grpcListen := cfg.Server.GRPC.ListenConfig
	grpcListen.Port = *grpcPort
	if *host != "" {
		httpListen.Host = *host
		grpcListen.Host = *host
	}

	setupLogging(*logLevel)

	config.WatchConfig(func(c *config.Config) {
		setupLogging(c.Server.LogLevel)
		log.Info().Str("log_level", c.Server.LogLevel).Msg("Config reloaded")
	})

	log.Info().
		Str("http", httpListen.Addr()).
		Str("grpc", grpcListen.Addr()).
		Int("workers", *workers).
		Int("max_turns", cfg.Simulation.MaxTurns).
		Msg("Starting replay server")

	// Match events go through a bus so extra subscribers can be attached
	bus := events.NewEventBus(log.Logger)
	if *logEvents {
		bus.Subscribe(subscribers.NewLoggerSubscriber("server-events", log.Logger, zerolog.DebugLevel))
	}

	sim := simulation.NewSimulator(simulation.Config{
		MaxTurns:  cfg.Simulation.MaxTurns,
		Logger:    &log.Logger,
		Publisher: bus,
	})
	fetcher := replay.NewHTTPFetcher(replay.FetcherConfig{
		Servers:       cfg.Fetch.Servers,
		DefaultServer: cfg.Fetch.DefaultServer,
		Timeout:       cfg.Fetch.Timeout(),
	}, log.Logger)
	runner := batch.NewRunner(batch.Config{
		Workers: *workers,
		Timeout: cfg.Batch.Timeout(),
	}, fetcher, sim, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor := monitoring.NewGoroutineMonitor(log.Logger, monitoring.DefaultCheckInterval, monitoring.DefaultAlertThreshold)
	monitor.RegisterComponent("batch_workers", *workers)
	go monitor.Run(ctx)

	// HTTP API
	router := api.NewRouter(api.NewHandler(runner, sim, log.Logger))
	router.HandleFunc("/debug/goroutines", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(monitor.GetMetrics()); err != nil {
			log.Error().Err(err).Msg("Failed to write goroutine metrics")
		}
	}).Methods(http.MethodGet)

	httpServer := &http.Server{
		Addr:              httpListen.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// gRPC API
	lis, err := net.Listen("tcp", grpcListen.Addr())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen")
	}

	grpcServer := grpc.NewServer(replayserver.ServerOptions()...)
	replayserver.RegisterReplayServiceServer(grpcServer, replayserver.NewServer(runner, sim))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(replayserver.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	if *enableReflection {
		reflection.Register(grpcServer)
		log.Info().Msg("gRPC reflection enabled")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(replayserver.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

		// Give ongoing requests time to complete
		delay := time.Duration(config.Get().Server.GracefulShutdownDelay) * time.Second
		time.Sleep(delay)

		log.Info().Msg("Gracefully stopping servers")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Batch.Timeout())
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown")
		}
		grpcServer.GracefulStop()

		stats := runner.Stats()
		log.Info().
			Int64("simulated", stats.Simulated).
			Int64("not_found", stats.NotFound).
			Int64("failed", stats.Failed).
			Msg("Replay totals")
		cancel()
	}()

	go func() {
		log.Info().Str("address", lis.Addr().String()).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC")
		}
	}()

	go func() {
		log.Info().Str("address", httpServer.Addr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutdown complete")
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	if os.Getenv("APP_ENV") == "production" {
		// JSON output for production
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}
