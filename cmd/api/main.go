package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"imagegw/internal/gateway"
	"imagegw/internal/http/handlers"
	httpapi "imagegw/internal/http/httpapi"
	"imagegw/internal/imagefetch"
	"imagegw/internal/infra"
	"imagegw/internal/metrics"
	"imagegw/internal/providers/fal"
	"imagegw/internal/providers/pollinations"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	falClient, err := fal.NewClient(fal.Options{
		APIKey:         cfg.FalKey,
		BaseURL:        cfg.FalBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.UpstreamTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure fal client")
	}
	fetcher := imagefetch.NewClient(imagefetch.Options{
		Timeout:  cfg.FetchTimeout,
		MaxBytes: cfg.MaxFetchBytes,
	})
	collector := metrics.NewCollector("imagegw")

	gw := gateway.New(gateway.Options{
		Resolver: gateway.NewResolver(gateway.ResolverOptions{
			GenerateProvider: gateway.Provider(cfg.GenerateProvider),
			MaxDimension:     cfg.MaxImageDimension,
		}),
		Invokers: map[gateway.Provider]gateway.Invoker{
			gateway.ProviderFal:          falClient,
			gateway.ProviderPollinations: pollinations.NewClient(pollinations.Options{BaseURL: cfg.PollinationsBaseURL}),
		},
		Fetcher:         fetcher,
		UpstreamTimeout: cfg.UpstreamTimeout,
		FetchTimeout:    cfg.FetchTimeout,
		DiagnosticLimit: cfg.DiagnosticLimit,
		Logger:          logger.With().Str("component", "gateway").Logger(),
		Recorder:        collector,
	})

	app := handlers.NewApp(cfg, logger, gw)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Recorder:       collector,
		Metrics:        collector.Handler(),
	})

	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		logger.Info().
			Str("generate_provider", cfg.GenerateProvider).
			Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
