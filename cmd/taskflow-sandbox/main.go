// Command taskflow-sandbox serves an in-memory TaskFlow API for local
// development of the client.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/taskflow/client/internal/api"
	"github.com/taskflow/client/internal/api/sandbox"
	"github.com/taskflow/client/internal/infrastructure/telemetry"
	"github.com/taskflow/client/internal/pkg/config"
	"github.com/taskflow/client/pkg/logger"
)

const serviceName = "taskflow-sandbox"

func main() {
	ctx := context.Background()
	cfg := config.MustLoad(ctx)

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: serviceName,
	})

	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: serviceName,
	}, log)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(sctx)
	}()

	tokens := sandbox.NewTokens(cfg.Sandbox.JWTSecret, cfg.Sandbox.AccessTTL, cfg.Sandbox.RefreshTTL)
	backend := sandbox.NewBackend(tokens, logger.Component("backend"))
	if err := backend.Seed(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed sandbox")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Sandbox.Port,
		Handler:           otelhttp.NewHandler(api.NewRouter(backend, tokens, log), serviceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Dur("access_ttl", cfg.Sandbox.AccessTTL).Msg("sandbox listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
