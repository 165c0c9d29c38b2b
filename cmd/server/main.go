package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	sharedauth "github.com/internhub/portal-service/shared/auth"
	"github.com/internhub/portal-service/shared/logging"
	sharedserver "github.com/internhub/portal-service/shared/server"

	"github.com/internhub/portal-service/internal/bootstrap"
	"github.com/internhub/portal-service/internal/config"
	"github.com/internhub/portal-service/internal/httpapi"
	"github.com/internhub/portal-service/internal/intern"
	"github.com/internhub/portal-service/internal/portal"
)

const serviceName = "portal-service"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLoggerWithWriter(serviceName, os.Stdout, logging.ParseLevel(cfg.LogLevel))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	stores, cleanup, err := bootstrap.NewStores(ctx, cfg, reg)
	if err != nil {
		panic(fmt.Errorf("store init error: %w", err))
	}
	defer cleanup()

	portalService, err := portal.NewService(stores.Source, logger)
	if err != nil {
		panic(fmt.Errorf("portal service init error: %w", err))
	}

	internService, err := intern.NewService(stores.Interns, logger)
	if err != nil {
		panic(fmt.Errorf("intern service init error: %w", err))
	}

	codec, err := sharedauth.NewCodec(sharedauth.Config{
		Mode:   cfg.Auth.Mode,
		Secret: cfg.Auth.Secret,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("session codec error: %w", err))
	}

	router := sharedserver.NewRouter(serviceName, func(r chi.Router) {
		httpapi.RegisterRoutes(r, httpapi.Deps{
			Portal:         portalService,
			Interns:        internService,
			Sessions:       stores.Sessions,
			Tokens:         codec,
			Logger:         logger,
			AuthLimiter:    httpapi.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			SecureCookie:   cfg.Auth.Mode == sharedauth.ModeHMAC,
		})
	}, sharedserver.WithMetrics(reg), sharedserver.WithTimeout(55*time.Second))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("portal configured",
		"datastore", cfg.DataStore,
		"auth_mode", cfg.Auth.Mode,
		"fixture_latency", cfg.Fixture.SimulateLatency,
	)

	if err := sharedserver.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}
