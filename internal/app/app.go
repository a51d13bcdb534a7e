// Package app wires the process together: configuration, logging, metrics,
// the hub, and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	server "pong-duel/server"
	"pong-duel/server/internal/config"
	servernet "pong-duel/server/internal/net"
	"pong-duel/server/logging"
)

func Run(ctx context.Context) error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	metrics := server.NewMetrics(prometheus.DefaultRegisterer, "pong")

	gateway := servernet.NewGateway(logger)

	hubCfg := server.DefaultHubConfig()
	hubCfg.WinningScore = cfg.Game.WinningScore
	hubCfg.SessionTimeout = cfg.Game.SessionTimeout
	hubCfg.PauseMaxDuration = cfg.Game.PauseMaxDuration
	hubCfg.LockTimeout = cfg.Game.LockTimeout
	hubCfg.TickInterval = cfg.Game.TickInterval
	hubCfg.MaxBallSpeed = cfg.Game.MaxBallSpeed
	hubCfg.Logger = logger
	hubCfg.Metrics = metrics

	hub := server.NewHubWithConfig(hubCfg, gateway)
	gateway.OnBytesSent(hub.CountBroadcastBytes)
	stop := make(chan struct{})
	go hub.RunSimulation(stop)
	defer close(stop)

	publicDir := cfg.PublicDir
	if publicDir == "" {
		publicDir, err = server.ResolvePublicDir()
		if err != nil {
			logger.WithError(err).Warn("static pages disabled")
			publicDir = ""
		}
	}

	handler := servernet.NewHTTPHandler(hub, gateway, servernet.HTTPHandlerConfig{
		PublicDir: publicDir,
		Logger:    logger,
	})

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.ListenAddr).Info("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
