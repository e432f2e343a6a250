package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ladrtools/proverd/internal/config"
	"github.com/ladrtools/proverd/internal/history"
	"github.com/ladrtools/proverd/internal/history/factory"
	"github.com/ladrtools/proverd/internal/logger"
	"github.com/ladrtools/proverd/internal/metrics"
	"github.com/ladrtools/proverd/internal/server"
	"github.com/ladrtools/proverd/internal/supervise"
)

func createServeCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the supervisor daemon with its HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(globalFlags.ConfigPath)
		},
	}
}

func runServe(configPath string) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	log := logger.New(cfg.Log)

	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}

	var sinks []history.Sink
	if cfg.History.DSN != "" {
		sink, err := factory.NewSinkFromDSN(cfg.History.DSN)
		if err != nil {
			return fmt.Errorf("open history sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	sup := supervise.New(cfg.BinDir,
		supervise.WithPollInterval(cfg.PollInterval),
		supervise.WithKillGrace(cfg.KillGrace),
		supervise.WithLogger(log),
		supervise.WithHistorySinks(sinks...),
	)

	srv, err := server.NewServer(cfg.Server.Listen, cfg.Server.BasePath, sup, cfg.Metrics.Enabled)
	if err != nil {
		return err
	}
	log.Info("daemon listening", "addr", cfg.Server.Listen, "bin_dir", cfg.BinDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && err != http.ErrServerClosed {
		log.Warn("http shutdown", "err", err)
	}
	if err := sup.Shutdown(ctx); err != nil {
		log.Warn("supervisor shutdown", "err", err)
	}
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			log.Warn("history close", "err", err)
		}
	}
	return nil
}
