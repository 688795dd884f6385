package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/lodthe/fromcheck/internal/audit"
	api "github.com/lodthe/fromcheck/pkg/restapi"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and periodic audits of audit.roots",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Listen to termination signals.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tags, err := newTagCache(ctx, config)
	if err != nil {
		return err
	}

	opts := api.RouterOpts{
		Logger:  logger,
		Tags:    tags,
		Timeout: config.API.ServerTimeout,
	}

	var saver audit.Saver
	if config.PersistenceEnabled() {
		repo, err := newReportRepository(ctx, config)
		if err != nil {
			return err
		}

		saver = repo
		opts.Reports = repo
	}

	periodic := audit.NewPeriodic(newAuditor(config, tags), saver, logger, config.Audit.Interval, config.Audit.Roots...)
	opts.Audits = periodic

	go periodic.Run(ctx)

	srv := &http.Server{
		Addr:              config.API.ListeningAddress,
		Handler:           api.NewRouter(opts),
		ReadTimeout:       20 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      config.API.ServerTimeout + 10*time.Second,
	}
	go func() {
		logger.Info().Str("address", config.API.ListeningAddress).Msg("starting the server")

		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server listen failed")
			cancel()
		}
	}()

	// Export Prometheus metrics.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	metricSrv := &http.Server{
		Addr:              config.PrometheusExportAddress,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("address", config.PrometheusExportAddress).Msg("starting the prometheus exporter")

		err := metricSrv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("prometheus exporter failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdown()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	err = metricSrv.Shutdown(shutdownCtx)
	if err != nil {
		logger.Error().Err(err).Msg("prometheus exporter shutdown failed")
	}

	logger.Info().Msg("server has been stopped")

	return nil
}
