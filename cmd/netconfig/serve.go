package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"deploy_networks/internal/infrastructure/restapi"
	"deploy_networks/internal/pkg/logger"
	"deploy_networks/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(config *baseConfiguration) *cobra.Command {
	var port string
	var cmd = &cobra.Command{
		Use:   "serve",
		Short: "Starts the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				config.cfg.Server.Port = port
			}
			return runServer(cmd.Context(), config)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port, overrides the configuration file")
	return cmd
}

func newHTTPServer(config *baseConfiguration) *http.Server {
	if !config.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	srvCfg := config.cfg.Server
	handler := restapi.NewNetworkHandler(
		config.service,
		logger.Named("NetworkHandler"),
		time.Duration(srvCfg.WriteTimeout)*time.Second,
	)
	router := restapi.SetupRouter(handler, restapi.RouterOptions{
		EnableCORS: srvCfg.EnableCORS,
		Gatherer:   metrics.Registry,
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%s", srvCfg.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(srvCfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(srvCfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(srvCfg.IdleTimeout) * time.Second,
	}
}

// runServer serves until ctx is cancelled, then shuts the server down gracefully.
func runServer(ctx context.Context, config *baseConfiguration) error {
	srv := newHTTPServer(config)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, stopping HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("HTTP server stopped")
	return nil
}
