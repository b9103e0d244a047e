package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gyeh/noharmcheck/internal/api"
	"github.com/gyeh/noharmcheck/internal/logging"
	"github.com/gyeh/noharmcheck/internal/metrics"
	"github.com/gyeh/noharmcheck/internal/schema"
)

var (
	serveAddr    string
	serveOrigins []string
	serveMaxBody int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the validation API",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", ":8080", "Listen address")
	f.StringSliceVar(&serveOrigins, "cors-origin", nil, "Allowed CORS origins (default: localhost:3000)")
	f.Int64Var(&serveMaxBody, "max-upload", api.DefaultMaxUpload, "Maximum upload size in bytes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	srv := api.NewServer(schema.Default, metrics.NewCollector(), log, api.Options{
		AllowedOrigins: serveOrigins,
		MaxUpload:      serveMaxBody,
	})

	httpSrv := &http.Server{
		Addr:              serveAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serveAddr).Msg("validation API listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
