package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"registros/internal/cli"
	apphttp "registros/internal/http"
	"registros/internal/log"
	"registros/internal/present"
	appweb "registros/web"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Stdout)
	cfg := cli.LoadAndValidateConfig(logger)

	marker, err := present.CurrencyMarker(cfg.Currency)
	if err != nil {
		logger.Error("Unknown currency", log.FieldError, err)
		os.Exit(1)
	}
	html, err := present.NewHTML(appweb.TemplatesFS)
	if err != nil {
		logger.Error("Failed parsing templates", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	ctrl, backend, err := cli.InitController(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, ctrl, html, marker, backend.Backend, logger)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting registros server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend,
			"currency", cfg.Currency, "export_dialect", cfg.Dialect().Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on :%s: %w", cfg.Port, err)
		}
		return nil
	})
	// Runs on a signal and on a listener failure alike.
	g.Go(func() error {
		<-gctx.Done()
		return cli.Shutdown(logger, cfg.ShutdownTimeout,
			srv.Shutdown,
			func(context.Context) error { return backend.Close() },
		)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
