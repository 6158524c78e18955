package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/aviationcerts/internal/apiclient"
	"github.com/yourorg/aviationcerts/internal/batch"
	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/config"
	"github.com/yourorg/aviationcerts/internal/export"
	"github.com/yourorg/aviationcerts/internal/notice"
	"github.com/yourorg/aviationcerts/internal/viewer"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("load .env", "error", err)
		os.Exit(2)
	}
	cfg, err := config.Load("")
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(logger),
	)
	notifier := notice.LogNotifier{Logger: logger}
	fetcher := batch.NewFetcher(client,
		batch.WithDelay(cfg.FetchDelay),
		batch.WithNotifier(notifier),
		batch.WithLogger(logger),
	)
	registry := batch.NewRegistry(fetcher, cfg.JobRetention)

	artifacts, err := export.NewDirStorage(cfg.OutputDir)
	if err != nil {
		logger.Error("output directory", "error", err)
		os.Exit(2)
	}

	page := export.DefaultPageOptions()
	page.MarginMM = cfg.PDFMarginMM
	driver := export.NewDriver(export.NewChromeRasterizer(cfg.PDFChromiumPath, cfg.PDFTimeout),
		export.WithNotifier(notifier),
		export.WithLogger(logger),
		export.WithPageOptions(page),
	)

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: viewer.NewServer(client, registry, driver,
			viewer.WithValidator(cert.Validator{MaxItems: cfg.MaxItems, MaxDescription: cfg.MaxDescription}),
			viewer.WithBatchRate(cfg.BatchRatePerMin),
			viewer.WithArtifacts(artifacts),
			viewer.WithLogger(logger),
		).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("certview listening", "addr", cfg.ListenAddr, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
