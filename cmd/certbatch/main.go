// Command certbatch fetches a batch of FAA Form 8130-3 certificates and
// exports one PDF per certificate.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/yourorg/aviationcerts/internal/apiclient"
	"github.com/yourorg/aviationcerts/internal/batch"
	"github.com/yourorg/aviationcerts/internal/config"
	"github.com/yourorg/aviationcerts/internal/export"
	"github.com/yourorg/aviationcerts/internal/notice"
	"github.com/yourorg/aviationcerts/internal/render"
	"github.com/yourorg/aviationcerts/internal/selection"
	"github.com/yourorg/aviationcerts/internal/session"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("certbatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	idsFlag := fs.String("ids", "", "comma separated certificate ids (positional ids are appended)")
	outDir := fs.String("out", "", "output directory (default CERTS_OUTPUT_DIR)")
	printAll := fs.Bool("print-all", false, "also write one combined PDF with every certificate")
	manifest := fs.Bool("manifest", false, "also write an XLSX manifest of the batch")
	configPath := fs.String("config", "", "YAML config file (default CERTS_CONFIG_FILE)")
	sessionPath := fs.String("session", "", "session file (default CERTS_SESSION_FILE)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	logger := slog.New(slog.NewTextHandler(stderr, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("load .env", "error", err)
		return exitUsage
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return exitUsage
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	if *sessionPath != "" {
		cfg.SessionFile = *sessionPath
	}

	sess, err := session.LoadFile(cfg.SessionFile)
	if err != nil {
		logger.Error("load session", "error", err)
		return exitUsage
	}
	if !sess.IsAuthenticated() {
		logger.Error("not signed in", "session", cfg.SessionFile)
		return exitUsage
	}

	var ids []string
	if *idsFlag != "" {
		ids = strings.Split(*idsFlag, ",")
	}
	ids = append(ids, fs.Args()...)
	sel, err := selection.Collect(ids)
	if err != nil {
		fmt.Fprintln(stderr, selection.NoSelectionMessage)
		return exitUsage
	}

	storage, err := export.NewDirStorage(cfg.OutputDir)
	if err != nil {
		logger.Error("prepare output", "error", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier := notice.LogNotifier{Logger: logger}
	client := apiclient.New(cfg.APIBaseURL,
		apiclient.WithSession(sess),
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(logger),
	)
	fetcher := batch.NewFetcher(client,
		batch.WithDelay(cfg.FetchDelay),
		batch.WithNotifier(notifier),
		batch.WithLogger(logger),
		batch.WithProgress(func(p batch.Progress) {
			if p.Phase != batch.Idle {
				fmt.Fprintf(stderr, "Loading certificates: %d of %d\n", p.Completed, p.Total)
			}
		}),
	)

	// Fetching is not interrupted by signals; only the export stage is.
	result, err := fetcher.Run(context.WithoutCancel(ctx), sel.IDs())
	if err != nil {
		logger.Error("fetch batch", "error", err)
		return exitFailed
	}

	page := export.DefaultPageOptions()
	page.MarginMM = cfg.PDFMarginMM
	driver := export.NewDriver(export.NewChromeRasterizer(cfg.PDFChromiumPath, cfg.PDFTimeout),
		export.WithStorage(storage),
		export.WithNotifier(notifier),
		export.WithLogger(logger),
		export.WithPageOptions(page),
	)

	docs := render.RenderAll(result.Succeeded, result.Flag)
	report := driver.ExportAll(ctx, docs)
	for _, art := range report.Artifacts {
		fmt.Fprintln(stdout, filepath.Join(storage.Root, art.Name))
	}

	if *printAll && len(docs) > 0 {
		if art, err := driver.PrintAll(ctx, docs); err == nil {
			fmt.Fprintln(stdout, filepath.Join(storage.Root, art.Name))
		}
	}

	if *manifest {
		var buf bytes.Buffer
		if err := export.WriteManifest(&buf, result, report); err != nil {
			logger.Error("write manifest", "error", err)
		} else if err := storage.PutObject(ctx, export.ManifestName, buf.Bytes(), export.ContentTypeXLSX); err != nil {
			logger.Error("store manifest", "error", err)
		} else {
			fmt.Fprintln(stdout, filepath.Join(storage.Root, export.ManifestName))
		}
	}

	fmt.Fprintf(stderr, "%d of %d certificates exported, %d fetch failures, %d export failures\n",
		len(report.Artifacts), sel.Len(), len(result.Failed), len(report.Failures))
	if len(report.Artifacts) == 0 {
		return exitFailed
	}
	return exitOK
}
