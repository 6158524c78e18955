package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/aviationcerts/internal/notice"
	"github.com/yourorg/aviationcerts/internal/render"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// FailedMessage is the notice raised when an artifact cannot be produced.
	FailedMessage = "Failed to generate PDF"

	printAllName = "FAA_Form_8130-3_batch.pdf"
)

var ErrNoStorage = errors.New("export driver has no storage")

// Artifact is one produced file.
type Artifact struct {
	Name        string
	RecordID    string
	ContentType string
	Body        []byte
}

type Failure struct {
	RecordID string
	Name     string
	Reason   string
}

// Report summarizes ExportAll. Artifacts and Failures keep document order.
type Report struct {
	Artifacts []Artifact
	Failures  []Failure
}

// Driver turns rendered documents into PDF artifacts, one document at a time.
type Driver struct {
	rasterizer Rasterizer
	storage    Storage
	notifier   notice.Notifier
	logger     *slog.Logger
	page       PageOptions
}

type Option func(*Driver)

func WithStorage(s Storage) Option {
	return func(d *Driver) { d.storage = s }
}

func WithNotifier(n notice.Notifier) Option {
	return func(d *Driver) { d.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

func WithPageOptions(p PageOptions) Option {
	return func(d *Driver) { d.page = p }
}

func NewDriver(r Rasterizer, opts ...Option) *Driver {
	d := &Driver{
		rasterizer: r,
		logger:     slog.Default(),
		page:       DefaultPageOptions(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Artifact rasterizes doc once. On failure it raises an error notice and
// returns the error; there is no retry.
func (d *Driver) Artifact(ctx context.Context, doc render.Document) (Artifact, error) {
	name := Filename(doc)
	body, err := d.rasterize(ctx, render.Page(doc), doc.RecordID, name)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: name, RecordID: doc.RecordID, ContentType: ContentTypePDF, Body: body}, nil
}

// Export produces the artifact of doc and stores it under its file name.
func (d *Driver) Export(ctx context.Context, doc render.Document) (Artifact, error) {
	if d.storage == nil {
		return Artifact{}, ErrNoStorage
	}
	art, err := d.Artifact(ctx, doc)
	if err != nil {
		return Artifact{}, err
	}
	if err := d.store(ctx, art); err != nil {
		return Artifact{}, err
	}
	return art, nil
}

// ExportAll exports docs sequentially. A failed document is reported and the
// next one is exported regardless. Artifacts whose names collide get a
// numbered suffix so neither overwrites the other.
func (d *Driver) ExportAll(ctx context.Context, docs []render.Document) Report {
	var report Report
	used := make(map[string]int, len(docs))
	for _, doc := range docs {
		art, err := d.Artifact(ctx, doc)
		if err == nil {
			art.Name = uniqueName(art.Name, used)
			if d.storage != nil {
				err = d.store(ctx, art)
			}
		}
		if err != nil {
			report.Failures = append(report.Failures, Failure{
				RecordID: doc.RecordID,
				Name:     Filename(doc),
				Reason:   err.Error(),
			})
			continue
		}
		report.Artifacts = append(report.Artifacts, art)
	}
	d.logger.Info("export.batch.done",
		"artifacts", len(report.Artifacts),
		"failures", len(report.Failures),
	)
	return report
}

// PrintAll prints every document into one PDF, one document per page group,
// through the same Chromium print pipeline used for single artifacts.
func (d *Driver) PrintAll(ctx context.Context, docs []render.Document) (Artifact, error) {
	body, err := d.rasterize(ctx, render.Page(docs...), "", printAllName)
	if err != nil {
		return Artifact{}, err
	}
	art := Artifact{Name: printAllName, ContentType: ContentTypePDF, Body: body}
	if d.storage != nil {
		if err := d.store(ctx, art); err != nil {
			return Artifact{}, err
		}
	}
	return art, nil
}

// PrintView returns the print-ready page for a browser's own print dialog.
func (d *Driver) PrintView(docs []render.Document) string {
	return render.PrintPage(docs...)
}

func (d *Driver) rasterize(ctx context.Context, html, recordID, name string) ([]byte, error) {
	start := time.Now()
	body, err := d.rasterizer.Rasterize(ctx, html, d.page)
	if err == nil && len(body) == 0 {
		err = errors.New("empty document")
	}
	if err != nil {
		d.logger.Error("export.pdf.failed", "record", recordID, "name", name, "err", err)
		d.notify(ctx, notice.Error(FailedMessage))
		return nil, fmt.Errorf("rasterize %s: %w", name, err)
	}
	d.logger.Info("export.pdf.ok",
		"record", recordID,
		"name", name,
		"bytes", len(body),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return body, nil
}

func (d *Driver) store(ctx context.Context, art Artifact) error {
	if err := d.storage.PutObject(ctx, art.Name, art.Body, art.ContentType); err != nil {
		d.logger.Error("export.store.failed", "name", art.Name, "err", err)
		d.notify(ctx, notice.Error(FailedMessage))
		return fmt.Errorf("store %s: %w", art.Name, err)
	}
	return nil
}

func (d *Driver) notify(ctx context.Context, n notice.Notice) {
	if d.notifier != nil {
		d.notifier.Notify(ctx, n)
	}
}

func uniqueName(name string, used map[string]int) string {
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	base := strings.TrimSuffix(name, ".pdf")
	return fmt.Sprintf("%s (%d).pdf", base, n)
}
