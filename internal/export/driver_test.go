package export

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/yourorg/aviationcerts/internal/cert"
	"github.com/yourorg/aviationcerts/internal/notice"
	"github.com/yourorg/aviationcerts/internal/render"
)

// fakeRasterizer returns the page back as the "PDF" and fails for pages that
// contain one of the failing element ids.
type fakeRasterizer struct {
	mu    sync.Mutex
	fail  map[string]bool
	pages []string
	opts  []PageOptions
}

func (r *fakeRasterizer) Rasterize(_ context.Context, html string, opts PageOptions) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, html)
	r.opts = append(r.opts, opts)
	for id := range r.fail {
		if strings.Contains(html, `id="`+render.ElementPrefix+id+`"`) {
			return nil, errors.New("chromium crashed")
		}
	}
	return []byte("%PDF-" + html), nil
}

func docs(ids ...string) []render.Document {
	out := make([]render.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, render.Render(cert.Certificate{ID: cert.ID(id), FormNumber: "F-" + id}, true))
	}
	return out
}

func TestArtifact_UsesFixedPageOptions(t *testing.T) {
	r := &fakeRasterizer{}
	d := NewDriver(r)
	art, err := d.Artifact(context.Background(), docs("a")[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Name != "FAA_Form_8130-3_F-a.pdf" || art.RecordID != "a" || art.ContentType != ContentTypePDF {
		t.Fatalf("unexpected artifact %+v", art)
	}
	got := r.opts[0]
	if !got.Landscape || got.MarginMM != 0.2 || got.PaperWidthMM != 210 || got.PaperHeightMM != 297 {
		t.Fatalf("unexpected page options %+v", got)
	}
}

func TestArtifact_FailureRaisesNotice(t *testing.T) {
	rec := notice.NewRecorder()
	d := NewDriver(&fakeRasterizer{fail: map[string]bool{"a": true}}, WithNotifier(rec))
	if _, err := d.Artifact(context.Background(), docs("a")[0]); err == nil {
		t.Fatalf("expected error")
	}
	ns := rec.Notices()
	if len(ns) != 1 || ns[0].Message != FailedMessage || ns[0].Level != notice.LevelError {
		t.Fatalf("unexpected notices %+v", ns)
	}
}

func TestArtifact_EmptyOutputIsFailure(t *testing.T) {
	empty := RasterizerFunc(func(context.Context, string, PageOptions) ([]byte, error) { return nil, nil })
	d := NewDriver(empty)
	if _, err := d.Artifact(context.Background(), docs("a")[0]); err == nil {
		t.Fatalf("expected error for empty output")
	}
}

func TestExport_RequiresStorage(t *testing.T) {
	d := NewDriver(&fakeRasterizer{})
	if _, err := d.Export(context.Background(), docs("a")[0]); !errors.Is(err, ErrNoStorage) {
		t.Fatalf("expected ErrNoStorage, got %v", err)
	}
}

func TestExportAll_IndependentFailures(t *testing.T) {
	store := NewInMemoryStorage()
	rec := notice.NewRecorder()
	r := &fakeRasterizer{fail: map[string]bool{"b": true}}
	d := NewDriver(r, WithStorage(store), WithNotifier(rec))

	report := d.ExportAll(context.Background(), docs("a", "b", "c"))
	if len(report.Artifacts) != 2 || len(report.Failures) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Artifacts[0].RecordID != "a" || report.Artifacts[1].RecordID != "c" {
		t.Fatalf("artifacts out of order: %+v", report.Artifacts)
	}
	if report.Failures[0].RecordID != "b" || report.Failures[0].Name != "FAA_Form_8130-3_F-b.pdf" {
		t.Fatalf("unexpected failure %+v", report.Failures[0])
	}
	if len(r.pages) != 3 {
		t.Fatalf("expected one rasterization per document, got %d", len(r.pages))
	}
	for _, page := range r.pages {
		if n := strings.Count(page, `class="certificate-content"`); n != 1 {
			t.Fatalf("expected a single document per page, got %d", n)
		}
	}
	if _, err := store.Head(context.Background(), "FAA_Form_8130-3_F-c.pdf"); err != nil {
		t.Fatalf("expected stored artifact: %v", err)
	}
	if _, err := store.Head(context.Background(), "FAA_Form_8130-3_F-b.pdf"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("failed artifact should not be stored, got %v", err)
	}
	if len(rec.Notices()) != 1 {
		t.Fatalf("expected one notice, got %d", len(rec.Notices()))
	}
}

func TestExportAll_DuplicateNames(t *testing.T) {
	store := NewInMemoryStorage()
	d := NewDriver(&fakeRasterizer{}, WithStorage(store))
	list := []render.Document{
		render.Render(cert.Certificate{ID: "1"}, true),
		render.Render(cert.Certificate{ID: "2"}, true),
	}
	report := d.ExportAll(context.Background(), list)
	if len(report.Artifacts) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Artifacts[0].Name != "FAA_Form_8130-3_certificate.pdf" || report.Artifacts[1].Name != "FAA_Form_8130-3_certificate (1).pdf" {
		t.Fatalf("unexpected names %q %q", report.Artifacts[0].Name, report.Artifacts[1].Name)
	}
	if len(store.Keys()) != 2 {
		t.Fatalf("expected two stored objects, got %v", store.Keys())
	}
}

func TestPrintAll_SinglePageWithBreaks(t *testing.T) {
	r := &fakeRasterizer{}
	d := NewDriver(r)
	art, err := d.PrintAll(context.Background(), docs("a", "b", "c"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.pages) != 1 {
		t.Fatalf("expected a single rasterization, got %d", len(r.pages))
	}
	if n := strings.Count(r.pages[0], `class="certificate-content"`); n != 3 {
		t.Fatalf("expected 3 documents, got %d", n)
	}
	if art.Name != printAllName {
		t.Fatalf("unexpected name %q", art.Name)
	}
}

func TestPrintView_HasPrintButton(t *testing.T) {
	d := NewDriver(&fakeRasterizer{})
	html := d.PrintView(docs("a", "b"))
	if !strings.Contains(html, "window.print()") {
		t.Fatalf("expected print button")
	}
	if strings.Count(html, `class="certificate-content"`) != 2 {
		t.Fatalf("expected two documents")
	}
}

func TestFilename(t *testing.T) {
	cases := map[string]string{
		"F-100":  "FAA_Form_8130-3_F-100.pdf",
		"":       "FAA_Form_8130-3_certificate.pdf",
		"   ":    "FAA_Form_8130-3_certificate.pdf",
		"A/B\\C": "FAA_Form_8130-3_A-B-C.pdf",
		"..":     "FAA_Form_8130-3_certificate.pdf",
	}
	for in, want := range cases {
		if got := Filename(render.Document{FormNumber: in}); got != want {
			t.Fatalf("Filename(%q) = %q, want %q", in, got, want)
		}
	}
}
