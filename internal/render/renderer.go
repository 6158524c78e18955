package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yourorg/aviationcerts/internal/cert"
)

// ElementPrefix prefixes the element id of every rendered certificate.
const ElementPrefix = "pdf-content-"

// Document is a rendered certificate, addressable by ID independently of the
// other documents of a batch.
type Document struct {
	ID         string
	RecordID   string
	FormNumber string
	Layout     Layout
	HTML       template.HTML
}

var (
	documentTmpl = template.Must(template.New("certificate").Parse(certificateTemplate))
	pageTmpl     = template.Must(template.New("page").Parse(pageTemplate))
)

// Render maps a certificate onto the fixed form. It is a pure function of rec
// and flag: no clock, no randomness, rec is not modified.
func Render(rec cert.Certificate, flag bool) Document {
	layout := buildLayout(rec, flag)
	id := ElementPrefix + rec.ID.String()

	blocks := make(map[string]Block, len(layout.Blocks))
	for _, b := range layout.Blocks {
		blocks[b.Number] = b
	}

	var buf bytes.Buffer
	err := documentTmpl.Execute(&buf, struct {
		ID   string
		B    map[string]Block
		Rows []Row
	}{
		ID:   id,
		B:    blocks,
		Rows: layout.Rows,
	})
	if err != nil {
		// The template only reads strings and bools; failing here is a bug.
		panic(fmt.Sprintf("render certificate %s: %v", rec.ID, err))
	}

	return Document{
		ID:         id,
		RecordID:   rec.ID.String(),
		FormNumber: rec.FormNumber,
		Layout:     layout,
		HTML:       template.HTML(buf.String()),
	}
}

// RenderAll renders records in order.
func RenderAll(records []cert.Certificate, flag bool) []Document {
	docs := make([]Document, 0, len(records))
	for _, rec := range records {
		docs = append(docs, Render(rec, flag))
	}
	return docs
}

// Page wraps docs into one standalone HTML page. Each document after the
// first starts on a new printed page.
func Page(docs ...Document) string {
	return page(false, docs)
}

// PrintPage is Page plus a screen-only toolbar whose button opens the host
// print dialog.
func PrintPage(docs ...Document) string {
	return page(true, docs)
}

func page(toolbar bool, docs []Document) string {
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title   string
		Toolbar bool
		Docs    []Document
	}{
		Title:   pageTitle(docs),
		Toolbar: toolbar,
		Docs:    docs,
	})
	if err != nil {
		panic(fmt.Sprintf("render page: %v", err))
	}
	return buf.String()
}

func pageTitle(docs []Document) string {
	if len(docs) == 1 && docs[0].FormNumber != "" {
		return "FAA Form 8130-3 " + docs[0].FormNumber
	}
	return "FAA Form 8130-3"
}
