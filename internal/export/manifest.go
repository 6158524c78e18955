package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/yourorg/aviationcerts/internal/batch"
)

const (
	ManifestName = "FAA_Form_8130-3_manifest.xlsx"

	certificatesSheet = "Certificates"
	failuresSheet     = "Failures"

	StatusExported     = "exported"
	StatusExportFailed = "export failed"
	StageFetch         = "fetch"
	StageExport        = "export"
)

// WriteManifest writes an XLSX summary of a batch: one row per fetched
// certificate and one row per fetch or export failure.
func WriteManifest(w io.Writer, result batch.Result, report Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", certificatesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(failuresSheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(certificatesSheet)
	f.SetActiveSheet(activeIndex)

	artifacts := make(map[string]Artifact, len(report.Artifacts))
	for _, a := range report.Artifacts {
		artifacts[a.RecordID] = a
	}

	rows := [][]any{{"ID", "Form Number", "Form Tracking Number", "Items", "Artifact", "Status"}}
	for _, rec := range result.Succeeded {
		name, status := "", StatusExportFailed
		if a, ok := artifacts[rec.ID.String()]; ok {
			name, status = a.Name, StatusExported
		}
		rows = append(rows, []any{rec.ID.String(), rec.FormNumber, rec.FormTrackingNumber, len(rec.Items), name, status})
	}
	if err := writeRows(f, certificatesSheet, rows); err != nil {
		return err
	}

	rows = [][]any{{"ID", "Stage", "Reason"}}
	for _, fail := range result.Failed {
		rows = append(rows, []any{fail.ID, StageFetch, fail.Reason})
	}
	for _, fail := range report.Failures {
		rows = append(rows, []any{fail.RecordID, StageExport, fail.Reason})
	}
	if err := writeRows(f, failuresSheet, rows); err != nil {
		return err
	}

	_ = f.SetColWidth(certificatesSheet, "A", "C", 22)
	_ = f.SetColWidth(certificatesSheet, "E", "E", 44)
	_ = f.SetColWidth(failuresSheet, "A", "A", 22)
	_ = f.SetColWidth(failuresSheet, "C", "C", 60)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell := "A" + strconv.Itoa(i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
