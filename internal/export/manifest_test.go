package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/yourorg/aviationcerts/internal/batch"
	"github.com/yourorg/aviationcerts/internal/cert"
)

func TestWriteManifest(t *testing.T) {
	result := batch.Result{
		Succeeded: []cert.Certificate{
			{ID: "A", FormNumber: "F-1", FormTrackingNumber: "T-1", Items: []cert.LineItem{{Item: "1"}}},
			{ID: "C", FormNumber: "F-3"},
		},
		Failed: []batch.Failure{{ID: "B", Reason: "not found"}},
	}
	report := Report{
		Artifacts: []Artifact{{Name: "FAA_Form_8130-3_F-1.pdf", RecordID: "A"}},
		Failures:  []Failure{{RecordID: "C", Name: "FAA_Form_8130-3_F-3.pdf", Reason: "chromium crashed"}},
	}

	var buf bytes.Buffer
	if err := WriteManifest(&buf, result, report); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(certificatesSheet)
	if err != nil {
		t.Fatalf("read certificates: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "A" || rows[1][3] != "1" || rows[1][4] != "FAA_Form_8130-3_F-1.pdf" || rows[1][5] != StatusExported {
		t.Fatalf("unexpected row %v", rows[1])
	}
	if rows[2][0] != "C" || rows[2][5] != StatusExportFailed {
		t.Fatalf("unexpected row %v", rows[2])
	}

	rows, err = f.GetRows(failuresSheet)
	if err != nil {
		t.Fatalf("read failures: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 failures, got %d", len(rows))
	}
	if rows[1][0] != "B" || rows[1][1] != StageFetch || rows[2][0] != "C" || rows[2][1] != StageExport {
		t.Fatalf("unexpected failures %v", rows[1:])
	}
}
