package render

import (
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/yourorg/aviationcerts/internal/cert"
)

// Block is one numbered section of the form.
type Block struct {
	Number  string
	Label   string
	Lines   []string
	Checks  []Check
	Note    string
	Overlay bool
}

// Value returns the block text on one line.
func (b Block) Value() string {
	return strings.Join(b.Lines, " ")
}

type Check struct {
	Label   string
	Checked bool
}

// Row is one line of the items table (blocks 6-11).
type Row struct {
	Item         string
	Description  string
	PartNumber   string
	Quantity     string
	SerialNumber string
	Status       string
}

// Layout is the structured, fixed-form representation of a certificate.
type Layout struct {
	Blocks []Block
	Rows   []Row
}

// Block looks up a block by its form number ("3", "13a", ...).
func (l Layout) Block(number string) (Block, bool) {
	for _, b := range l.Blocks {
		if b.Number == number {
			return b, true
		}
	}
	return Block{}, false
}

// BlockNumbers lists every block the form always carries, in form order.
var BlockNumbers = []string{
	"1", "2", "3", "4", "5",
	"6", "7", "8", "9", "10", "11",
	"12",
	"13a", "13b", "13c", "13d", "13e",
	"14a", "14b", "14c", "14d", "14e",
}

const returnToServiceNote = "Certifies that unless otherwise specified in Block 12, the work identified " +
	"in Block 11 and described in Block 12 was accomplished in accordance with Title 14, " +
	"Code of Federal Regulations, part 43 and in respect to that work, the items are " +
	"approved for return to service."

func buildLayout(rec cert.Certificate, flag bool) Layout {
	text := func(number, label string, lines ...string) Block {
		return Block{Number: number, Label: label, Lines: nonEmpty(lines)}
	}

	blocks := []Block{
		text("1", "Approving Civil Aviation Authority / Country:", joinNonEmpty("/", rec.ApprovingAuthority, rec.ApprovingCountry)),
		text("2", "AUTHORIZED RELEASE CERTIFICATE", "FAA Form 8130-3, Airworthiness Approval Tag"),
		text("3", "Form Tracking Number:", rec.FormTrackingNumber),
		text("4", "Organization Name and Address:", rec.OrganizationName, rec.OrganizationAddress),
		text("5", "Work Order/Contract/Invoice Number:", rec.WorkOrderContractInvoiceNumber),
		text("6", "Item"),
		text("7", "Description"),
		text("8", "Part Number"),
		text("9", "Quantity"),
		text("10", "Serial Number"),
		text("11", "Status/Work"),
		text("12", "Remarks:", rec.Remarks),
		{
			Number: "13a",
			Label:  "Certifies the items identified above were manufactured in conformity to:",
			Checks: []Check{
				{Label: "Approved design data and are in a condition for safe operation.", Checked: rec.ConformityApprovedDesign},
				{Label: "Non-approved design data specified in Block 12.", Checked: rec.ConformityNonApprovedDesign},
			},
			Overlay: !flag,
		},
		text("13b", "Authorized Signature:"),
		text("13c", "Approval/Authorization No.:", rec.ApprovalAuthorizationNo),
		text("13d", "Name (Typed or Printed):", rec.Name13),
		text("13e", "Date (dd/mmm/yyyy):", formatDate(rec.Date13)),
		{
			Number: "14a",
			Checks: []Check{
				{Label: "14 CFR 43.9 Return to Service", Checked: rec.ReturnToService},
				{Label: "Other regulation specified in Block 12", Checked: rec.OtherRegulation},
			},
			Note: returnToServiceNote,
		},
		text("14b", "Authorized Signature:"),
		text("14c", "Approval/Certificate No.:", rec.ApprovalCertificateNo),
		text("14d", "Name (Typed or Printed):", rec.Name14),
		text("14e", "Date (dd/mmm/yyyy):", formatDate(rec.Date14)),
	}

	rows := make([]Row, 0, len(rec.Items))
	for _, item := range rec.Items {
		rows = append(rows, Row{
			Item:         item.Item,
			Description:  item.Description,
			PartNumber:   item.PartNumber,
			Quantity:     item.Quantity.String(),
			SerialNumber: item.SerialNumber,
			Status:       item.Status,
		})
	}
	return Layout{Blocks: blocks, Rows: rows}
}

// formatDate shows ISO dates as dd/Mon/yyyy and anything else verbatim.
func formatDate(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(openapi_types.DateFormat) {
		return v
	}
	day := v[:len(openapi_types.DateFormat)]
	if rest := v[len(day):]; rest != "" && rest[0] != 'T' && rest[0] != ' ' {
		return v
	}
	d, err := time.Parse(openapi_types.DateFormat, day)
	if err != nil {
		return v
	}
	return d.Format("02/Jan/2006")
}

func joinNonEmpty(sep string, parts ...string) string {
	return strings.Join(nonEmpty(parts), sep)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
