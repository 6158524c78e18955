package export

import (
	"strings"

	"github.com/yourorg/aviationcerts/internal/render"
)

const (
	filenamePrefix   = "FAA_Form_8130-3_"
	fallbackFilename = "certificate"
)

var unsafeFilename = strings.NewReplacer("/", "-", "\\", "-", "\x00", "")

// Filename names the artifact of doc after its form number.
func Filename(doc render.Document) string {
	name := strings.TrimSpace(unsafeFilename.Replace(doc.FormNumber))
	if name == "" || name == "." || name == ".." {
		name = fallbackFilename
	}
	return filenamePrefix + name + ".pdf"
}
