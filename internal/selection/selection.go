package selection

import (
	"errors"
	"strings"
)

// ErrEmptySelection is returned when no certificate was selected.
var ErrEmptySelection = errors.New("no certificates selected")

// NoSelectionMessage is the user-facing text for ErrEmptySelection.
const NoSelectionMessage = "Select at least one certificate to generate PDFs"

const separator = ","

// Selection is an ordered set of certificate ids. Order is the order in which
// the ids were chosen and drives the render order downstream.
type Selection struct {
	ids []string
}

// Collect builds a selection from user-checked ids. Blank ids are ignored and
// repeats keep their first position.
func Collect(ids []string) (Selection, error) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return Selection{}, ErrEmptySelection
	}
	return Selection{ids: out}, nil
}

// Parse decodes a batch target produced by Target.
func Parse(target string) (Selection, error) {
	return Collect(strings.Split(target, separator))
}

// Target encodes the selection as a single batch route token.
func (s Selection) Target() string {
	return strings.Join(s.ids, separator)
}

func (s Selection) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s Selection) Len() int { return len(s.ids) }
