package cert

import "strings"

// Filter returns the certificates whose tracking number, form number,
// organization, or any item part/serial number contains query
// (case-insensitive). Order is preserved.
func Filter(list []Certificate, query string) []Certificate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return list
	}
	out := make([]Certificate, 0, len(list))
	for _, c := range list {
		if matches(c, q) {
			out = append(out, c)
		}
	}
	return out
}

func matches(c Certificate, q string) bool {
	fields := []string{c.FormTrackingNumber, c.FormNumber, c.OrganizationName}
	for _, item := range c.Items {
		fields = append(fields, item.PartNumber, item.SerialNumber)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
