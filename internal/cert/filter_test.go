package cert

import "testing"

func TestFilter(t *testing.T) {
	list := []Certificate{
		{ID: "1", FormTrackingNumber: "N225JD-0497", Items: []LineItem{{PartNumber: "2524-015", SerialNumber: "930527-7"}}},
		{ID: "2", FormTrackingNumber: "N225JD-0498", Items: []LineItem{{PartNumber: "1234-567", SerialNumber: "ABC123-4"}}},
		{ID: "3", OrganizationName: "Fly Alliance"},
	}

	if got := Filter(list, ""); len(got) != 3 {
		t.Fatalf("empty query should keep all, got %d", len(got))
	}
	if got := Filter(list, "abc123"); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("serial search = %+v", got)
	}
	got := Filter(list, "n225jd")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
		t.Fatalf("tracking search should keep order, got %+v", got)
	}
	if got := Filter(list, "alliance"); len(got) != 1 || got[0].ID != "3" {
		t.Fatalf("organization search = %+v", got)
	}
}
