package cert

import (
	"encoding/json"
	"testing"
)

func TestQuantity_AcceptsStringAndNumber(t *testing.T) {
	cases := map[string]Quantity{
		`{"quantity":"2 EA"}`: "2 EA",
		`{"quantity":3}`:      "3",
		`{"quantity":1.5}`:    "1.5",
		`{"quantity":null}`:   "",
	}
	for body, want := range cases {
		var item LineItem
		if err := json.Unmarshal([]byte(body), &item); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if item.Quantity != want {
			t.Errorf("%s: quantity = %q, want %q", body, item.Quantity, want)
		}
	}
}

func TestCertificate_DecodesAPIShape(t *testing.T) {
	body := `{
		"id": "42",
		"formNumber": "SUA-4246",
		"formTrackingNumber": "N225JD-0497",
		"returnToService": true,
		"user_id": 7,
		"items": [{"id": "a", "item": "1", "partNumber": "2524-015", "quantity": 1}],
		"user": {"id": 7, "name": "Ops", "company": "Fly Alliance"}
	}`
	var c Certificate
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ID != "42" || c.UserID != 7 || !c.ReturnToService {
		t.Fatalf("unexpected header fields: %+v", c)
	}
	if len(c.Items) != 1 || c.Items[0].Quantity != "1" {
		t.Fatalf("unexpected items: %+v", c.Items)
	}
	if c.User == nil || c.User.Company != "Fly Alliance" {
		t.Fatalf("unexpected user: %+v", c.User)
	}

	numeric := `{"id": 7, "formNumber": "F-7", "user_id": 3, "items": [{"id": 11, "item": "1", "quantity": 2}]}`
	var n Certificate
	if err := json.Unmarshal([]byte(numeric), &n); err != nil {
		t.Fatalf("unmarshal numeric ids: %v", err)
	}
	if n.ID != "7" || len(n.Items) != 1 || n.Items[0].ID != "11" {
		t.Fatalf("unexpected numeric ids: %+v", n)
	}
}

func TestID_RejectsNonInteger(t *testing.T) {
	for _, body := range []string{`{"id":1.5}`, `{"id":true}`, `{"id":{}}`} {
		var c Certificate
		if err := json.Unmarshal([]byte(body), &c); err == nil {
			t.Errorf("%s: expected error", body)
		}
	}
	var c Certificate
	if err := json.Unmarshal([]byte(`{"id":null}`), &c); err != nil || c.ID != "" {
		t.Errorf("null id: %q %v", c.ID, err)
	}
}
