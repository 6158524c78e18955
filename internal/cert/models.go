package cert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Certificate mirrors the FAA Form 8130-3 record served by the certificates API.
type Certificate struct {
	ID                             ID         `json:"id"`
	FormNumber                     string     `json:"formNumber"`
	FormTrackingNumber             string     `json:"formTrackingNumber"`
	OrganizationName               string     `json:"organizationName"`
	OrganizationAddress            string     `json:"organizationAddress"`
	WorkOrderContractInvoiceNumber string     `json:"workOrderContractInvoiceNumber"`
	ApprovingAuthority             string     `json:"approvingAuthority"`
	ApprovingCountry               string     `json:"approvingCountry"`
	Remarks                        string     `json:"remarks"`
	ConformityApprovedDesign       bool       `json:"conformityApprovedDesign"`
	ConformityNonApprovedDesign    bool       `json:"conformityNonApprovedDesign"`
	ReturnToService                bool       `json:"returnToService"`
	OtherRegulation                bool       `json:"otherRegulation"`
	AuthorizedSignature13          string     `json:"authorizedSignature13"`
	ApprovalAuthorizationNo        string     `json:"approvalAuthorizationNo"`
	AuthorizedSignature14          string     `json:"authorizedSignature14"`
	ApprovalCertificateNo          string     `json:"approvalCertificateNo"`
	Name13                         string     `json:"name13"`
	Date13                         string     `json:"date13"`
	Name14                         string     `json:"name14"`
	Date14                         string     `json:"date14"`
	Status                         string     `json:"status,omitempty"`
	UserID                         int        `json:"user_id,omitempty"`
	CreatedAt                      string     `json:"created_at,omitempty"`
	UpdatedAt                      string     `json:"updated_at,omitempty"`
	Items                          []LineItem `json:"items"`
	User                           *Owner     `json:"user,omitempty"`
}

// LineItem is one row of blocks 6-11.
type LineItem struct {
	ID           ID       `json:"id,omitempty"`
	Item         string   `json:"item"`
	Description  string   `json:"description"`
	PartNumber   string   `json:"partNumber"`
	Quantity     Quantity `json:"quantity"`
	SerialNumber string   `json:"serialNumber"`
	Status       string   `json:"status"`
}

type Owner struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Company   string `json:"company"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ToggleState is the payload of GET /api/toggle-state.
type ToggleState struct {
	Enabled bool `json:"enabled"`
}

// Draft is the create/update payload for a certificate.
type Draft struct {
	FormNumber                     string     `json:"formNumber"`
	FormTrackingNumber             string     `json:"formTrackingNumber"`
	OrganizationName               string     `json:"organizationName"`
	OrganizationAddress            string     `json:"organizationAddress"`
	WorkOrderContractInvoiceNumber string     `json:"workOrderContractInvoiceNumber"`
	ApprovingAuthority             string     `json:"approvingAuthority"`
	ApprovingCountry               string     `json:"approvingCountry"`
	Remarks                        string     `json:"remarks"`
	ConformityApprovedDesign       bool       `json:"conformityApprovedDesign"`
	ConformityNonApprovedDesign    bool       `json:"conformityNonApprovedDesign"`
	ReturnToService                bool       `json:"returnToService"`
	OtherRegulation                bool       `json:"otherRegulation"`
	AuthorizedSignature13          string     `json:"authorizedSignature13"`
	ApprovalAuthorizationNo        string     `json:"approvalAuthorizationNo"`
	AuthorizedSignature14          string     `json:"authorizedSignature14"`
	ApprovalCertificateNo          string     `json:"approvalCertificateNo"`
	Name13                         string     `json:"name13"`
	Date13                         string     `json:"date13"`
	Name14                         string     `json:"name14"`
	Date14                         string     `json:"date14"`
	Status                         string     `json:"status,omitempty"`
	Items                          []LineItem `json:"items"`
}

type ValidationErrorItem struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
	RuleID  string `json:"ruleId"`
}

type ValidationResult struct {
	Valid  bool                  `json:"valid"`
	Errors []ValidationErrorItem `json:"errors"`
}

// Quantity is display text. Older API versions send it as a number, newer
// ones as a string; both decode to the same text.
type Quantity string

func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*q = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*q = Quantity(strconv.FormatInt(i, 10))
		return nil
	}
	*q = Quantity(n.String())
	return nil
}

func (q Quantity) String() string { return string(q) }

// ID is an opaque record identifier. Integer-keyed backends send it as a
// JSON number; it is always handled as text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("id: not a string or integer: %s", data)
	}
	*id = ID(strconv.FormatInt(n, 10))
	return nil
}

func (id ID) String() string { return string(id) }
