package cert

import (
	"fmt"
	"strings"
)

// Validator checks drafts before they are sent to the API. Fetched records are
// never validated; the renderer shows whatever the API returned.
type Validator struct {
	MaxItems       int
	MaxDescription int
}

func (v Validator) Validate(draft Draft) ValidationResult {
	errors := make([]ValidationErrorItem, 0)

	if strings.TrimSpace(draft.OrganizationName) == "" {
		errors = append(errors, errItem("FAA-8130-REQ-004", "organizationName", "Organization name is required"))
	}
	if strings.TrimSpace(draft.FormTrackingNumber) == "" {
		errors = append(errors, errItem("FAA-8130-REQ-003", "formTrackingNumber", "Form tracking number is required"))
	}
	if len(draft.Items) == 0 {
		errors = append(errors, errItem("FAA-8130-REQ-006", "items", "At least one item is required"))
	}
	if v.MaxItems > 0 && len(draft.Items) > v.MaxItems {
		errors = append(errors, errItem("FAA-8130-LIMIT-001", "items", fmt.Sprintf("Too many items (max %d)", v.MaxItems)))
	}

	for i, item := range draft.Items {
		path := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Description) == "" {
			errors = append(errors, errItem("FAA-8130-REQ-007", path+".description", "Description is required"))
		}
		if v.MaxDescription > 0 && len(item.Description) > v.MaxDescription {
			errors = append(errors, errItem("FAA-8130-LIMIT-002", path+".description", "Description too long"))
		}
		if strings.TrimSpace(item.PartNumber) == "" {
			errors = append(errors, errItem("FAA-8130-REQ-008", path+".partNumber", "Part number is required"))
		}
	}

	return ValidationResult{
		Valid:  len(errors) == 0,
		Errors: errors,
	}
}

func errItem(ruleID, path, message string) ValidationErrorItem {
	return ValidationErrorItem{
		Code:    ruleID,
		Path:    path,
		Message: message,
		RuleID:  ruleID,
	}
}
