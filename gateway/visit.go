package gateway

import (
	"strings"
)

// Visit is the body of a consultation summary request. It is validated and
// turned into a prompt, never stored.
type Visit struct {
	PatientName string `json:"patient_name"`
	DateOfVisit string `json:"date_of_visit"`
	Notes       string `json:"notes"`
}

// missingFields returns the JSON names of required fields that are blank.
func (v Visit) missingFields() []string {
	var missing []string
	if strings.TrimSpace(v.PatientName) == "" {
		missing = append(missing, "patient_name")
	}
	if strings.TrimSpace(v.DateOfVisit) == "" {
		missing = append(missing, "date_of_visit")
	}
	if strings.TrimSpace(v.Notes) == "" {
		missing = append(missing, "notes")
	}
	return missing
}
