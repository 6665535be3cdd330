// Package email defines the data model shared by the extractor, the validator
// and the report providers.
package email

import "errors"

// ErrNoContent is reported when nothing usable could be recovered from the input.
var ErrNoContent = errors.New("could not extract sender, subject or body from the pasted text; check the format and try again")

// ParsedEmail holds the fields recovered from a block of pasted email text.
// Every string field is populated on every parse, empty when nothing was found.
type ParsedEmail struct {
	Sender  string `json:"sender"`
	Subject string `json:"subject"`
	Headers string `json:"headers"`
	Body    string `json:"body"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err returns the diagnostic as an error, or nil when extraction succeeded.
func (p *ParsedEmail) Err() error {
	if p.Success {
		return nil
	}
	return ErrNoContent
}

// ValidationResult lists the plausibility checks a ParsedEmail failed,
// in check order.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}
