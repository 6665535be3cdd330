package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/shineum/mailsift/internal/email"
)

const (
	minSubjectLength   = 3
	minValidBodyLength = 10
)

// Validation messages, reported in check order.
const (
	MsgSenderMissing = "Email sender not found"
	MsgSenderInvalid = "Invalid email format for sender"
	MsgSubjectShort  = "Subject line too short or missing"
	MsgBodyShort     = "Email body too short or missing"
)

// Validate checks a parsed paste for plausibility. Every check runs, so the
// result lists all failures in sender, subject, body order.
func Validate(p *email.ParsedEmail) email.ValidationResult {
	if p == nil {
		p = &email.ParsedEmail{}
	}

	errs := []string{}

	switch {
	case p.Sender == "":
		errs = append(errs, MsgSenderMissing)
	case !strings.Contains(p.Sender, "@"):
		errs = append(errs, MsgSenderInvalid)
	}

	if utf8.RuneCountInString(p.Subject) < minSubjectLength {
		errs = append(errs, MsgSubjectShort)
	}

	if utf8.RuneCountInString(p.Body) < minValidBodyLength {
		errs = append(errs, MsgBodyShort)
	}

	return email.ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}
