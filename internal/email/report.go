package email

import "time"

// ReportSubjectPrefix is prepended to the subject of forwarded reports.
const ReportSubjectPrefix = "[Phishing report]"

// Report is a parsed paste packaged for delivery to a security mailbox.
type Report struct {
	ID          string           `json:"id"`
	SubmittedAt time.Time        `json:"submittedAt"`
	Recipient   string           `json:"recipient,omitempty"`
	Parsed      ParsedEmail      `json:"parsed"`
	Validation  ValidationResult `json:"validation"`

	SenderPreview  string `json:"senderPreview"`
	SubjectPreview string `json:"subjectPreview"`
	BodyPreview    string `json:"bodyPreview"`
}

// Subject returns the subject line used when the report is delivered.
func (r *Report) Subject() string {
	return ReportSubjectPrefix + " " + r.SubjectPreview
}
