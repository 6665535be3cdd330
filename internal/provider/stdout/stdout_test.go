package stdout

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shineum/mailsift/internal/email"
)

func sampleReport() *email.Report {
	return &email.Report{
		ID:        "8b0f3c1e-0000-4000-8000-000000000001",
		Recipient: "soc@example.com",
		Parsed: email.ParsedEmail{
			Sender:  "alerts@paypa1.com",
			Subject: "Your account is limited",
			Headers: "From: alerts@paypa1.com\nSubject: Your account is limited",
			Body:    "Confirm your details at the link below.",
			Success: true,
		},
		Validation:     email.ValidationResult{IsValid: true, Errors: []string{}},
		SenderPreview:  "alerts@paypa1.com",
		SubjectPreview: "Your account is limited",
		BodyPreview:    "Confirm your details at the link below.",
	}
}

func TestSend_BasicReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	err := p.Send(context.Background(), sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Report: 8b0f3c1e-0000-4000-8000-000000000001") {
		t.Error("output missing report id")
	}
	if !strings.Contains(output, "Recipient: soc@example.com") {
		t.Error("output missing recipient")
	}
	if !strings.Contains(output, "Sender: alerts@paypa1.com") {
		t.Error("output missing sender")
	}
	if !strings.Contains(output, "Subject: Your account is limited") {
		t.Error("output missing subject")
	}
	if !strings.Contains(output, "Headers (") {
		t.Error("output missing header block")
	}
	if !strings.Contains(output, "Confirm your details at the link below.") {
		t.Error("output missing body text")
	}
	if strings.Contains(output, "Warning:") {
		t.Error("output should not contain a warning for a successful parse")
	}
	if strings.Contains(output, "Validation:") {
		t.Error("output should not contain validation line when there are no errors")
	}
	if !strings.HasPrefix(output, separator) {
		t.Error("output should start with separator line")
	}
	if !strings.HasSuffix(output, separator) {
		t.Error("output should end with separator line")
	}
}

func TestSend_FailedParse(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	report := &email.Report{
		ID: "id-1",
		Parsed: email.ParsedEmail{
			Body:  "hi",
			Error: email.ErrNoContent.Error(),
		},
		Validation: email.ValidationResult{
			Errors: []string{"Email sender not found", "Subject line too short or missing"},
		},
		SenderPreview:  "(empty)",
		SubjectPreview: "(empty)",
	}

	if err := p.Send(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Warning: "+email.ErrNoContent.Error()) {
		t.Error("output missing parse warning")
	}
	if !strings.Contains(output, "Validation: Email sender not found; Subject line too short or missing") {
		t.Error("output missing validation errors")
	}
	if strings.Contains(output, "Headers (") {
		t.Error("output should not contain header block when none was recovered")
	}
	if strings.Contains(output, "Recipient:") {
		t.Error("output should not contain recipient when none is set")
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	p := New()
	if p.Name() != "stdout" {
		t.Errorf("Name: got %q, want %q", p.Name(), "stdout")
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		bytes int
		want  string
	}{
		{name: "zero bytes", bytes: 0, want: "0 B"},
		{name: "small bytes", bytes: 512, want: "512 B"},
		{name: "kilobytes", bytes: 46080, want: "45.0 KB"},
		{name: "megabytes", bytes: 1258291, want: "1.2 MB"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := formatSize(tt.bytes)
			if got != tt.want {
				t.Errorf("formatSize(%d): got %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
