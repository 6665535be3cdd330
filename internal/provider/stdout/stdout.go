// Package stdout implements a Provider that prints reports to standard output.
package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shineum/mailsift/internal/email"
)

const separator = "========================================\n"

// Provider prints reports to stdout in a human-readable format.
type Provider struct {
	// writer is the output destination, defaulting to os.Stdout.
	writer io.Writer
}

// New creates a new stdout Provider that writes to os.Stdout.
func New() *Provider {
	return &Provider{writer: os.Stdout}
}

// NewWithWriter creates a new stdout Provider that writes to the given writer.
// This is useful for testing.
func NewWithWriter(w io.Writer) *Provider {
	return &Provider{writer: w}
}

// Send prints the report in a readable format.
// It always returns nil (success).
func (p *Provider) Send(_ context.Context, report *email.Report) error {
	var b strings.Builder
	parsed := report.Parsed

	b.WriteString(separator)
	b.WriteString(fmt.Sprintf("Report: %s\n", report.ID))
	if report.Recipient != "" {
		b.WriteString(fmt.Sprintf("Recipient: %s\n", report.Recipient))
	}
	b.WriteString(fmt.Sprintf("Sender: %s\n", report.SenderPreview))
	b.WriteString(fmt.Sprintf("Subject: %s\n", report.SubjectPreview))

	if !parsed.Success {
		b.WriteString(fmt.Sprintf("Warning: %s\n", parsed.Error))
	}
	if len(report.Validation.Errors) > 0 {
		b.WriteString(fmt.Sprintf("Validation: %s\n", strings.Join(report.Validation.Errors, "; ")))
	}

	if parsed.Headers != "" {
		b.WriteString(fmt.Sprintf("Headers (%s):\n", formatSize(len(parsed.Headers))))
		b.WriteString(parsed.Headers + "\n")
	}

	b.WriteString(fmt.Sprintf("Body (%s):\n", formatSize(len(parsed.Body))))
	b.WriteString(parsed.Body + "\n")
	b.WriteString(separator)

	// stdout delivery is best effort; a failed write is not a delivery error
	_, _ = fmt.Fprint(p.writer, b.String())

	return nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "stdout"
}

// formatSize formats a byte count into a human-readable string.
func formatSize(bytes int) string {
	const (
		kb = 1024
		mb = kb * 1024
	)

	switch {
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
