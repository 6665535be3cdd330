// Package intake turns pasted email text into a validated report and hands it
// to a delivery provider.
package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shineum/mailsift/internal/email"
	"github.com/shineum/mailsift/internal/parser"
	"github.com/shineum/mailsift/internal/preview"
	"github.com/shineum/mailsift/internal/provider"
)

// ErrInputTooLarge is returned when a paste exceeds the configured byte limit.
var ErrInputTooLarge = errors.New("input exceeds maximum size")

// Options configures a Service.
type Options struct {
	// Provider delivers submitted reports. Submit fails when it is nil.
	Provider provider.Provider

	// Recipient is the security mailbox reports are addressed to.
	Recipient string

	// PreviewLength bounds field previews; preview.DefaultLength when zero.
	PreviewLength int

	// MaxBytes caps ReadAndAnalyze input; unlimited when zero.
	MaxBytes int64

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Service parses pastes and forwards the resulting reports.
type Service struct {
	opts Options
}

// New creates a Service with the given options.
func New(opts Options) *Service {
	if opts.PreviewLength == 0 {
		opts.PreviewLength = preview.DefaultLength
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{opts: opts}
}

// Analyze parses raw, validates the result and wraps both in a report.
// A paste nothing could be recovered from still yields a report; the
// diagnostic is logged as a warning and carried in the report.
func (s *Service) Analyze(raw string) *email.Report {
	parsed := parser.Parse(raw)
	validation := parser.Validate(parsed)

	report := &email.Report{
		ID:             uuid.NewString(),
		SubmittedAt:    s.opts.Now().UTC(),
		Recipient:      s.opts.Recipient,
		Parsed:         *parsed,
		Validation:     validation,
		SenderPreview:  preview.Text(parsed.Sender, s.opts.PreviewLength),
		SubjectPreview: preview.Text(parsed.Subject, s.opts.PreviewLength),
		BodyPreview:    preview.Text(parsed.Body, s.opts.PreviewLength),
	}

	if !parsed.Success {
		slog.Warn("extraction recovered no usable content",
			"report_id", report.ID,
			"input_bytes", len(raw),
			"error", parsed.Error,
		)
	}
	for _, msg := range validation.Errors {
		slog.Warn("validation failed",
			"report_id", report.ID,
			"reason", msg,
		)
	}

	slog.Debug("paste analyzed",
		"report_id", report.ID,
		"sender", report.SenderPreview,
		"subject", report.SubjectPreview,
		"header_bytes", len(parsed.Headers),
		"body_bytes", len(parsed.Body),
		"valid", validation.IsValid,
	)

	return report
}

// ReadAndAnalyze reads a paste from r and analyzes it. Input larger than
// MaxBytes is rejected with ErrInputTooLarge.
func (s *Service) ReadAndAnalyze(r io.Reader) (*email.Report, error) {
	if s.opts.MaxBytes > 0 {
		r = io.LimitReader(r, s.opts.MaxBytes+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if s.opts.MaxBytes > 0 && int64(len(data)) > s.opts.MaxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrInputTooLarge, s.opts.MaxBytes)
	}

	return s.Analyze(string(data)), nil
}

// Submit forwards a report through the configured provider.
func (s *Service) Submit(ctx context.Context, report *email.Report) error {
	if s.opts.Provider == nil {
		return errors.New("no report provider configured")
	}

	if err := s.opts.Provider.Send(ctx, report); err != nil {
		slog.Error("provider send failed",
			"provider", s.opts.Provider.Name(),
			"report_id", report.ID,
			"error", err,
		)
		return fmt.Errorf("%s provider: %w", s.opts.Provider.Name(), err)
	}

	slog.Info("report submitted",
		"provider", s.opts.Provider.Name(),
		"report_id", report.ID,
	)
	return nil
}
