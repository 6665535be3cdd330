package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shineum/mailsift/internal/email"
	"github.com/shineum/mailsift/internal/parser"
)

// mockProvider implements provider.Provider for testing.
type mockProvider struct {
	lastReport *email.Report
	sendErr    error
}

func (m *mockProvider) Send(_ context.Context, report *email.Report) error {
	m.lastReport = report
	return m.sendErr
}

func (m *mockProvider) Name() string {
	return "mock"
}

var fixedNow = time.Date(2025, 1, 7, 10, 0, 0, 0, time.FixedZone("CET", 3600))

func TestAnalyze(t *testing.T) {
	t.Parallel()

	s := New(Options{
		Recipient:     "soc@example.com",
		PreviewLength: 8,
		Now:           func() time.Time { return fixedNow },
	})

	report := s.Analyze("From: Alice <alice@example.com>\nSubject: Overdue invoice\n\nPlease wire the payment today.")

	if _, err := uuid.Parse(report.ID); err != nil {
		t.Errorf("ID: %q is not a UUID: %v", report.ID, err)
	}
	if !report.SubmittedAt.Equal(fixedNow) || report.SubmittedAt.Location() != time.UTC {
		t.Errorf("SubmittedAt: got %v, want %v in UTC", report.SubmittedAt, fixedNow)
	}
	if report.Recipient != "soc@example.com" {
		t.Errorf("Recipient: got %q, want %q", report.Recipient, "soc@example.com")
	}
	if report.Parsed.Sender != "alice@example.com" {
		t.Errorf("Parsed.Sender: got %q, want %q", report.Parsed.Sender, "alice@example.com")
	}
	if !report.Validation.IsValid {
		t.Errorf("Validation: unexpected errors %v", report.Validation.Errors)
	}
	if report.SenderPreview != "alice@ex..." {
		t.Errorf("SenderPreview: got %q, want %q", report.SenderPreview, "alice@ex...")
	}
	if report.SubjectPreview != "Overdue ..." {
		t.Errorf("SubjectPreview: got %q, want %q", report.SubjectPreview, "Overdue ...")
	}
	if report.Subject() != "[Phishing report] Overdue ..." {
		t.Errorf("Subject(): got %q, want %q", report.Subject(), "[Phishing report] Overdue ...")
	}
}

func TestAnalyze_UnusableInput(t *testing.T) {
	t.Parallel()

	s := New(Options{})
	report := s.Analyze("")

	if report.Parsed.Success {
		t.Error("Parsed.Success: got true, want false")
	}
	if report.Parsed.Error == "" {
		t.Error("Parsed.Error: got empty, want diagnostic")
	}
	want := []string{parser.MsgSenderMissing, parser.MsgSubjectShort, parser.MsgBodyShort}
	if strings.Join(report.Validation.Errors, "|") != strings.Join(want, "|") {
		t.Errorf("Validation.Errors: got %v, want %v", report.Validation.Errors, want)
	}
	if report.BodyPreview != "(empty)" {
		t.Errorf("BodyPreview: got %q, want %q", report.BodyPreview, "(empty)")
	}
}

func TestAnalyze_UniqueIDs(t *testing.T) {
	t.Parallel()

	s := New(Options{})
	a, b := s.Analyze("same"), s.Analyze("same")
	if a.ID == b.ID {
		t.Errorf("expected distinct report IDs, both %q", a.ID)
	}
	if a.Parsed != b.Parsed {
		t.Errorf("expected identical parse results, got %+v and %+v", a.Parsed, b.Parsed)
	}
}

func TestReadAndAnalyze(t *testing.T) {
	t.Parallel()

	s := New(Options{MaxBytes: 64})

	report, err := s.ReadAndAnalyze(strings.NewReader("Subject: Hello there\n\nbody text goes here"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Parsed.Subject != "Hello there" {
		t.Errorf("Parsed.Subject: got %q, want %q", report.Parsed.Subject, "Hello there")
	}
}

func TestReadAndAnalyze_ExactLimit(t *testing.T) {
	t.Parallel()

	s := New(Options{MaxBytes: 16})

	if _, err := s.ReadAndAnalyze(strings.NewReader(strings.Repeat("a", 16))); err != nil {
		t.Fatalf("unexpected error at limit: %v", err)
	}
}

func TestReadAndAnalyze_TooLarge(t *testing.T) {
	t.Parallel()

	s := New(Options{MaxBytes: 16})

	_, err := s.ReadAndAnalyze(strings.NewReader(strings.Repeat("a", 17)))
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("expected ErrInputTooLarge, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestReadAndAnalyze_ReadError(t *testing.T) {
	t.Parallel()

	s := New(Options{})

	_, err := s.ReadAndAnalyze(failingReader{})
	if err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Fatalf("expected wrapped read error, got %v", err)
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	mock := &mockProvider{}
	s := New(Options{Provider: mock})
	report := s.Analyze("From: a@b.com\n\nhello world, long enough")

	if err := s.Submit(context.Background(), report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastReport != report {
		t.Error("provider did not receive the report")
	}
}

func TestSubmit_ProviderError(t *testing.T) {
	t.Parallel()

	sendErr := errors.New("throttled")
	s := New(Options{Provider: &mockProvider{sendErr: sendErr}})

	err := s.Submit(context.Background(), s.Analyze("x"))
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "mock provider:") {
		t.Errorf("error should name the provider, got %q", err.Error())
	}
}

func TestSubmit_NoProvider(t *testing.T) {
	t.Parallel()

	s := New(Options{})
	if err := s.Submit(context.Background(), s.Analyze("x")); err == nil {
		t.Fatal("expected error without provider")
	}
}
