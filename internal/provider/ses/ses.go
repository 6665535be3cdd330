// Package ses implements a Provider that forwards reports via AWS SES v2.
package ses

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/shineum/mailsift/internal/email"
)

// maxRetries is the maximum number of retry attempts for transient failures.
const maxRetries = 3

// baseRetryDelay is the initial delay for exponential backoff.
const baseRetryDelay = 1 * time.Second

// headersFilename names the attachment carrying the recovered header block.
const headersFilename = "headers.txt"

// ErrNoRecipient is returned when a report has no destination mailbox.
var ErrNoRecipient = errors.New("report has no recipient")

// SESProviderConfig holds the configuration for creating a SESProvider.
type SESProviderConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Sender          string
}

// SESProvider forwards reports to a security mailbox via the AWS SES v2 API.
type SESProvider struct {
	sender     string
	client     SendEmailAPI
	retryDelay time.Duration
}

// SendEmailAPI is the interface for the SES v2 SendEmail operation.
// Used for testing with mock implementations.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// New creates a new SESProvider with the given configuration.
func New(ctx context.Context, cfg SESProviderConfig) (*SESProvider, error) {
	var opts []func(*awsconfig.LoadOptions) error

	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(cfg.Sender, sesv2.NewFromConfig(awsCfg)), nil
}

// NewWithClient creates a SESProvider with a custom client, used for testing.
func NewWithClient(sender string, client SendEmailAPI) *SESProvider {
	return &SESProvider{
		sender:     sender,
		client:     client,
		retryDelay: baseRetryDelay,
	}
}

// Send forwards a report via AWS SES v2.
// When a header block was recovered it is attached as a text file in a raw
// MIME message; otherwise the simple email format is used.
func (s *SESProvider) Send(ctx context.Context, report *email.Report) error {
	if report.Recipient == "" {
		return ErrNoRecipient
	}

	var input *sesv2.SendEmailInput

	if report.Parsed.Headers != "" {
		raw, err := buildRawMessage(s.sender, report)
		if err != nil {
			return fmt.Errorf("failed to build raw message: %w", err)
		}
		input = &sesv2.SendEmailInput{
			Content: &types.EmailContent{
				Raw: &types.RawMessage{
					Data: raw,
				},
			},
		}
	} else {
		input = buildSimpleInput(s.sender, report)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying SES API request",
				"report_id", report.ID,
				"attempt", attempt,
				"max_retries", maxRetries,
			)
			delay := backoffDelay(s.retryDelay, attempt)
			if err := sleepWithContext(ctx, delay); err != nil {
				return fmt.Errorf("context cancelled during retry wait: %w", err)
			}
		}

		_, err := s.client.SendEmail(ctx, input)
		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn("SES API error",
			"report_id", report.ID,
			"attempt", attempt,
			"error", err,
		)
	}

	return fmt.Errorf("SES API request failed after %d retries: %w", maxRetries, lastErr)
}

// Name returns the provider name.
func (s *SESProvider) Name() string {
	return "ses"
}

// buildSimpleInput creates a SES SendEmailInput for reports without a header block.
func buildSimpleInput(sender string, report *email.Report) *sesv2.SendEmailInput {
	return &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(sender),
		Destination: &types.Destination{
			ToAddresses: []string{report.Recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(report.Subject()),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(renderText(report)),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
}

// buildRawMessage constructs a raw MIME message with the header block attached.
func buildRawMessage(sender string, report *email.Report) ([]byte, error) {
	var buf bytes.Buffer

	// Write headers
	fmt.Fprintf(&buf, "From: %s\r\n", sender)
	fmt.Fprintf(&buf, "To: %s\r\n", report.Recipient)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", report.Subject()))
	fmt.Fprintf(&buf, "X-Mailsift-Report-ID: %s\r\n", report.ID)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")

	writer := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", writer.Boundary())

	// Write summary part
	bodyHeader := make(textproto.MIMEHeader)
	bodyHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	bodyHeader.Set("Content-Transfer-Encoding", "base64")
	part, err := writer.CreatePart(bodyHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := part.Write([]byte(encodeBase64WithLineBreaks([]byte(renderText(report))))); err != nil {
		return nil, fmt.Errorf("failed to write body part: %w", err)
	}

	// Write header block attachment
	attHeader := make(textproto.MIMEHeader)
	attHeader.Set("Content-Type", "text/plain; charset=UTF-8")
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", headersFilename))
	part, err = writer.CreatePart(attHeader)
	if err != nil {
		return nil, fmt.Errorf("failed to create attachment part: %w", err)
	}
	if _, err := part.Write([]byte(encodeBase64WithLineBreaks([]byte(report.Parsed.Headers)))); err != nil {
		return nil, fmt.Errorf("failed to write attachment part: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), nil
}

// renderText formats the report as the plain-text body sent to the security mailbox.
func renderText(report *email.Report) string {
	var b strings.Builder
	parsed := report.Parsed

	fmt.Fprintf(&b, "Report ID: %s\n", report.ID)
	if !report.SubmittedAt.IsZero() {
		fmt.Fprintf(&b, "Submitted: %s\n", report.SubmittedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "Sender: %s\n", parsed.Sender)
	fmt.Fprintf(&b, "Subject: %s\n", parsed.Subject)

	if !parsed.Success {
		fmt.Fprintf(&b, "Warning: %s\n", parsed.Error)
	}
	if len(report.Validation.Errors) > 0 {
		b.WriteString("Validation:\n")
		for _, e := range report.Validation.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	b.WriteString("\n")
	b.WriteString(parsed.Body)
	b.WriteString("\n")
	return b.String()
}

// encodeBase64WithLineBreaks encodes bytes to base64 with 76-character line breaks per RFC 2045.
func encodeBase64WithLineBreaks(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var lines []string
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		lines = append(lines, encoded[i:end])
	}
	return strings.Join(lines, "\r\n")
}

// backoffDelay returns the exponential backoff delay for the given attempt number.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// sleepWithContext waits for the specified duration or until the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
