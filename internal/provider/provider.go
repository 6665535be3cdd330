// Package provider defines the interface for report delivery backends.
package provider

import (
	"context"

	"github.com/shineum/mailsift/internal/email"
)

// Provider is the interface that report delivery backends must implement.
// Each provider forwards a parsed paste to wherever suspicious mail is
// triaged (e.g., stdout, a security mailbox via SES).
type Provider interface {
	// Send delivers a report through this provider.
	// It returns an error if the delivery fails.
	Send(ctx context.Context, report *email.Report) error

	// Name returns the human-readable name of this provider.
	Name() string
}
