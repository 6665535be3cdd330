// Package main is the entry point for the mailsift command.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shineum/mailsift/internal/config"
	"github.com/shineum/mailsift/internal/email"
	"github.com/shineum/mailsift/internal/intake"
	"github.com/shineum/mailsift/internal/provider"
	"github.com/shineum/mailsift/internal/provider/ses"
	"github.com/shineum/mailsift/internal/provider/stdout"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	inPath := flag.String("in", "", "file containing the pasted email (default stdin)")
	asJSON := flag.Bool("json", false, "print the report as JSON")
	submit := flag.Bool("submit", false, "forward the report through the configured provider")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var prov provider.Provider
	if *submit {
		prov, err = selectProvider(ctx, cfg)
		if err != nil {
			slog.Error("failed to create provider", "error", err)
			os.Exit(1)
		}
	}

	svc := intake.New(intake.Options{
		Provider:      prov,
		Recipient:     cfg.Report.Recipient,
		PreviewLength: cfg.Preview.Length,
		MaxBytes:      cfg.Input.MaxBytes,
	})

	input, closeInput, err := openInput(*inPath)
	if err != nil {
		slog.Error("failed to open input", "error", err)
		os.Exit(1)
	}
	report, err := svc.ReadAndAnalyze(input)
	closeInput()
	if err != nil {
		slog.Error("failed to analyze input", "error", err)
		os.Exit(1)
	}

	if err := printReport(os.Stdout, report, *asJSON); err != nil {
		slog.Error("failed to print report", "error", err)
		os.Exit(1)
	}

	if *submit {
		if err := svc.Submit(ctx, report); err != nil {
			os.Exit(1)
		}
	}
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level. Logs go to stderr so stdout carries only the report.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// selectProvider chooses the report delivery backend based on configuration.
func selectProvider(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
	switch cfg.Report.Provider {
	case "ses":
		slog.Info("using AWS SES provider",
			"region", cfg.SES.Region,
			"sender", cfg.SES.Sender,
			"recipient", cfg.Report.Recipient,
		)
		return ses.New(ctx, ses.SESProviderConfig{
			Region:          cfg.SES.Region,
			AccessKeyID:     cfg.SES.AccessKeyID,
			SecretAccessKey: cfg.SES.SecretAccessKey,
			Sender:          cfg.SES.Sender,
		})

	case "stdout", "":
		slog.Info("using stdout provider")
		return stdout.NewWithWriter(os.Stderr), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Report.Provider)
	}
}

// openInput returns the reader for path, or stdin when path is empty.
func openInput(path string) (io.Reader, func(), error) {
	if path == "" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// printReport writes the report as indented JSON or as a short summary.
func printReport(w io.Writer, report *email.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Fprintf(w, "Sender:  %s\n", report.SenderPreview)
	fmt.Fprintf(w, "Subject: %s\n", report.SubjectPreview)
	fmt.Fprintf(w, "Body:    %s\n", report.BodyPreview)
	if !report.Parsed.Success {
		fmt.Fprintf(w, "Warning: %s\n", report.Parsed.Error)
	}
	for _, e := range report.Validation.Errors {
		fmt.Fprintf(w, "Invalid: %s\n", e)
	}
	_, err := fmt.Fprintf(w, "Report:  %s\n", report.ID)
	return err
}
