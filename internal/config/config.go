// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback for mailsift.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// defaultMaxInputBytes is 5 MB in bytes.
const defaultMaxInputBytes = 5242880

const defaultPreviewLength = 100

// Config holds the complete application configuration.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Preview PreviewConfig `yaml:"preview"`
	Report  ReportConfig  `yaml:"report"`
	SES     SESConfig     `yaml:"ses"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig bounds how much pasted text is read.
type InputConfig struct {
	MaxBytes int64 `yaml:"max_bytes" validate:"gt=0"`
}

// PreviewConfig controls the length of field previews.
type PreviewConfig struct {
	Length int `yaml:"length" validate:"gt=0"`
}

// ReportConfig selects where parsed reports are forwarded.
type ReportConfig struct {
	Provider  string `yaml:"provider" validate:"omitempty,oneof=stdout ses"`
	Recipient string `yaml:"recipient" validate:"omitempty,email"`
}

// SESConfig holds AWS SES v2 configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Sender          string `yaml:"sender" validate:"omitempty,email"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the SES requirements of the selected
// provider.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Report.Provider == "ses" {
		if !c.SESConfigured() {
			return errors.New("invalid configuration: ses provider requires SES_REGION and SES_SENDER")
		}
		if c.Report.Recipient == "" {
			return errors.New("invalid configuration: ses provider requires REPORT_RECIPIENT")
		}
	}

	return nil
}

// SESConfigured returns true if the SES region and sender are set.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != "" && c.SES.Sender != ""
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Input.MaxBytes = defaultMaxInputBytes
	c.Preview.Length = defaultPreviewLength
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("INPUT_MAX_BYTES"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Input.MaxBytes = size
		}
	}
	if v := os.Getenv("PREVIEW_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Preview.Length = n
		}
	}

	if v := os.Getenv("REPORT_PROVIDER"); v != "" {
		c.Report.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("REPORT_RECIPIENT"); v != "" {
		c.Report.Recipient = v
	}

	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}
	if v := os.Getenv("SES_SENDER"); v != "" {
		c.SES.Sender = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
