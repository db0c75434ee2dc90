// Package settings loads process-wide settings from the environment.
//
// Every variable is prefixed with SANTA_. Values may also come from a .env
// file; variables already set in the environment take precedence over it.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultLimit is the number of draw attempts when SANTA_LIMIT is unset.
	DefaultLimit = 30

	// DefaultHTTPTimeout bounds each call to the mail API.
	DefaultHTTPTimeout = 10 * time.Second

	// EnvFile is the dotenv file read by Load, relative to the working directory.
	EnvFile = ".env"
)

// Secret holds a credential and keeps it out of logs and formatted output.
type Secret string

// Value returns the secret in clear text.
func (s Secret) Value() string {
	return string(s)
}

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "**********"
}

func (s Secret) GoString() string {
	return s.String()
}

// Settings holds the runtime configuration loaded from environment variables.
type Settings struct {
	// MailgunAPIURL is the base URL of the Mailgun domain API, e.g.
	// https://api.mailgun.net/v3/mg.example.com (from SANTA_MAILGUN_API_URL)
	MailgunAPIURL string

	// MailgunAPIKey authenticates against the Mailgun API (from SANTA_MAILGUN_API_KEY)
	MailgunAPIKey Secret

	// Limit is the maximum number of draw attempts (from SANTA_LIMIT)
	Limit int

	// DefaultFrom and DefaultSubject apply to games that do not set their own
	// (from SANTA_DEFAULT_NOTIFICATION_FROM, SANTA_DEFAULT_NOTIFICATION_SUBJECT)
	DefaultFrom    string
	DefaultSubject string

	// Debug enables DebugToEmail redirection (from SANTA_DEBUG)
	Debug bool

	// DebugToEmail receives every notification instead of the real givers
	// when Debug is on (from SANTA_DEBUG_TO_EMAIL)
	DebugToEmail string

	// RedisURL enables draw history when set (from SANTA_REDIS_URL)
	RedisURL string

	// HTTPTimeout bounds each mail API request (from SANTA_TIMEOUT)
	HTTPTimeout time.Duration
}

// Load reads the .env file in the working directory, if any, then builds and
// validates Settings from the environment.
func Load() (*Settings, error) {
	return LoadFile(EnvFile)
}

// LoadFile is Load with an explicit dotenv path. A missing file is not an error.
func LoadFile(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	return FromEnv()
}

// FromEnv builds and validates Settings from the process environment only.
func FromEnv() (*Settings, error) {
	s := &Settings{
		MailgunAPIURL:  os.Getenv("SANTA_MAILGUN_API_URL"),
		MailgunAPIKey:  Secret(os.Getenv("SANTA_MAILGUN_API_KEY")),
		Limit:          DefaultLimit,
		DefaultFrom:    os.Getenv("SANTA_DEFAULT_NOTIFICATION_FROM"),
		DefaultSubject: os.Getenv("SANTA_DEFAULT_NOTIFICATION_SUBJECT"),
		DebugToEmail:   os.Getenv("SANTA_DEBUG_TO_EMAIL"),
		RedisURL:       os.Getenv("SANTA_REDIS_URL"),
		HTTPTimeout:    DefaultHTTPTimeout,
	}

	if v := os.Getenv("SANTA_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SANTA_LIMIT as an integer: %w", err)
		}
		s.Limit = limit
	}

	if v := os.Getenv("SANTA_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SANTA_DEBUG as a boolean: %w", err)
		}
		s.Debug = debug
	}

	if v := os.Getenv("SANTA_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SANTA_TIMEOUT as a duration: %w", err)
		}
		s.HTTPTimeout = timeout
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate checks values that are always required to be sane. Mail API
// credentials are only checked by ValidateForDelivery, so dry runs work
// without them.
func (s *Settings) Validate() error {
	if s.Limit < 1 {
		return fmt.Errorf("SANTA_LIMIT must be >= 1, got %d", s.Limit)
	}

	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("SANTA_TIMEOUT must be positive, got %s", s.HTTPTimeout)
	}

	if s.MailgunAPIURL != "" {
		if err := validateURL(s.MailgunAPIURL, "http", "https"); err != nil {
			return fmt.Errorf("invalid SANTA_MAILGUN_API_URL: %w", err)
		}
	}

	if s.RedisURL != "" {
		if err := validateURL(s.RedisURL, "redis", "rediss"); err != nil {
			return fmt.Errorf("invalid SANTA_REDIS_URL: %w", err)
		}
	}

	if s.Debug && s.DebugToEmail == "" {
		return fmt.Errorf("SANTA_DEBUG_TO_EMAIL is required when SANTA_DEBUG is enabled")
	}

	return nil
}

// ValidateForDelivery checks that real emails can be sent.
func (s *Settings) ValidateForDelivery() error {
	if s.MailgunAPIURL == "" {
		return fmt.Errorf("SANTA_MAILGUN_API_URL environment variable is required")
	}

	if s.MailgunAPIKey == "" {
		return fmt.Errorf("SANTA_MAILGUN_API_KEY environment variable is required")
	}

	return nil
}

// RedirectTo returns the address that should receive every notification, or
// "" when messages go to the real givers.
func (s *Settings) RedirectTo() string {
	if s.Debug {
		return s.DebugToEmail
	}
	return ""
}

// HistoryEnabled reports whether completed draws should be recorded.
func (s *Settings) HistoryEnabled() bool {
	return s.RedisURL != ""
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, scheme := range schemes {
		if u.Scheme == scheme {
			if u.Host == "" {
				return fmt.Errorf("missing host in '%s'", raw)
			}
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme '%s' (expected one of %v)", u.Scheme, schemes)
}
