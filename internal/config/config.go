// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/cover-letter-studio/internal/schemas"
)

// DefaultAPIURL is used when neither the config file, a flag nor
// COVER_LETTER_API_URL names the service.
const DefaultAPIURL = "http://localhost:8000"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Service
	APIURL string `json:"api_url,omitempty"` // Base URL of the cover letter service
	APIKey string `json:"api_key,omitempty"` // Key exchanged for a bearer token

	// Job context sent with new drafts
	JobTitle       string `json:"job_title,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	UserBackground string `json:"user_background,omitempty"`
	UserQuestion   string `json:"user_question,omitempty"`

	// Timing, as Go durations ("3s", "1m")
	AutoSaveDelay  string `json:"autosave_delay,omitempty"`
	RequestTimeout string `json:"request_timeout,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := schemas.Validate(schemas.Config, data); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return &cfg, nil
}

// FromEnv returns a Config holding the values of COVER_LETTER_API_URL and
// COVER_LETTER_API_KEY.
func FromEnv() Config {
	return Config{
		APIURL: os.Getenv("COVER_LETTER_API_URL"),
		APIKey: os.Getenv("COVER_LETTER_API_KEY"),
	}
}

// Validate checks that the configuration has valid values.
// Required job fields are not checked here; draft creation validates them.
func (c *Config) Validate() error {
	if c.APIURL != "" {
		u, err := url.Parse(c.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config error: 'api_url' must be an absolute URL, got %q", c.APIURL)
		}
	}
	if _, err := parseDuration("autosave_delay", c.AutoSaveDelay); err != nil {
		return err
	}
	if _, err := parseDuration("request_timeout", c.RequestTimeout); err != nil {
		return err
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file and environment values beneath CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.APIURL == "" {
		result.APIURL = defaults.APIURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.JobTitle == "" {
		result.JobTitle = defaults.JobTitle
	}
	if result.CompanyName == "" {
		result.CompanyName = defaults.CompanyName
	}
	if result.UserBackground == "" {
		result.UserBackground = defaults.UserBackground
	}
	if result.UserQuestion == "" {
		result.UserQuestion = defaults.UserQuestion
	}
	if result.AutoSaveDelay == "" {
		result.AutoSaveDelay = defaults.AutoSaveDelay
	}
	if result.RequestTimeout == "" {
		result.RequestTimeout = defaults.RequestTimeout
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// BaseURL returns the configured service URL or DefaultAPIURL.
func (c *Config) BaseURL() string {
	if c.APIURL == "" {
		return DefaultAPIURL
	}
	return c.APIURL
}

// AutoSave returns the autosave quiet period, or zero for the default.
func (c *Config) AutoSave() time.Duration {
	d, _ := parseDuration("autosave_delay", c.AutoSaveDelay)
	return d
}

// Timeout returns the request timeout, or zero for the default.
func (c *Config) Timeout() time.Duration {
	d, _ := parseDuration("request_timeout", c.RequestTimeout)
	return d
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config error: '%s' is not a duration: %w", field, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config error: '%s' must be positive", field)
	}
	return d, nil
}
