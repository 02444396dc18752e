// Package config holds the runtime configuration of the daemon.
//
// Values come from command-line flags, which default to environment variables.
// A .env file in the working directory is loaded before the environment is read.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pfrederiksen/aquabot/internal/credentials"
	"github.com/pfrederiksen/aquabot/internal/reading"
	"github.com/pfrederiksen/aquabot/internal/scraper"
)

const (
	DefaultThreshold      = "09:00"
	DefaultPollInterval   = 600 * time.Second
	DefaultRequestTimeout = 60 * time.Second
	DefaultTimezone       = "America/Chicago"
	DefaultLogLevel       = "info"
)

// ErrInvalid is returned when the configuration fails validation
var ErrInvalid = errors.New("invalid configuration")

var validate = validator.New()

// Config holds all runtime configuration
type Config struct {
	URL             string        `validate:"required,url"`
	Threshold       string        `validate:"required"`
	PollInterval    time.Duration `validate:"gt=0"`
	RequestTimeout  time.Duration `validate:"gt=0"`
	Timezone        string        `validate:"required,timezone"`
	CredentialsPath string
	StateFile       string
	SiteName        string `validate:"required"`
	RequireFresh    bool
	DryRun          bool
	LogLevel        string `validate:"oneof=debug info warn error"`
	LogFile         string
	MetricsAddr     string `validate:"omitempty,hostname_port"`
}

// Defaults returns a Config with all default values set
func Defaults() Config {
	return Config{
		URL:             scraper.J17URL,
		Threshold:       DefaultThreshold,
		PollInterval:    DefaultPollInterval,
		RequestTimeout:  DefaultRequestTimeout,
		Timezone:        DefaultTimezone,
		CredentialsPath: credentials.DefaultPath,
		SiteName:        reading.DefaultSiteName,
		LogLevel:        DefaultLogLevel,
	}
}

// FromEnv returns the defaults overridden by AQUABOT_* environment variables.
// Variables from envFile are loaded first if the file exists; variables already
// set in the environment win.
func FromEnv(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	cfg := Defaults()
	cfg.URL = getEnv("AQUABOT_URL", cfg.URL)
	cfg.Threshold = getEnv("AQUABOT_THRESHOLD", cfg.Threshold)
	cfg.Timezone = getEnv("AQUABOT_TIMEZONE", cfg.Timezone)
	cfg.CredentialsPath = getEnv("AQUABOT_CREDENTIALS", cfg.CredentialsPath)
	cfg.StateFile = getEnv("AQUABOT_STATE_FILE", cfg.StateFile)
	cfg.SiteName = getEnv("AQUABOT_SITE_NAME", cfg.SiteName)
	cfg.LogLevel = getEnv("AQUABOT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("AQUABOT_LOG_FILE", cfg.LogFile)
	cfg.MetricsAddr = getEnv("AQUABOT_METRICS_ADDR", cfg.MetricsAddr)

	var err error
	if cfg.PollInterval, err = getEnvDuration("AQUABOT_POLL_INTERVAL", cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("AQUABOT_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RequireFresh, err = getEnvBool("AQUABOT_REQUIRE_FRESH", cfg.RequireFresh); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that required fields are present and values are valid
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}

	if _, err := ParseThreshold(c.Threshold); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

// ThresholdMinutes returns the threshold as minutes since midnight
func (c Config) ThresholdMinutes() (int, error) {
	return ParseThreshold(c.Threshold)
}

// Location loads the configured time zone
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: loading timezone %q: %v", ErrInvalid, c.Timezone, err)
	}
	return loc, nil
}

// ParseThreshold converts a time of day in HH:MM 24-hour format to minutes since midnight
func ParseThreshold(t string) (int, error) {
	if len(t) != 5 || t[2] != ':' {
		return 0, fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	for _, i := range []int{0, 1, 3, 4} {
		if t[i] < '0' || t[i] > '9' {
			return 0, fmt.Errorf("invalid time format %q: must be HH:MM", t)
		}
	}

	hour := (int(t[0]-'0') * 10) + int(t[1]-'0')
	minute := (int(t[3]-'0') * 10) + int(t[4]-'0')

	if hour > 23 {
		return 0, fmt.Errorf("invalid time %q: hour must be 0-23", t)
	}
	if minute > 59 {
		return 0, fmt.Errorf("invalid time %q: minute must be 0-59", t)
	}

	return hour*60 + minute, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return d, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return b, nil
}
