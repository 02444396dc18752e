// Package credentials loads the OAuth1 credentials used to post notifications.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultPath is the credentials file read when no path is configured
const DefaultPath = "twitter_creds.json"

// ErrMissing is returned when the credentials file cannot be found
var ErrMissing = errors.New("credentials missing")

var validate = validator.New()

// Twitter holds the OAuth1 consumer and access credentials
type Twitter struct {
	ConsumerKey       string `json:"consumerKey" validate:"required"`
	ConsumerSecret    string `json:"consumerSecret" validate:"required"`
	AccessToken       string `json:"accessToken" validate:"required"`
	AccessTokenSecret string `json:"accessTokenSecret" validate:"required"`
}

// Load reads and validates a credentials file
func Load(path string) (Twitter, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Twitter{}, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return Twitter{}, fmt.Errorf("reading credentials: %w", err)
	}

	var creds Twitter
	if err := json.Unmarshal(data, &creds); err != nil {
		return Twitter{}, fmt.Errorf("parsing credentials %s: %w", path, err)
	}

	if err := creds.Validate(); err != nil {
		return Twitter{}, fmt.Errorf("invalid credentials %s: %w", path, err)
	}

	return creds, nil
}

// FromEnv reads credentials from environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func FromEnv() (Twitter, error) {
	creds := Twitter{
		ConsumerKey:       os.Getenv("TWITTER_API_KEY"),
		ConsumerSecret:    os.Getenv("TWITTER_API_SECRET"),
		AccessToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		AccessTokenSecret: os.Getenv("TWITTER_ACCESS_SECRET"),
	}

	if err := creds.Validate(); err != nil {
		return Twitter{}, fmt.Errorf("missing required Twitter credentials in environment variables: %w", err)
	}

	return creds, nil
}

// Validate checks that every field is present
func (t Twitter) Validate() error {
	if err := validate.Struct(t); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return err
		}
		missing := make([]string, 0, len(ve))
		for _, fe := range ve {
			missing = append(missing, fe.Field())
		}
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}
