package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/aquabot/internal/credentials"
)

// duplicateStatusCode is the API error returned for a status identical to a recent one
const duplicateStatusCode = 187

// TwitterNotifier posts messages to Twitter
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier. Every request is bounded by timeout.
func NewTwitterNotifier(creds credentials.Twitter, timeout time.Duration) (*TwitterNotifier, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout

	return newTwitterNotifier(httpClient), nil
}

func newTwitterNotifier(httpClient *http.Client) *TwitterNotifier {
	return &TwitterNotifier{client: twitter.NewClient(httpClient)}
}

// Notify posts the message as a status update. A duplicate-status rejection
// counts as delivered since the same text is already published.
func (n *TwitterNotifier) Notify(ctx context.Context, message string) error {
	if message == "" {
		return fmt.Errorf("message text is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, resp, err := n.client.Statuses.Update(message, nil)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	if err != nil {
		var apiErr twitter.APIError
		if errors.As(err, &apiErr) && isDuplicate(apiErr) {
			return nil
		}
		return &DeliveryError{StatusCode: statusCode, Message: message, Err: err}
	}

	if statusCode < 200 || statusCode > 299 {
		return &DeliveryError{StatusCode: statusCode, Message: message}
	}

	return nil
}

func isDuplicate(apiErr twitter.APIError) bool {
	for _, detail := range apiErr.Errors {
		if detail.Code == duplicateStatusCode {
			return true
		}
	}
	return false
}
