package reading

import "fmt"

const (
	// DefaultSiteName is the well the default data page reports on
	DefaultSiteName = "J-17 Bexar"

	// MaxMessageLength is the longest message the notifier will post
	MaxMessageLength = 280
)

// Reading represents one published measurement triple
type Reading struct {
	Today         string `json:"today"`
	Yesterday     string `json:"yesterday"`
	TenDayAverage string `json:"ten_day_average"`
}

// New creates a Reading from the three published values
func New(today, yesterday, tenDayAverage string) Reading {
	return Reading{
		Today:         today,
		Yesterday:     yesterday,
		TenDayAverage: tenDayAverage,
	}
}

// Equal reports whether both readings carry the same three values
func (r Reading) Equal(other Reading) bool {
	return r.Today == other.Today &&
		r.Yesterday == other.Yesterday &&
		r.TenDayAverage == other.TenDayAverage
}

// IsZero reports whether no value has been set
func (r Reading) IsZero() bool {
	return r == Reading{}
}

// FormatMessage formats a reading as a notification message for the given site.
// The result depends only on its inputs.
func FormatMessage(site string, r Reading) string {
	if site == "" {
		site = DefaultSiteName
	}

	msg := fmt.Sprintf("The %s aquifer level is %s. Yesterday, it was %s and the 10-day average is %s",
		site, r.Today, r.Yesterday, r.TenDayAverage)

	// Twitter limit is 280 characters
	if len(msg) > MaxMessageLength {
		msg = msg[:MaxMessageLength-3] + "..."
	}

	return msg
}
