package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/aquabot/internal/reading"
)

const (
	J17URL    = "https://data.edwardsaquifer.org/j-17.php"
	UserAgent = "aquabot/1.0 (github.com/pfrederiksen/aquabot)"
	Timeout   = 60 * time.Second
)

// ErrUnexpectedShape is returned when the page does not have the expected tables and cells
var ErrUnexpectedShape = errors.New("unexpected page shape")

// FetchError describes a failed page download
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Layout locates the three readings on the page. Table is the index of the
// table among all tables in the document; the cell indexes count td elements
// inside that table.
type Layout struct {
	Table         int
	TodayCell     int
	YesterdayCell int
	AverageCell   int
}

// DefaultLayout matches the J-17 page
var DefaultLayout = Layout{
	Table:         1,
	TodayCell:     0,
	YesterdayCell: 2,
	AverageCell:   4,
}

// Scraper handles fetching and parsing the index well page
type Scraper struct {
	client *http.Client
	url    string
	layout Layout
}

// New creates a new Scraper for the given page. An empty url selects the J-17
// page and a non-positive timeout selects the default.
func New(url string, timeout time.Duration) *Scraper {
	if url == "" {
		url = J17URL
	}
	if timeout <= 0 {
		timeout = Timeout
	}

	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		url:    url,
		layout: DefaultLayout,
	}
}

// WithLayout returns the scraper configured to read the given positions
func (s *Scraper) WithLayout(layout Layout) *Scraper {
	s.layout = layout
	return s
}

// URL returns the page being scraped
func (s *Scraper) URL() string {
	return s.url
}

// FetchReading downloads the page and extracts the current reading
func (s *Scraper) FetchReading(ctx context.Context) (reading.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return reading.Reading{}, &FetchError{URL: s.url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return reading.Reading{}, &FetchError{URL: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return reading.Reading{}, &FetchError{URL: s.url, StatusCode: resp.StatusCode}
	}

	return ParseReading(resp.Body, s.layout)
}

// ParseReading extracts the reading from an HTML document
func ParseReading(r io.Reader, layout Layout) (reading.Reading, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("parsing HTML: %w", err)
	}

	tables := doc.Find("table")
	if layout.Table < 0 || layout.Table >= tables.Length() {
		return reading.Reading{}, fmt.Errorf("%w: table %d not found (page has %d)",
			ErrUnexpectedShape, layout.Table, tables.Length())
	}
	cells := tables.Eq(layout.Table).Find("td")

	today, err := cellValue(cells, layout.TodayCell)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("today's reading: %w", err)
	}

	yesterday, err := cellValue(cells, layout.YesterdayCell)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("yesterday's reading: %w", err)
	}

	average, err := cellValue(cells, layout.AverageCell)
	if err != nil {
		return reading.Reading{}, fmt.Errorf("10-day average: %w", err)
	}

	return reading.New(today, yesterday, average), nil
}

// cellValue returns the first text node of the first span in the given cell
func cellValue(cells *goquery.Selection, index int) (string, error) {
	if index < 0 || index >= cells.Length() {
		return "", fmt.Errorf("%w: cell %d not found (table has %d)", ErrUnexpectedShape, index, cells.Length())
	}

	span := cells.Eq(index).Find("span").First()
	if span.Length() == 0 {
		return "", fmt.Errorf("%w: cell %d has no span", ErrUnexpectedShape, index)
	}

	value := strings.TrimSpace(span.Contents().First().Text())
	if value == "" {
		return "", fmt.Errorf("%w: cell %d is empty", ErrUnexpectedShape, index)
	}

	return value, nil
}
