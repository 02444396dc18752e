// Package scraper provides HTTP fetching and HTML extraction for the daily aquifer reading.
//
// The scraper package fetches the public index well page and extracts today's level,
// yesterday's level and the 10-day average from fixed table and cell positions. The
// positions are described by a Layout so the rest of the program does not depend on
// the page structure. Fetch failures are reported as *FetchError and unexpected page
// structure as ErrUnexpectedShape.
package scraper
