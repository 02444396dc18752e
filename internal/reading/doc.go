// Package reading defines the daily aquifer reading published upstream and the
// notification text built from it.
//
// A Reading holds the three values shown on the data page (today's level,
// yesterday's level and the 10-day average) as opaque display strings. Values
// are never parsed as numbers, so units and formatting are preserved exactly
// as published.
package reading
