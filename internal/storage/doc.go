// Package storage provides JSON-based persistence for the daily notification state.
//
// The state file records the last calendar date a notification was delivered for
// and the reading that was posted, so a restart on the same day does not post
// again. Writes go to a temporary file that is renamed over the state file.
package storage
