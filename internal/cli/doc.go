// Package cli implements the command-line interface for aquabot.
//
// The cli package provides the Cobra-based root command that loads configuration
// and credentials, wires the scraper, notifier, state file and metrics into the
// scheduler, and runs it until the process receives SIGINT or SIGTERM. The check
// subcommand fetches the page once and prints the message that would be posted.
package cli
