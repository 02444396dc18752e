package notifier

import (
	"context"
	"fmt"
	"io"
)

// DryRunNotifier prints what would be posted without actually posting
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a new dry-run notifier writing to out
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	return &DryRunNotifier{out: out}
}

// Notify prints the message that would be posted
func (n *DryRunNotifier) Notify(_ context.Context, message string) error {
	fmt.Fprintln(n.out, "--- Notification ---")
	fmt.Fprintln(n.out, message)
	fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", len(message))
	return nil
}
