package notify

import "context"

// Adapter is the capability every channel implements: attempt to deliver one
// payload to one recipient via one transport.
type Adapter interface {
	Channel() Channel

	// Skip reports why the channel is structurally unavailable for the
	// recipient (e.g. no push endpoint), or "" when it can be attempted.
	// The dispatcher records a skipped Attempt without calling Send.
	Skip(r RecipientProfile) string

	// Send performs a single delivery attempt. target is the literal
	// endpoint, address or gateway address used, reported even on failure.
	// Transport faults are returned as errors, never panics.
	Send(ctx context.Context, r RecipientProfile, p Payload) (target string, err error)
}
