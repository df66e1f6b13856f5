// Package notify implements multi-channel notification delivery for BuildMate.
//
// A notification is pushed through a fixed fallback chain (push, email, SMS)
// until one channel confirms delivery. Every channel tried is recorded as an
// Attempt, so a failed delivery can always explain itself.
package notify

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Channel identifies one delivery transport.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Category classifies a notification for presentation purposes only.
// It never influences channel routing.
type Category string

const (
	CategoryReminder Category = "reminder"
	CategoryAlert    Category = "alert"
	CategoryInfo     Category = "info"
	CategorySuccess  Category = "success"
	CategoryTest     Category = "test"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryReminder, CategoryAlert, CategoryInfo, CategorySuccess, CategoryTest:
		return true
	}
	return false
}

// Outcome is the result of one delivery attempt.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeFailed    Outcome = "failed"
	OutcomeSkipped   Outcome = "skipped"
)

// Payload is the message to deliver. Immutable caller input.
type Payload struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category Category `json:"category"`
}

// Validate checks the caller contract: title, body and a known category are
// required. A malformed payload is the caller's error, not a channel failure.
func (p Payload) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("payload: title is required")
	}
	if strings.TrimSpace(p.Body) == "" {
		return fmt.Errorf("payload: body is required")
	}
	if !p.Category.Valid() {
		return fmt.Errorf("payload: unknown category %q", p.Category)
	}
	return nil
}

// RecipientProfile describes where a user can be reached. Immutable caller
// input, resolved by the caller from the user record and device registry.
type RecipientProfile struct {
	// PushEndpoint is the opaque device registration handle; empty when the
	// device never registered for push.
	PushEndpoint string `json:"pushEndpoint,omitempty"`
	// Email is mandatory. It is both the channel of last resort before SMS
	// and the SMS transport mechanism itself (email-to-SMS relay).
	Email string `json:"email"`
	// Phone is a loose human-entered mobile number; may contain spaces,
	// dashes, parentheses, a leading 0 or +61.
	Phone string `json:"phone,omitempty"`
	// CarrierHint names a known carrier gateway to try first, or "auto".
	CarrierHint string `json:"carrierHint,omitempty"`
}

// Validate enforces the recipient contract. Email must be present and
// well-formed before any channel is attempted.
func (r RecipientProfile) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("recipient: email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("recipient: invalid email %q: %w", r.Email, err)
	}
	return nil
}

// Attempt records one try against one channel.
type Attempt struct {
	ID      string  `json:"id"`
	Channel Channel `json:"channel"`
	// Target is the literal endpoint, address or gateway address used.
	// Empty for skipped attempts.
	Target      string    `json:"target,omitempty"`
	Outcome     Outcome   `json:"outcome"`
	Reason      string    `json:"reason,omitempty"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// Result is the outcome of one Deliver call. Attempts are in the order
// tried and never empty for a valid input.
type Result struct {
	ID        string    `json:"id"`
	Succeeded bool      `json:"succeeded"`
	Attempts  []Attempt `json:"attempts"`
}

// Trail renders the attempt sequence as a single human-readable line,
// e.g. "push: skipped (no push endpoint registered); email: delivered".
func (r Result) Trail() string {
	parts := make([]string, 0, len(r.Attempts))
	for _, a := range r.Attempts {
		s := fmt.Sprintf("%s: %s", a.Channel, a.Outcome)
		if a.Reason != "" {
			s += fmt.Sprintf(" (%s)", a.Reason)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}
