// Package mail provides the outbound mail-relay transport used by the email
// and SMS notification channels. The transport is constructed explicitly and
// injected, so tests can substitute doubles and concurrent deliveries can
// share one pooled connection collaborator.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"sync"
	"time"
)

// ErrNotConfigured is returned when the transport is missing its relay host
// or from-address. Local and non-retryable; callers report it as a channel
// failure rather than retrying.
var ErrNotConfigured = errors.New("transport not configured")

// Test seams for SMTP dialing and submission.
var (
	sendMailHook = smtp.SendMail
	dialHook     = net.DialTimeout
)

const verifyDialTimeout = 10 * time.Second

// TLSMode selects how the relay connection is secured.
type TLSMode string

const (
	// TLSModeNone submits in the clear (local relays only).
	TLSModeNone TLSMode = "none"
	// TLSModeStartTLS upgrades the connection when the server offers it.
	TLSModeStartTLS TLSMode = "starttls"
)

// Message is one outbound email. HTML is optional; when present the message
// is sent as multipart/alternative with the plain-text part first.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Transport submits messages to a mail relay.
type Transport interface {
	// Configured reports whether the transport has enough configuration to
	// attempt a submission at all.
	Configured() bool
	// Send submits one message. Submission errors are returned, never
	// panicked; there is no retry at this layer.
	Send(ctx context.Context, m Message) error
}

// SMTP is a Transport backed by a single SMTP relay. Safe for concurrent
// use: the only mutable state is the one-time connection verification.
type SMTP struct {
	Host string
	Port int
	User string
	Pass string
	From string
	TLS  TLSMode

	verifyOnce sync.Once
	verifyErr  error
}

// NewSMTP builds an SMTP transport from relay settings.
func NewSMTP(host string, port int, user, pass, from string, tlsMode TLSMode) *SMTP {
	if tlsMode == "" {
		tlsMode = TLSModeStartTLS
	}
	return &SMTP{Host: host, Port: port, User: user, Pass: pass, From: from, TLS: tlsMode}
}

func (t *SMTP) Configured() bool {
	return t.Host != "" && t.From != ""
}

func (t *SMTP) addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// verify checks relay reachability once per transport instance. Subsequent
// sends reuse the cached result so concurrent deliveries do not re-dial.
func (t *SMTP) verify() error {
	t.verifyOnce.Do(func() {
		conn, err := dialHook("tcp", t.addr(), verifyDialTimeout)
		if err != nil {
			t.verifyErr = fmt.Errorf("verify relay %s: %w", t.addr(), err)
			return
		}
		_ = conn.Close()
	})
	return t.verifyErr
}

// Send submits the message via smtp.SendMail. STARTTLS is negotiated by the
// smtp package when the server advertises it; TLSModeNone relays skip that
// by simply not advertising.
func (t *SMTP) Send(ctx context.Context, m Message) error {
	_ = ctx // smtp.SendMail has no context; ambient socket timeouts apply
	if !t.Configured() {
		return ErrNotConfigured
	}
	if err := t.verify(); err != nil {
		return err
	}
	var auth smtp.Auth
	if t.User != "" {
		auth = smtp.PlainAuth("", t.User, t.Pass, t.Host)
	}
	return sendMailHook(t.addr(), auth, t.From, []string{m.To}, m.encode(t.From))
}

// encode renders the RFC 5322 message bytes.
func (m Message) encode(from string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	if m.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	}
	b.WriteString("MIME-Version: 1.0\r\n")

	if m.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(m.Text)
		return b.Bytes()
	}

	const boundary = "=_buildmate_alt"
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n", boundary, m.Text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=utf-8\r\n\r\n%s\r\n", boundary, m.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}
