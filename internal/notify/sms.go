package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/logging"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/mail"
	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/metrics"
)

// ErrAllGatewaysFailed is the SMS adapter outcome when every carrier gateway
// rejected the relay.
var ErrAllGatewaysFailed = errors.New("all gateways failed")

// smsMaxLen is the relay body cap. Longer bodies are truncated with the last
// three characters replaced by the ellipsis marker.
const (
	smsMaxLen         = 160
	smsEllipsisMarker = "..."
)

// SMSAdapter emulates SMS by relaying through carrier email-to-SMS gateways
// (address = normalized number + gateway domain). Gateway acceptance is
// treated as probable delivery: there is no confirmation that the carrier
// actually delivered the text. Known limitation of the relay approach.
type SMSAdapter struct {
	Transport mail.Transport
}

func (a *SMSAdapter) Channel() Channel { return ChannelSMS }

func (a *SMSAdapter) Skip(r RecipientProfile) string {
	if strings.TrimSpace(r.Phone) == "" {
		return "no phone number on file"
	}
	return ""
}

// Send tries each gateway sequentially, stopping at the first that accepts
// the relay. Returns the gateway address that accepted, or the last one
// tried with ErrAllGatewaysFailed.
func (a *SMSAdapter) Send(ctx context.Context, r RecipientProfile, p Payload) (string, error) {
	if !a.Transport.Configured() {
		return "", mail.ErrNotConfigured
	}

	number := NormalizePhone(r.Phone)
	msg := mail.Message{Text: TruncateSMS(p.Body)}

	var target string
	for _, gw := range gatewayOrder(r.CarrierHint) {
		target = number + "@" + gw.domain
		msg.To = target
		if err := a.Transport.Send(ctx, msg); err != nil {
			metrics.IncGatewayReject()
			logging.Get().Warn().Err(err).Str("gateway", gw.domain).Str("number", number).
				Msg("sms gateway rejected relay")
			continue
		}
		metrics.IncGatewayAccept()
		return target, nil
	}
	return target, ErrAllGatewaysFailed
}

// NormalizePhone canonicalizes a human-entered Australian mobile number to
// 61-prefixed digits:
//
//  1. whitespace, hyphens and parentheses are stripped
//  2. a leading 0 is replaced by country code 61
//  3. a leading +61 drops the +
//  4. anything not already starting with 61 gets 61 prepended
func NormalizePhone(phone string) string {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')':
			return -1
		}
		return r
	}, phone)

	switch {
	case strings.HasPrefix(s, "0"):
		return "61" + s[1:]
	case strings.HasPrefix(s, "+61"):
		return s[1:]
	case !strings.HasPrefix(s, "61"):
		return "61" + s
	}
	return s
}

// TruncateSMS caps a body at 160 characters, replacing the tail of an
// over-long body with the ellipsis marker so the result is exactly 160.
func TruncateSMS(body string) string {
	runes := []rune(body)
	if len(runes) <= smsMaxLen {
		return body
	}
	return string(runes[:smsMaxLen-len(smsEllipsisMarker)]) + smsEllipsisMarker
}
