package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/mattroach1111-glitch/BuildMate-MJR-sub003/internal/mail"
)

// EmailAdapter delivers through the injected mail transport. One attempt per
// call; retry policy, if any, belongs to the caller.
type EmailAdapter struct {
	Transport mail.Transport
}

func (a *EmailAdapter) Channel() Channel { return ChannelEmail }

// Skip always returns "": the recipient contract guarantees an email address.
func (a *EmailAdapter) Skip(RecipientProfile) string { return "" }

func (a *EmailAdapter) Send(ctx context.Context, r RecipientProfile, p Payload) (string, error) {
	msg := mail.Message{
		To:      r.Email,
		Subject: emailSubject(p),
		Text:    emailText(p),
		HTML:    emailHTML(p),
	}
	return r.Email, a.Transport.Send(ctx, msg)
}

// emailSubject tags the subject with the category. Presentation only; the
// fallback chain never branches on category.
func emailSubject(p Payload) string {
	return fmt.Sprintf("[BuildMate] %s: %s", categoryLabel(p.Category), p.Title)
}

func emailText(p Payload) string {
	return p.Body + "\r\n\r\n-- BuildMate"
}

func emailHTML(p Payload) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h3>%s</h3>", html.EscapeString(p.Title))
	fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(p.Body))
	fmt.Fprintf(&b, `<p style="color:#888;font-size:12px">BuildMate %s notification</p>`,
		html.EscapeString(string(p.Category)))
	b.WriteString("</body></html>")
	return b.String()
}

func categoryLabel(c Category) string {
	if c == "" {
		return "Notification"
	}
	return strings.ToUpper(string(c[0])) + string(c[1:])
}
