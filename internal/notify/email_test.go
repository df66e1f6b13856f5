package notify

import (
	"context"
	"strings"
	"testing"
)

func TestEmailAdapterSend(t *testing.T) {
	transport := &fakeTransport{configured: true}
	a := &EmailAdapter{Transport: transport}
	r := RecipientProfile{Email: "bob@example.com"}

	target, err := a.Send(context.Background(), r, testPayload())
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if target != "bob@example.com" {
		t.Errorf("target = %q", target)
	}
	if len(transport.sent) != 1 {
		t.Fatalf("sent %d messages", len(transport.sent))
	}

	msg := transport.sent[0]
	if msg.Subject != "[BuildMate] Reminder: Site inspection" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "Inspection due tomorrow at 9am") {
		t.Errorf("text part missing body: %q", msg.Text)
	}
	if !strings.Contains(msg.HTML, "<h3>Site inspection</h3>") {
		t.Errorf("html part missing title: %q", msg.HTML)
	}
}

func TestEmailHTMLEscapes(t *testing.T) {
	p := Payload{Title: "Beams <5m>", Body: "Use A&B fittings", Category: CategoryInfo}
	got := emailHTML(p)
	if strings.Contains(got, "<5m>") {
		t.Errorf("title not escaped: %q", got)
	}
	if !strings.Contains(got, "Beams &lt;5m&gt;") || !strings.Contains(got, "A&amp;B") {
		t.Errorf("escaped content missing: %q", got)
	}
}

func TestCategoryLabel(t *testing.T) {
	cases := []struct {
		in   Category
		want string
	}{
		{CategoryAlert, "Alert"},
		{CategoryReminder, "Reminder"},
		{"", "Notification"},
	}
	for _, tc := range cases {
		if got := categoryLabel(tc.in); got != tc.want {
			t.Errorf("categoryLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
