package mail

import (
	"context"
	"errors"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

type fakeConn struct{ net.Conn }

func (fakeConn) Close() error { return nil }

func stubDial(t *testing.T, err error) {
	t.Helper()
	orig := dialHook
	dialHook = func(_, _ string, _ time.Duration) (net.Conn, error) {
		if err != nil {
			return nil, err
		}
		return fakeConn{}, nil
	}
	t.Cleanup(func() { dialHook = orig })
}

func stubSendMail(t *testing.T, fn func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) {
	t.Helper()
	orig := sendMailHook
	sendMailHook = fn
	t.Cleanup(func() { sendMailHook = orig })
}

func TestSendNotConfigured(t *testing.T) {
	cases := []*SMTP{
		NewSMTP("", 587, "", "", "notify@example.com", TLSModeStartTLS),
		NewSMTP("smtp.example.com", 587, "", "", "", TLSModeStartTLS),
	}
	for _, tr := range cases {
		err := tr.Send(context.Background(), Message{To: "bob@example.com"})
		if !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Send on %+v = %v, want ErrNotConfigured", tr, err)
		}
	}
}

func TestSendSubmitsMessage(t *testing.T) {
	stubDial(t, nil)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	stubSendMail(t, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	})

	tr := NewSMTP("smtp.example.com", 587, "", "", "notify@buildmate.example", TLSModeStartTLS)
	m := Message{To: "bob@example.com", Subject: "Hello", Text: "body text"}
	if err := tr.Send(context.Background(), m); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "notify@buildmate.example" || len(gotTo) != 1 || gotTo[0] != "bob@example.com" {
		t.Errorf("envelope = %q -> %v", gotFrom, gotTo)
	}
	if !strings.Contains(string(gotMsg), "Subject: Hello\r\n") {
		t.Errorf("missing subject header:\n%s", gotMsg)
	}
}

func TestSendAuthOnlyWithUser(t *testing.T) {
	stubDial(t, nil)

	var gotAuth smtp.Auth
	stubSendMail(t, func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		gotAuth = a
		return nil
	})

	anon := NewSMTP("smtp.example.com", 25, "", "", "notify@example.com", TLSModeNone)
	if err := anon.Send(context.Background(), Message{To: "a@b.c"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAuth != nil {
		t.Error("expected no auth without a user")
	}

	authed := NewSMTP("smtp.example.com", 587, "user", "pass", "notify@example.com", TLSModeStartTLS)
	if err := authed.Send(context.Background(), Message{To: "a@b.c"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAuth == nil {
		t.Error("expected PLAIN auth when user is set")
	}
}

func TestVerifyFailureIsCached(t *testing.T) {
	dials := 0
	orig := dialHook
	dialHook = func(_, _ string, _ time.Duration) (net.Conn, error) {
		dials++
		return nil, errors.New("connection refused")
	}
	t.Cleanup(func() { dialHook = orig })

	sent := 0
	stubSendMail(t, func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		sent++
		return nil
	})

	tr := NewSMTP("smtp.example.com", 587, "", "", "notify@example.com", TLSModeStartTLS)
	for i := 0; i < 3; i++ {
		if err := tr.Send(context.Background(), Message{To: "a@b.c"}); err == nil {
			t.Fatal("expected verify error")
		}
	}
	if dials != 1 {
		t.Errorf("dialed %d times, want 1 (cached)", dials)
	}
	if sent != 0 {
		t.Errorf("sendMail called %d times despite failed verify", sent)
	}
}

func TestEncodePlainText(t *testing.T) {
	m := Message{To: "bob@example.com", Subject: "S", Text: "hello"}
	got := string(m.encode("notify@example.com"))
	if !strings.Contains(got, "Content-Type: text/plain; charset=utf-8\r\n\r\nhello") {
		t.Errorf("plain encoding:\n%s", got)
	}
	if strings.Contains(got, "multipart") {
		t.Errorf("plain message must not be multipart:\n%s", got)
	}
}

func TestEncodeMultipartAlternative(t *testing.T) {
	m := Message{To: "bob@example.com", Subject: "S", Text: "hello", HTML: "<p>hello</p>"}
	got := string(m.encode("notify@example.com"))
	if !strings.Contains(got, "multipart/alternative") {
		t.Fatalf("expected multipart message:\n%s", got)
	}
	// Plain text part must come before the HTML part.
	textIdx := strings.Index(got, "text/plain")
	htmlIdx := strings.Index(got, "text/html")
	if textIdx < 0 || htmlIdx < 0 || textIdx > htmlIdx {
		t.Errorf("part order wrong (text %d, html %d):\n%s", textIdx, htmlIdx, got)
	}
	if !strings.Contains(got, "--=_buildmate_alt--") {
		t.Errorf("missing closing boundary:\n%s", got)
	}
}
