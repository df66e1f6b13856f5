package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PushSender hands a payload to a registered device endpoint. Push delivery
// is fire and forget from the server's perspective: a non-exceptional send
// counts as delivered, there is no device-side acknowledgement channel.
type PushSender interface {
	Push(ctx context.Context, endpoint string, p Payload) error
}

// PushAdapter delivers via the device's registered push endpoint.
type PushAdapter struct {
	Sender PushSender
}

func (a *PushAdapter) Channel() Channel { return ChannelPush }

func (a *PushAdapter) Skip(r RecipientProfile) string {
	if r.PushEndpoint == "" {
		return "no push endpoint registered"
	}
	return ""
}

func (a *PushAdapter) Send(ctx context.Context, r RecipientProfile, p Payload) (string, error) {
	return r.PushEndpoint, a.Sender.Push(ctx, r.PushEndpoint, p)
}

// Relay is the default PushSender: it POSTs the payload as JSON to the
// registered endpoint URL and treats any 2xx as accepted.
type Relay struct {
	// Client is optional; a 10s-timeout client is used when nil.
	Client *http.Client
}

func (rl *Relay) Push(ctx context.Context, endpoint string, p Payload) error {
	body := map[string]string{
		"title":    p.Title,
		"body":     p.Body,
		"category": string(p.Category),
	}
	return postJSON(ctx, rl.httpClient(), endpoint, body)
}

func (rl *Relay) httpClient() *http.Client {
	if rl.Client != nil {
		return rl.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// postJSON is a shared helper for JSON-over-HTTP collaborators.
func postJSON(ctx context.Context, client *http.Client, url string, data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
