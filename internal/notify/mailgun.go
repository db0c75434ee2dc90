package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is kept in the error message
const maxErrorBody = 512

// Message is one rendered notification.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// Transport delivers rendered messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// MailgunTransport sends messages through the Mailgun HTTP API.
type MailgunTransport struct {
	apiURL string
	apiKey string
	client *http.Client
}

// NewMailgunTransport creates a transport for the Mailgun domain API rooted at
// apiURL (e.g. https://api.mailgun.net/v3/mg.example.com).
func NewMailgunTransport(apiURL, apiKey string, timeout time.Duration) *MailgunTransport {
	return &MailgunTransport{
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// Send posts msg to {apiURL}/messages. Any non-2xx response is an error.
func (t *MailgunTransport) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("from", msg.From)
	for _, to := range msg.To {
		form.Add("to", to)
	}
	form.Set("subject", msg.Subject)
	form.Set("html", msg.HTML)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.apiURL+"/messages", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth("api", t.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mail API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("mail API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
