package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DefaultBrevoEndpoint is the Brevo transactional email API.
const DefaultBrevoEndpoint = "https://api.brevo.com/v3/smtp/email"

type brevoContact struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

// BrevoMailer sends through the Brevo HTTP API.
type BrevoMailer struct {
	apiKey   string
	endpoint string
	sender   brevoContact
	client   *http.Client
}

// NewBrevoMailer creates a BrevoMailer. Timeouts come from the caller's context.
func NewBrevoMailer(apiKey, fromAddress, fromName string) *BrevoMailer {
	return &BrevoMailer{
		apiKey:   apiKey,
		endpoint: DefaultBrevoEndpoint,
		sender:   brevoContact{Email: fromAddress, Name: fromName},
		client:   &http.Client{},
	}
}

// WithEndpoint points the mailer at another URL; used by tests.
func (m *BrevoMailer) WithEndpoint(endpoint string) *BrevoMailer {
	m.endpoint = endpoint
	return m
}

// Send implements Mailer.
func (m *BrevoMailer) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(brevoRequest{
		Sender:      m.sender,
		To:          []brevoContact{{Email: msg.To, Name: msg.ToName}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to encode email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("api-key", m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}
