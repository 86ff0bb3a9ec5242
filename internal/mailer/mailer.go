// Package mailer sends transactional notification emails through a
// Resend-compatible HTTP API. Delivery is best-effort: callers log
// failures and move on, the database row remains the source of truth.
package mailer

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps the mail API for contact notifications.
type Client struct {
	rest *resty.Client
	from string
	to   string
}

// sendRequest is the JSON payload of the /emails endpoint.
type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// apiError is the error payload returned by the mail API.
type apiError struct {
	Message string `json:"message"`
}

// New creates a mail client. Returns nil if the API key or recipient is
// missing, allowing the app to run without email delivery.
func New(baseURL, apiKey, from, to string) *Client {
	if apiKey == "" || to == "" {
		return nil
	}

	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetTimeout(10 * time.Second)

	return &Client{rest: rest, from: from, to: to}
}

// SendContact sends the contact-form notification email. The submitter's
// address becomes the reply-to so the blog owner can answer directly.
func (c *Client) SendContact(ctx context.Context, name, email, message string) error {
	body := sendRequest{
		From:    c.from,
		To:      []string{c.to},
		Subject: fmt.Sprintf("Nouveau message de contact de %s", name),
		HTML:    contactHTML(name, email, message),
		ReplyTo: email,
	}

	var apiErr apiError
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(body).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("mailer send: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mailer send: %s: %s", resp.Status(), apiErr.Message)
	}
	return nil
}

// contactHTML builds the French notification body. User-supplied values
// are escaped; newlines in the message become line breaks.
func contactHTML(name, email, message string) string {
	name = html.EscapeString(name)
	email = html.EscapeString(email)
	message = strings.ReplaceAll(html.EscapeString(message), "\n", "<br>")

	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2>Nouveau message de contact</h2>`)
	b.WriteString(`<p><strong>Nom :</strong> ` + name + `</p>`)
	b.WriteString(`<p><strong>Email :</strong> ` + email + `</p>`)
	b.WriteString(`<h3>Message :</h3>`)
	b.WriteString(`<p style="line-height: 1.6;">` + message + `</p>`)
	b.WriteString(`<hr>`)
	b.WriteString(`<p style="font-size: 12px; color: #6c757d;">Ce message a été envoyé depuis le formulaire de contact de votre blog de voyage. `)
	b.WriteString(`Vous pouvez répondre directement à cet email : l'adresse de réponse est ` + email + `.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}
