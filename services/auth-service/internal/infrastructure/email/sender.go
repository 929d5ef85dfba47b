package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"time"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

type EmailSender struct {
	apiKey      string
	senderEmail string
	senderName  string
	frontend    string
	endpoint    string
	client      *http.Client
}

func NewEmailSender(apiKey, senderEmail, frontend string) *EmailSender {
	return &EmailSender{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  "Fanverse",
		frontend:    frontend,
		endpoint:    sendGridEndpoint,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// WithEndpoint points the sender at another SendGrid-compatible API.
func (s *EmailSender) WithEndpoint(endpoint string) *EmailSender {
	s.endpoint = endpoint
	return s
}

// SendGrid request format
type sgEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sgPersonalization struct {
	To []sgEmail `json:"to"`
}

type sgRequest struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgEmail             `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

func (s *EmailSender) ConfirmationLink(token string) string {
	return fmt.Sprintf("%s/auth/confirm?token=%s", s.frontend, url.QueryEscape(token))
}

func (s *EmailSender) SendConfirmationEmail(ctx context.Context, toEmail, username, token string) error {
	body := sgRequest{
		Personalizations: []sgPersonalization{
			{To: []sgEmail{{Email: toEmail, Name: username}}},
		},
		From: sgEmail{
			Email: s.senderEmail,
			Name:  s.senderName,
		},
		Subject: "Confirm your email",
		Content: []sgContent{
			{
				Type: "text/html",
				Value: fmt.Sprintf(`
				<html>
				<body style="font-family: Arial, sans-serif; background-color: #004d98; color: #ffffff;">
					<div style="max-width: 600px; margin: 40px auto; padding: 30px; background-color: #a50044; border-radius: 12px; text-align: center;">
						<h3>Welcome, %s!</h3>
						<p>Confirm your email to unlock chat, predictions and more.</p>
						<a href="%s" style="display: inline-block; margin: 24px 0; padding: 14px 28px; background-color: #edbb00; color: #004d98; font-weight: bold; text-decoration: none; border-radius: 6px;">Confirm email</a>
						<p style="font-size: 12px; color: #dddddd;">If you did not create an account, ignore this email.</p>
					</div>
				</body>
				</html>
				`, html.EscapeString(username), html.EscapeString(s.ConfirmationLink(token))),
			},
		},
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// SendGrid answers 202 on success
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sendgrid error: status=%d body=%s", resp.StatusCode, body)
	}

	return nil
}
