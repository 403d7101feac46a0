// Package email delivers outbound mail through the Resend HTTP API.
package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	billingapp "github.com/invoicing/backend/internal/application/billing"
	"github.com/invoicing/backend/internal/infrastructure/config"
)

const defaultBaseURL = "https://api.resend.com"

// Ensure ResendSender implements EmailSender
var _ billingapp.EmailSender = (*ResendSender)(nil)

// ResendSender sends email via the Resend REST API
type ResendSender struct {
	apiKey     string
	fromName   string
	fromEmail  string
	baseURL    string
	httpClient *http.Client
}

// NewResendSender creates a new ResendSender from configuration
func NewResendSender(cfg *config.EmailConfig) (*ResendSender, error) {
	if cfg == nil {
		return nil, errors.New("email configuration is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("email api key is required")
	}
	if cfg.FromEmail == "" {
		return nil, errors.New("email from address is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &ResendSender{
		apiKey:    cfg.APIKey,
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
		baseURL:   baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type resendAttachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type resendRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	ReplyTo     string             `json:"reply_to,omitempty"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Send delivers the message and returns the provider's message ID
func (s *ResendSender) Send(ctx context.Context, msg billingapp.EmailMessage) (string, error) {
	if msg.To == "" {
		return "", errors.New("recipient is required")
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	payload := resendRequest{
		From:    from,
		To:      []string{msg.To},
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	if len(msg.Attachment) > 0 {
		payload.Attachments = append(payload.Attachments, resendAttachment{
			Filename: msg.AttachmentName,
			Content:  base64.StdEncoding.EncodeToString(msg.Attachment),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("resend: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("resend: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("resend: failed to read response: %w", err)
	}

	var parsed resendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		parsed = resendResponse{}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := parsed.Message
		if message == "" {
			message = string(respBody)
		}
		return "", fmt.Errorf("resend: provider returned %d: %s", resp.StatusCode, message)
	}

	return parsed.ID, nil
}
