// Package email is the client of the support email service used for applicant notifications.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// Endpoint paths relative to the service base URL
const (
	PathSendCustom  = "/api/support/send-custom"
	PathSendWelcome = "/api/support/send-welcome"
	PathTestConfig  = "/api/support/test-config"
	PathHealth      = "/health"
)

// Delivery describes a message accepted by the email service.
type Delivery struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Timestamp string `json:"timestamp"`
}

// Response is the email service reply.
type Response struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
	Data    *Delivery `json:"data,omitempty"`
}

// Confirmation holds what the application confirmation email mentions.
type Confirmation struct {
	ApplicantName  string
	ApplicantEmail string
	JobTitle       string
	JobID          string
	CompanyName    string
	AppliedOn      time.Time
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	APIKey    string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// Client sends emails through the support email service.
type Client struct {
	cfg  Config
	HTTP *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:  cfg,
		HTTP: &http.Client{Timeout: cfg.Timeout},
	}
}

type customEmail struct {
	ClientEmail string `json:"clientEmail"`
	ClientName  string `json:"clientName"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	IsHTML      bool   `json:"isHtml"`
}

// ConfirmationSubject is the subject line of the application confirmation email.
func ConfirmationSubject(jobTitle, companyName string) string {
	return fmt.Sprintf("Application Confirmation - %s at %s", jobTitle, companyName)
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`Dear {{.ApplicantName}},

Thank you for applying to {{.CompanyName}}.

Your application for "{{.JobTitle}}" (Job ID: {{.JobID}}) has been received.

Next steps:
- Our HR team reviews applications within 2-3 business days
- If your profile is a match, we will reach out about an interview or assessment
- We will keep you posted as your application progresses

Application details:
- Position: {{.JobTitle}}
- Job ID: {{.JobID}}
- Applied on: {{.AppliedOn.Format "02 Jan 2006"}}
- Status: Under Review

Questions about your application? Write to {{.SupportEmail}}.

Best regards,
{{.CompanyName}} HR Team

---
This is an automated message, please do not reply.`))

// ConfirmationBody renders the plain text body of the confirmation email.
func (c *Client) ConfirmationBody(data Confirmation) (string, error) {
	if data.AppliedOn.IsZero() {
		data.AppliedOn = time.Now()
	}
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct {
		Confirmation
		SupportEmail string
	}{data, c.cfg.FromEmail})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SendConfirmation emails the applicant that their application was received.
func (c *Client) SendConfirmation(ctx context.Context, data Confirmation) (Response, error) {
	body, err := c.ConfirmationBody(data)
	if err != nil {
		return Response{}, fmt.Errorf("render confirmation: %w", err)
	}

	return c.post(ctx, PathSendCustom, customEmail{
		ClientEmail: data.ApplicantEmail,
		ClientName:  data.ApplicantName,
		Subject:     ConfirmationSubject(data.JobTitle, data.CompanyName),
		Message:     body,
		IsHTML:      false,
	})
}

// SendWelcome emails a newly verified user.
func (c *Client) SendWelcome(ctx context.Context, clientEmail, clientName string) (Response, error) {
	return c.post(ctx, PathSendWelcome, map[string]string{
		"clientEmail": clientEmail,
		"clientName":  clientName,
	})
}

// TestConfiguration asks the service to validate its own mail configuration.
func (c *Client) TestConfiguration(ctx context.Context) (Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, PathTestConfig, nil)
	if err != nil {
		return Response{}, err
	}
	return c.do(req)
}

// Health reports whether the service answers with status "healthy".
func (c *Client) Health(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+PathHealth, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false, err
	}
	defer closeBody(resp)

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode health response: %w", err)
	}
	return resp.StatusCode == http.StatusOK && body.Status == "healthy", nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (Response, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(b))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.cfg.APIKey)
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// do sends req and fails on transport errors, non 2xx status or success=false.
func (c *Client) do(req *http.Request) (Response, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("email service unreachable: %w", err)
	}
	defer closeBody(resp)

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Response{}, fmt.Errorf("decode email service response (status=%d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !result.Success {
		msg := result.Error
		if msg == "" {
			msg = result.Message
		}
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return result, fmt.Errorf("email service rejected request: %s", msg)
	}
	return result, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Printf("Failed to close response body: %v", err)
	}
}
