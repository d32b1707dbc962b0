// Package backend is the HTTP client of the careers REST backend (accounts and application intake).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"trizen-careers/internal/model"
)

// Endpoint paths relative to the base URL
const (
	PathHealth       = "/api/health"
	PathApplications = "/api/v1/applications"
	PathRegister     = "/api/v1/users/register"
	PathLogin        = "/api/v1/users/login"
	PathProfile      = "/api/v1/users/profile"
	PathVerifyEmail  = "/api/v1/users/verify-email"
)

// FieldError is a server side validation failure for one application field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of a backend call that reached the server.
// Success false is a normal outcome; Message carries the server's explanation.
type Result struct {
	Success bool
	Message string
	Errors  []FieldError
}

// LoginResult is a Result with the credentials issued on success.
type LoginResult struct {
	Result
	Token string
	User  model.User
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type envelope struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []FieldError    `json:"errors"`
}

func (e envelope) result() Result {
	msg := e.Error
	if msg == "" {
		msg = e.Message
	}
	return Result{Success: e.Success, Message: msg, Errors: e.Errors}
}

// Client talks to the careers backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client for baseURL whose requests time out after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Register creates an account. The backend emails a verification code on success.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Result, error) {
	env, err := c.call(ctx, c.HTTP, http.MethodPost, PathRegister, req)
	if err != nil {
		return Result{}, err
	}
	return env.result(), nil
}

// VerifyEmail submits the emailed verification code.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) (Result, error) {
	env, err := c.call(ctx, c.HTTP, http.MethodPost, PathVerifyEmail, map[string]string{
		"email": email,
		"code":  code,
	})
	if err != nil {
		return Result{}, err
	}
	return env.result(), nil
}

// ResendCode asks the backend to issue a new verification code.
func (c *Client) ResendCode(ctx context.Context, email string) (Result, error) {
	env, err := c.call(ctx, c.HTTP, http.MethodPut, PathProfile, map[string]string{
		"email": email,
	})
	if err != nil {
		return Result{}, err
	}
	return env.result(), nil
}

// Login exchanges credentials for a bearer token and the user profile.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	env, err := c.call(ctx, c.HTTP, http.MethodPost, PathLogin, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return LoginResult{}, err
	}

	res := LoginResult{Result: env.result()}
	if !res.Success {
		return res, nil
	}

	var data struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return LoginResult{}, fmt.Errorf("decode login data: %w", err)
	}
	if data.Token == "" {
		return LoginResult{}, fmt.Errorf("login response carries no token")
	}
	res.Token = data.Token
	res.User = data.User
	return res, nil
}

// SubmitApplication posts draft to the intake endpoint using token as bearer credential.
// Any 2xx status is a success; otherwise the body is decoded for a message and field errors.
func (c *Client) SubmitApplication(ctx context.Context, token string, draft model.ApplicationDraft) (Result, error) {
	httpClient := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, c.HTTP),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
	)
	httpClient.Timeout = c.HTTP.Timeout

	resp, err := c.do(ctx, httpClient, http.MethodPost, PathApplications, draft)
	if err != nil {
		return Result{}, err
	}
	defer closeBody(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Success: true}, nil
	}

	var env envelope
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{Message: fmt.Sprintf("application intake returned status %d", resp.StatusCode)}, nil
	}
	res := env.result()
	res.Success = false
	if res.Message == "" {
		res.Message = fmt.Sprintf("application intake returned status %d", resp.StatusCode)
	}
	return res, nil
}

// Health checks that the backend answers its health endpoint with 200.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+PathHealth, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend health returned status %d", resp.StatusCode)
	}
	return nil
}

// call performs a JSON request and decodes the response envelope regardless of status code.
func (c *Client) call(ctx context.Context, httpClient *http.Client, method, path string, body interface{}) (envelope, error) {
	var env envelope

	resp, err := c.do(ctx, httpClient, method, path, body)
	if err != nil {
		return env, err
	}
	defer closeBody(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return env, fmt.Errorf("read %s response: %w", path, err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("decode %s response (status=%d): %w", path, resp.StatusCode, err)
	}
	return env, nil
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		log.Printf("Failed to close response body: %v", err)
	}
}
