// Package client talks to the site API on behalf of the command line tool.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"construction-site-api-server/internal/availability"
	"construction-site-api-server/internal/models"
)

// LoginResult is what the server returns once the password is accepted.
// OTP is only set when the server echoes codes (development).
type LoginResult struct {
	UserID    string    `json:"userId"`
	OTPID     string    `json:"otpId"`
	ExpiresAt time.Time `json:"expiresAt"`
	OTP       string    `json:"otp,omitempty"`
}

// Session is a verified login.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Log        *slog.Logger
}

func New(baseURL string, log *slog.Logger) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Log:        log,
	}
}

func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	err := c.post(ctx, "auth/login", map[string]string{"username": username, "password": password}, &out)
	return out, err
}

func (c *Client) VerifyOTP(ctx context.Context, userID, otpID, code string) (Session, error) {
	var out Session
	err := c.post(ctx, "auth/verify-otp", map[string]string{"userId": userID, "otpId": otpID, "otp": code}, &out)
	return out, err
}

// ResendOTP asks for a new code for the pending login otpID.
func (c *Client) ResendOTP(ctx context.Context, userID, otpID string) (LoginResult, error) {
	var out LoginResult
	err := c.post(ctx, "auth/resend-otp", map[string]string{"userId": userID, "otpId": otpID}, &out)
	return out, err
}

// envelope is the {success, data, error} shape of the auth endpoints.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func (c *Client) post(ctx context.Context, endpoint string, in interface{}, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", endpoint, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(body, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &availability.StatusError{Endpoint: endpoint, Code: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode %s: %w", endpoint, decodeErr)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", endpoint, err)
	}
	c.Log.Debug("api call ok", "endpoint", endpoint)
	return nil
}
