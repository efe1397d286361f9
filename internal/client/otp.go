package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"blip/internal/logger"
	"blip/internal/model"

	"go.uber.org/zap"
)

// OTPClient client for the email verification service
type OTPClient struct {
	baseURL string
	client  *http.Client
}

// NewOTPClient creates a new OTP service client
func NewOTPClient(baseURL string, timeout time.Duration) *OTPClient {
	return &OTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type otpSendRequest struct {
	Email string `json:"email"`
}

type otpVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// OTPVerifyResult response from the verification endpoint
type OTPVerifyResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

// SendCode requests a one-time code for the given email
func (c *OTPClient) SendCode(ctx context.Context, email string) error {
	resp, err := c.postJSON(ctx, "/send-otp", otpSendRequest{Email: email})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.NetworkError{Op: "otp send", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}

// VerifyCode checks a one-time code for the given email
func (c *OTPClient) VerifyCode(ctx context.Context, email, code string) (*OTPVerifyResult, error) {
	resp, err := c.postJSON(ctx, "/verify-otp", otpVerifyRequest{Email: email, Code: code})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.NetworkError{Op: "otp verify", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var result OTPVerifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode otp response: %w", err)
	}
	return &result, nil
}

// NotifyLogin fires a best-effort login audit ping. A failure is logged and
// never surfaced: the login itself must not depend on this service.
func (c *OTPClient) NotifyLogin(email string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		resp, err := c.postJSON(ctx, "/log-login", otpSendRequest{Email: email})
		if err != nil {
			logger.Warn("login audit ping failed", zap.Error(err))
			return
		}
		resp.Body.Close()
	}()
}

func (c *OTPClient) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &model.NetworkError{Op: "otp service", Err: err}
	}
	return resp, nil
}
