package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const baseURL = "https://api.twilio.com"

// Client is a minimal Twilio messages client. It is constructed once at
// process start and injected into the services that notify customers; a nil
// *Client disables sending.
type Client struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
}

// NewClient creates an SMS client. Returns nil when credentials are missing
// so callers can treat SMS as disabled.
func NewClient(accountSID, authToken, from string) *Client {
	if accountSID == "" || authToken == "" {
		return nil
	}
	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Send delivers one message and returns the provider message SID.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build sms request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read sms response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		json.Unmarshal(respBody, &apiErr)
		return "", fmt.Errorf("sms provider status %d: %s", resp.StatusCode, apiErr.Message)
	}

	var result struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode sms response: %w", err)
	}
	return result.SID, nil
}
