// Package messenger sends outbound WhatsApp replies through the messaging
// platform, pacing them so they read as typed by a person.
package messenger

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
)

// Client is a thin HTTP client for the messaging platform. Each call is
// addressed to one instance and authenticated with that instance's key.
type Client struct {
	baseURL string
	logger  *slog.Logger
	http    *http.Client
}

// NewClient creates a messaging platform client.
func NewClient(log *slog.Logger, baseURL string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("messenger client: base url is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.With(slog.String("client", "messenger")),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// ConnectionState returns the platform's connection state for an instance
// ("open" when the WhatsApp session is live).
func (c *Client) ConnectionState(ctx context.Context, instance, apiKey string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/instance/connectionState/"+instance, nil)
	if err != nil {
		return "", err
	}
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("messaging platform error (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var parsed struct {
		Instance struct {
			State string `json:"state"`
		} `json:"instance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	return parsed.Instance.State, nil
}

// MarkRead marks one inbound message as read on the sender's chat.
func (c *Client) MarkRead(ctx context.Context, instance, apiKey, remoteJID, messageID string) error {
	payload := map[string]any{
		"readMessages": []map[string]any{
			{
				"remoteJid": remoteJID,
				"fromMe":    false,
				"id":        messageID,
			},
		},
	}
	return c.post(ctx, "/chat/markMessageAsRead/"+instance, apiKey, payload)
}

// SendPresence publishes a presence state ("composing") on the chat for the
// given duration in milliseconds.
func (c *Client) SendPresence(ctx context.Context, instance, apiKey, remoteJID string, durationMs int) error {
	payload := map[string]any{
		"number":   remoteJID,
		"presence": "composing",
		"delay":    durationMs,
	}
	return c.post(ctx, "/chat/sendPresence/"+instance, apiKey, payload)
}

// SendText sends a plain text message to the chat.
func (c *Client) SendText(ctx context.Context, instance, apiKey, remoteJID, text string) error {
	payload := map[string]any{
		"number": remoteJID,
		"text":   text,
	}
	return c.post(ctx, "/message/sendText/"+instance, apiKey, payload)
}

func (c *Client) post(ctx context.Context, path, apiKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("apikey", apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("messaging platform error (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
