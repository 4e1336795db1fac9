// Package channel provides the HTTP client for the WhatsApp gateway that
// delivers outbound messages and acknowledgements.
package channel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Client talks to a gowa-style WhatsApp gateway. A nil client is safe to use
// and drops all calls, so the pipeline can run without a configured gateway
// in development.
type Client struct {
	baseURL  string
	apiKey   string
	deviceID string
	http     *http.Client
	log      *logger.Logger
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type presenceRequest struct {
	Phone  string `json:"phone"`
	Action string `json:"action"`
}

type readRequest struct {
	MessageID string `json:"message_id"`
}

func NewClient(cfg config.ChannelConfig, log *logger.Logger) *Client {
	if cfg.GetChannelURL() == "" {
		return nil
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetChannelURL(), "/"),
		apiKey:   cfg.GetChannelAPIKey(),
		deviceID: cfg.GetChannelDeviceID(),
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// SendText delivers one text message to the destination contact id.
func (c *Client) SendText(ctx context.Context, destination, text string) error {
	if c == nil {
		return nil
	}

	err := c.post(ctx, "/send/message", sendRequest{Phone: destination, Message: text})
	if err != nil {
		return err
	}

	c.log.Info("channel message sent", "destination", destination)
	return nil
}

// MarkRead acknowledges an inbound message on the channel.
func (c *Client) MarkRead(ctx context.Context, eventRef string) error {
	if c == nil {
		return nil
	}
	return c.post(ctx, "/message/read", readRequest{MessageID: eventRef})
}

// SetTyping toggles the typing indicator for the destination contact.
func (c *Client) SetTyping(ctx context.Context, destination string, typing bool) error {
	if c == nil {
		return nil
	}

	action := "stop"
	if typing {
		action = "start"
	}
	return c.post(ctx, "/send/chat-presence", presenceRequest{Phone: destination, Action: action})
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal channel payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", formatAuthHeader(c.apiKey))
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("channel request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("channel gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return nil
}

func formatAuthHeader(apiKey string) string {
	if strings.HasPrefix(strings.ToLower(apiKey), "basic ") {
		return apiKey
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(apiKey))
	return "Basic " + encoded
}
