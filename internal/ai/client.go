// Package ai is the HTTP client for the downstream chat service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chatter is what the conversation service depends on; Client is the real
// implementation, tests substitute fakes.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

type Client struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

type chatResp struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Chat posts the full ordered turn sequence and returns the assistant
// content. One call, no retry; the caller decides what a failure means.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if c.Client == nil {
		return "", errors.New("chat: http client is nil")
	}

	b, err := json.Marshal(messages)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat", c.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return "", fmt.Errorf("chat: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded chatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != "" {
		return "", errors.New(decoded.Error)
	}
	return decoded.Content, nil
}
