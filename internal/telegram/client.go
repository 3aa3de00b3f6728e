// Package telegram mirrors dashboard events to a Telegram chat.
//
// This package provides:
//   - A minimal Bot API client (sendMessage only)
//   - Formatted notices for resolved complaints
//
// A nil *Client is valid and does nothing, so callers never need to check
// whether Telegram is configured.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is the Telegram Bot API root.
const DefaultAPIURL = "https://api.telegram.org"

// Client holds Telegram bot configuration.
type Client struct {
	BotToken string
	ChatID   string
	APIURL   string // Bot API root, DefaultAPIURL when empty

	httpClient *http.Client
}

// Message represents a Telegram sendMessage payload.
type Message struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// ResolvedNotice describes a complaint that was just marked resolved.
type ResolvedNotice struct {
	SubmitterID string
	PostID      string
	Operator    string // admin username, may be empty
	Simulated   bool   // resolve call was skipped by debug mode
	At          time.Time
}

// NewClient returns a client, or nil when either the token or the chat id is
// empty.
func NewClient(botToken, chatID string, httpClient *http.Client) *Client {
	if botToken == "" || chatID == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		BotToken:   botToken,
		ChatID:     chatID,
		APIURL:     DefaultAPIURL,
		httpClient: httpClient,
	}
}

// doRequest calls a Bot API method and checks the "ok" flag of the answer.
func (c *Client) doRequest(ctx context.Context, method string, payload interface{}) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	root := c.APIURL
	if root == "" {
		root = DefaultAPIURL
	}
	apiURL := fmt.Sprintf("%s/bot%s/%s", strings.TrimRight(root, "/"), c.BotToken, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// the URL embeds the bot token, keep it out of the error
		return nil, fmt.Errorf("failed to send request to Telegram method %s", method)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if ok, exists := result["ok"].(bool); !exists || !ok {
		return nil, fmt.Errorf("telegram API error: %v", result["description"])
	}

	return result, nil
}

// SendResolvedNotice posts an HTML-formatted notice for a resolved complaint.
// Calling it on a nil client is a no-op.
func (c *Client) SendResolvedNotice(ctx context.Context, n ResolvedNotice) error {
	if c == nil {
		return nil
	}

	msg := Message{
		ChatID:                c.ChatID,
		Text:                  FormatResolvedNotice(n),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	if _, err := c.doRequest(ctx, "sendMessage", msg); err != nil {
		return fmt.Errorf("failed to send Telegram notice: %w", err)
	}
	return nil
}

// FormatResolvedNotice renders the notice text. Every dynamic value is HTML
// escaped.
func FormatResolvedNotice(n ResolvedNotice) string {
	var b strings.Builder

	title := "✅ <b>Complaint resolved</b>"
	if n.Simulated {
		title = "🐛 <b>Complaint resolved (simulated)</b>"
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<b>%s:</b> %s\n", label, html.EscapeString(value))
	}
	line("Post", n.PostID)
	line("Submitter", n.SubmitterID)
	line("Resolved by", n.Operator)

	at := n.At
	if at.IsZero() {
		at = time.Now()
	}
	fmt.Fprintf(&b, "<b>At:</b> %s", at.Format("2006-01-02 15:04:05"))

	return b.String()
}
