// Package telegram is a minimal Bot API client: long-polling updates in,
// messages and callback answers out. Only the methods the bot needs are
// implemented.
package telegram

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

	"github.com/sethvargo/go-retry"
)

// Client talks to the Telegram Bot API over HTTPS.
type Client struct {
	token       string
	baseURL     string
	client      *http.Client
	logger      *slog.Logger
	pollTimeout int // getUpdates long-poll timeout, seconds
}

func NewClient(token string, pollTimeout int, logger *slog.Logger) *Client {
	return &Client{
		token:   token,
		baseURL: "https://api.telegram.org",
		// Must outlast the long-poll timeout.
		client:      &http.Client{Timeout: time.Duration(pollTimeout+10) * time.Second},
		logger:      logger,
		pollTimeout: pollTimeout,
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description,omitempty"`
}

// call posts payload to the named method, retrying transient failures
// (network errors, 429, 5xx) with exponential backoff.
func (c *Client) call(ctx context.Context, method string, payload map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", method, err)
	}

	var result json.RawMessage
	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("%s: status %d", method, resp.StatusCode))
		}

		var api apiResponse
		if err := json.Unmarshal(respBody, &api); err != nil {
			return fmt.Errorf("decode %s response: %w", method, err)
		}
		if !api.OK {
			return fmt.Errorf("%s: %s", method, api.Description)
		}
		result = api.Result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetUpdates fetches updates with ids >= offset, long-polling for up to
// the client's poll timeout.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	result, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": c.pollTimeout,
	})
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// Poll fetches updates forever, invoking handle for each one, until ctx
// is canceled. Transient poll errors are logged and retried after a short
// sleep so a network blip never kills the loop.
func (c *Client) Poll(ctx context.Context, handle func(context.Context, Update)) {
	var offset int64
	c.logger.Info("polling started")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := c.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("poll failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			handle(ctx, u)
		}
	}
}

// SendMessage sends text to the chat, optionally with an inline or reply
// keyboard (pass either, or neither). Text is sent as Markdown; if
// Telegram rejects the formatting the message is resent as plain text so
// user-authored habit names can never make a reply undeliverable.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, keyboard any) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	_, err := c.call(ctx, "sendMessage", payload)
	if err != nil && strings.Contains(err.Error(), "parse") {
		delete(payload, "parse_mode")
		_, err = c.call(ctx, "sendMessage", payload)
	}
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// EditMessageText replaces the text (and inline keyboard) of a message
// the bot sent earlier, with the same Markdown fallback as SendMessage.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, keyboard *InlineKeyboard) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	_, err := c.call(ctx, "editMessageText", payload)
	if err != nil && strings.Contains(err.Error(), "parse") {
		delete(payload, "parse_mode")
		_, err = c.call(ctx, "editMessageText", payload)
	}
	if err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query with a short toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	_, err := c.call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
	})
	if err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}
