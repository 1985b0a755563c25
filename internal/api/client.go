// Package api implements the HTTP client for the agent backend: the poll
// endpoint the transcript is synchronized from, the message endpoint, and the
// context lifecycle and control calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// Config describes how to reach the backend.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client talks to one backend instance. Safe for use from multiple tea
// commands; it holds no mutable state beyond the underlying http.Client.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New builds a Client, applying the default timeout when none is configured.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}
}

// Poll fetches the current log snapshot for a context. A nil request context
// id asks the server for (or to create) a default context.
func (c *Client) Poll(ctx context.Context, req PollRequest) (*PollResponse, error) {
	var resp PollResponse
	if err := c.postJSON(ctx, "poll", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Send delivers a user message as JSON.
func (c *Client) Send(ctx context.Context, req SendRequest) (*SendResponse, error) {
	var resp SendResponse
	if err := c.postJSON(ctx, "message_async", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Attachment is a file sent alongside a message. Bytes are passed through
// opaquely; encoding concerns belong to the backend.
type Attachment struct {
	Name string
	Data []byte
}

// SendWithAttachments delivers a user message as multipart form data.
func (c *Client) SendWithAttachments(ctx context.Context, req SendRequest, attachments []Attachment) (*SendResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := map[string]string{
		"text":       req.Text,
		"context":    req.Context,
		"message_id": req.MessageID,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, &TransportError{Op: "message_async", Message: "encode form field", Cause: err}
		}
	}
	for _, att := range attachments {
		part, err := writer.CreateFormFile("attachments", filepath.Base(att.Name))
		if err != nil {
			return nil, &TransportError{Op: "message_async", Message: "encode attachment", Cause: err}
		}
		if _, err := part.Write(att.Data); err != nil {
			return nil, &TransportError{Op: "message_async", Message: "write attachment", Cause: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &TransportError{Op: "message_async", Message: "finalize form", Cause: err}
	}

	body, err := c.post(ctx, "message_async", writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	var resp SendResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &TransportError{Op: "message_async", Message: "decode response", Cause: err}
	}
	return &resp, nil
}

// ResetContext truncates a context's log on the server, rotating its log guid.
func (c *Client) ResetContext(ctx context.Context, id string) error {
	return c.postJSON(ctx, "chat_reset", map[string]string{"context": id}, nil)
}

// RemoveContext deletes a context. Callers must have switched the UI off the
// context before issuing this.
func (c *Client) RemoveContext(ctx context.Context, id string) error {
	return c.postJSON(ctx, "chat_remove", map[string]string{"context": id}, nil)
}

// ExportContext returns the serialized content of a context.
func (c *Client) ExportContext(ctx context.Context, id string) (*ExportResponse, error) {
	var resp ExportResponse
	if err := c.postJSON(ctx, "chat_export", map[string]string{"ctxid": id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ImportContexts uploads previously exported payloads and returns the ids of
// the contexts the server created from them.
func (c *Client) ImportContexts(ctx context.Context, payloads []string) (*ImportResponse, error) {
	var resp ImportResponse
	if err := c.postJSON(ctx, "chat_load", map[string][]string{"chats": payloads}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetPaused pauses or resumes the agent loop for a context.
func (c *Client) SetPaused(ctx context.Context, id string, paused bool) error {
	payload := map[string]any{"context": id, "paused": paused}
	return c.postJSON(ctx, "pause", payload, nil)
}

// Nudge pokes a stuck agent to produce its next step.
func (c *Client) Nudge(ctx context.Context, id string) error {
	return c.postJSON(ctx, "nudge", map[string]string{"ctxid": id}, nil)
}

// Restart asks the backend process to restart itself.
func (c *Client) Restart(ctx context.Context) error {
	return c.postJSON(ctx, "restart", struct{}{}, nil)
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.postJSON(ctx, "health_check", struct{}{}, nil)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return &TransportError{Op: endpoint, Message: "encode request", Cause: err}
	}
	body, err := c.post(ctx, endpoint, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: endpoint, Message: "decode response", Cause: err}
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, body io.Reader) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Message: "build request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: endpoint, Message: "read response", Cause: err}
	}
	if resp.StatusCode >= 400 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, &TransportError{Op: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}
	return data, nil
}
