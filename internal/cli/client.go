// Package cli implements the terminal client for the analyzer API.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	maxRetries      = 4 // 5 attempts total
	maxRetryBackoff = 20 * time.Second
)

// Client talks to the analyzer HTTP API. Rate-limited calls are retried
// with exponential backoff before giving up.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

type apiError struct {
	Error string `json:"error"`
}

// ProcessRepoResult is the registration response for a repository.
type ProcessRepoResult struct {
	RepoID   string `json:"repo_id"`
	ThreadID string `json:"thread_id"`
	User     string `json:"user"`
	Repo     string `json:"repo"`
}

// ConversationResult is the poll response for a conversation turn.
type ConversationResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// post sends one JSON request, retrying on 429 responses.
func (c *Client) post(path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	operation := func() error {
		resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("rate limited by %s", path)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr apiError
			if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
				return backoff.Permanent(fmt.Errorf("%s", apiErr.Error))
			}
			return backoff.Permanent(fmt.Errorf("%s: unexpected status %s", path, resp.Status))
		}

		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode response: %w", err))
			}
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxInterval = maxRetryBackoff
	return backoff.Retry(operation, backoff.WithMaxRetries(b, maxRetries))
}

func (c *Client) CreateAssistant(name string) (string, error) {
	var out struct {
		AssistantID string `json:"assistant_id"`
	}
	err := c.post("/api/v1/assistant/create", map[string]string{"name": name}, &out)
	return out.AssistantID, err
}

func (c *Client) ProcessRepo(assistantID, url string) (*ProcessRepoResult, error) {
	var out ProcessRepoResult
	err := c.post("/api/v1/repo/process", map[string]string{
		"assistant_id": assistantID,
		"url":          url,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckRepo(threadID string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := c.post("/api/v1/repo/check", map[string]string{"thread_id": threadID}, &out)
	return out.Status, err
}

func (c *Client) SendMessage(message, assistantID, threadID string) error {
	return c.post("/api/v1/conversation/message", map[string]string{
		"message":      message,
		"assistant_id": assistantID,
		"thread_id":    threadID,
	}, nil)
}

func (c *Client) GetResult(threadID string) (*ConversationResult, error) {
	var out ConversationResult
	err := c.post("/api/v1/conversation/result", map[string]string{"thread_id": threadID}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
