package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/aetas/aetas/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var (
	ErrNotConfigured = errors.New("api key not configured")
	ErrUpstream      = errors.New("completion request failed")
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer returns the assistant's answer to a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type completionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ChatClient talks to an OpenAI-compatible chat completions endpoint. Every call is a single
// attempt bounded by the configured timeout.
type ChatClient struct {
	httpClient *http.Client
	cfg        config.AI
}

func NewChatClient(cfg config.AI) *ChatClient {
	var httpClient *http.Client
	if cfg.APIKey != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.APIKey,
			TokenType:   "Bearer",
		}))
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout
	return &ChatClient{httpClient: httpClient, cfg: cfg}
}

func (c *ChatClient) Complete(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}
	body, err := json.Marshal(completionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Tracef("Requesting completion from %s with %d messages", url, len(messages))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var upstream errorResponse
		message := resp.Status
		if json.Unmarshal(payload, &upstream) == nil && upstream.Error.Message != "" {
			message = upstream.Error.Message
		}
		log.Errorf("completion endpoint answered %d: %s", resp.StatusCode, message)
		return "", fmt.Errorf("%w: %s", ErrUpstream, message)
	}

	var completion completionResponse
	if err := json.Unmarshal(payload, &completion); err != nil {
		return "", fmt.Errorf("%w: invalid response: %v", ErrUpstream, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrUpstream)
	}
	return completion.Choices[0].Message.Content, nil
}
