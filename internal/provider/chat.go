package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const chatSystemPrompt = "You are a WCAG 2.2 web accessibility expert. Return only valid JSON."

// Chat speaks the OpenAI chat-completions protocol, which Groq also serves.
// Authentication is left to the HTTP client's transport.
type Chat struct {
	name    string
	baseURL string
	model   string
}

// NewChat returns a chat-completions adapter for the named provider.
func NewChat(name, baseURL, model string) *Chat {
	return &Chat{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (c *Chat) Name() string { return c.name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *Chat) BuildRequest(ctx context.Context, prompt string) (*http.Request, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: chatSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Chat) ExtractText(body []byte) (string, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding %s response: %w", c.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", ErrBlocked)
	}

	choice := resp.Choices[0]
	if strings.TrimSpace(choice.Message.Content) == "" {
		if choice.FinishReason != "" {
			return "", fmt.Errorf("%w: finish reason %s", ErrBlocked, choice.FinishReason)
		}
		return "", fmt.Errorf("%w: empty message", ErrBlocked)
	}
	return choice.Message.Content, nil
}

// vendorErrorMessage extracts error.message from an error envelope. OpenAI,
// Groq and Google all use this shape.
func vendorErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}
