package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Harm categories relaxed for code review; markup routinely trips them.
var googleSafetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Google speaks the Gemini generateContent protocol.
type Google struct {
	baseURL string
	model   string
	apiKey  string
}

// NewGoogle returns a Gemini adapter. The key travels in the
// x-goog-api-key header.
func NewGoogle(baseURL, model, apiKey string) *Google {
	return &Google{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
	}
}

func (g *Google) Name() string { return "google" }

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
}

type googleSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type googleRequest struct {
	Contents         []googleContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
	SafetySettings []googleSafetySetting `json:"safetySettings"`
}

type googleResponse struct {
	Candidates []struct {
		Content      googleContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (g *Google) BuildRequest(ctx context.Context, prompt string) (*http.Request, error) {
	payload := googleRequest{
		Contents: []googleContent{{Parts: []googlePart{{Text: prompt}}}},
	}
	payload.GenerationConfig.Temperature = temperature
	for _, c := range googleSafetyCategories {
		payload.SafetySettings = append(payload.SafetySettings, googleSafetySetting{Category: c, Threshold: "BLOCK_NONE"})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := g.baseURL + "/models/" + url.PathEscape(g.model) + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)
	return req, nil
}

func (g *Google) ExtractText(body []byte) (string, error) {
	var resp googleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding google response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		if reason := resp.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("%w: blocked, reason %s", ErrBlocked, reason)
		}
		return "", fmt.Errorf("%w: response has no candidates", ErrBlocked)
	}

	c := resp.Candidates[0]
	if len(c.Content.Parts) == 0 || strings.TrimSpace(c.Content.Parts[0].Text) == "" {
		if c.FinishReason != "" {
			return "", fmt.Errorf("%w: finish reason %s", ErrBlocked, c.FinishReason)
		}
		return "", fmt.Errorf("%w: candidate has no text", ErrBlocked)
	}
	return c.Content.Parts[0].Text, nil
}
