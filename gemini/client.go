// Package gemini is a minimal client for the Google Generative
// Language API, used to phrase productivity statistics as prose.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/Nethaiah/commitlens/logger"
)

// ErrEmptyResponse marks a generation call that returned no text.
var ErrEmptyResponse = fmt.Errorf("empty response from gemini")

// Client represents a Generative Language API client
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    *url.URL
}

// NewClient creates a client for the given model. The caller decides
// whether a key is configured at all; an absent key means the insight
// generator never constructs a Client.
func NewClient(apiKey, model string) *Client {
	baseURL, _ := url.Parse("https://generativelanguage.googleapis.com")
	logger.Info("Initializing Gemini client", zap.String("model", model))
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: baseURL,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and returns the model's text response.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode generate request: %w", err)
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", c.model)
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	q := reqURL.Query()
	q.Set("key", c.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Gemini request failed", zap.Error(err))
		return "", fmt.Errorf("failed to call gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		logger.Error("Gemini request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.ByteString("body", text))
		return "", fmt.Errorf("gemini status %d: %s", resp.StatusCode, text)
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := decoded.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
