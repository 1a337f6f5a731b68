package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const anthropicBaseURL = "https://api.anthropic.com/v1"

// AnthropicClient speaks the messages API, which takes the system prompt as
// a top-level field rather than a message.
type AnthropicClient struct {
	baseURL    string
	apiKey     string
	maxTokens  int
	httpClient *http.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	return &AnthropicClient{
		baseURL:    anthropicBaseURL,
		apiKey:     apiKey,
		maxTokens:  4096,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// SetBaseURL points the client at a different endpoint, used by tests.
func (c *AnthropicClient) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *AnthropicClient) Complete(ctx context.Context, model, systemMessage, userMessage string) (string, error) {
	reqBody := anthropicRequest{
		Model:     model,
		MaxTokens: c.maxTokens,
		System:    systemMessage,
		Messages: []anthropicMessage{
			{Role: "user", Content: userMessage},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", errors.Errorf("anthropic API error %d: %s", resp.StatusCode, string(respBody))
	}

	var result anthropicResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}

	if len(result.Content) == 0 {
		return "", errors.New("empty response from model")
	}

	return result.Content[0].Text, nil
}
