package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/askdesk/internal/domain"
)

const (
	openAIChatURL = "https://api.openai.com/v1/chat/completions"
	chatModel     = "gpt-4o-mini"
)

// chatCompleter speaks the OpenAI chat completions wire format, which
// Cerebras also implements.
type chatCompleter struct {
	name       string
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *chatCompleter) Complete(ctx context.Context, question string) (*domain.Completion, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
		MaxTokens:   maxAnswerTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s API returned status %d: %s", c.name, resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal %s response: %w", c.name, err)
	}

	if result.Error != nil {
		return nil, fmt.Errorf("%s API error: %s", c.name, result.Error.Message)
	}

	completion := &domain.Completion{Model: c.model}
	if len(result.Choices) > 0 {
		completion.Text = strings.TrimSpace(result.Choices[0].Message.Content)
	}
	if completion.Text == "" {
		completion.Text = emptyAnswer
	}
	if result.Usage != nil {
		tokens := result.Usage.TotalTokens
		completion.TokensUsed = &tokens
	}
	return completion, nil
}

type OpenAIClient struct {
	chatCompleter
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if model == "" {
		model = chatModel
	}
	return &OpenAIClient{chatCompleter{
		name:       "openai",
		url:        openAIChatURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
	}}
}

// WithBaseURL points the client at a different endpoint, e.g. a proxy.
func (c *OpenAIClient) WithBaseURL(url string) *OpenAIClient {
	c.url = url
	return c
}
