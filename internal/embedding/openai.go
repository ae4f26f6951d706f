package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIEmbeddingURL = "https://api.openai.com/v1/embeddings"
	embeddingModel     = "text-embedding-3-small"

	requestTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20
	maxErrorBody     = 256
)

var errEmptyInput = errors.New("embedding input is empty")

// APIError is a non-200 answer from the embeddings endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("embedding API returned status %d: %s", e.StatusCode, e.Message)
}

// OpenAIClient embeds question text with text-embedding-3-small, asking the
// API for vectors sized to the questions.embedding column.
type OpenAIClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		endpoint: openAIEmbeddingURL,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// WithBaseURL points the client at a different endpoint.
func (c *OpenAIClient) WithBaseURL(url string) *OpenAIClient {
	c.endpoint = url
	return c
}

type embedRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Dimensions     int    `json:"dimensions"`
	EncodingFormat string `json:"encoding_format"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// normalizeQuestion collapses runs of whitespace so that the same question
// typed with different spacing embeds identically.
func normalizeQuestion(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	input := normalizeQuestion(text)
	if input == "" {
		return nil, errEmptyInput
	}

	payload, err := json.Marshal(embedRequest{
		Model:          embeddingModel,
		Input:          input,
		Dimensions:     Dimensions,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("encode embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxResponseBytes)
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp.StatusCode, body)
	}

	var out embedResponse
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	return pickVector(out)
}

func readAPIError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(body)
	apiErr := &APIError{StatusCode: status}

	var parsed apiErrorBody
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
		return apiErr
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	apiErr.Message = msg
	return apiErr
}

// pickVector returns the vector for the single input sent, which the API
// reports at index 0.
func pickVector(out embedResponse) ([]float32, error) {
	for _, d := range out.Data {
		if d.Index != 0 {
			continue
		}
		if len(d.Embedding) != Dimensions {
			return nil, fmt.Errorf("embedding has %d dimensions, want %d", len(d.Embedding), Dimensions)
		}
		return d.Embedding, nil
	}
	return nil, errors.New("embedding response contained no vector")
}
