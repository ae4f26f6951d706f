package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
)

const mockModel = "mock-model"

const mockNote = "\n\n*Note: This is a mock response for development purposes.*"

// MockClient answers without a network call. With no overrides set it
// produces deterministic, topic-aware answers; tests can force a response,
// an error or a delay.
type MockClient struct {
	Response *domain.Completion
	Err      error
	Delay    time.Duration

	mu    sync.Mutex
	calls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Complete(ctx context.Context, question string) (*domain.Completion, error) {
	c.mu.Lock()
	c.calls = append(c.calls, question)
	c.mu.Unlock()

	if c.Delay > 0 {
		select {
		case <-time.After(c.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.Err != nil {
		return nil, c.Err
	}
	if c.Response != nil {
		resp := *c.Response
		return &resp, nil
	}

	text := mockAnswer(question)
	tokens := len(text) / 4
	return &domain.Completion{Text: text, Model: mockModel, TokensUsed: &tokens}, nil
}

// Calls returns the questions seen so far.
func (c *MockClient) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func mockAnswer(question string) string {
	lower := strings.ToLower(question)
	words := strings.FieldsFunc(lower, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	hasWord := func(w string) bool {
		for _, x := range words {
			if x == w {
				return true
			}
		}
		return false
	}

	switch {
	case strings.Contains(lower, "artificial intelligence") || hasWord("ai"):
		return `Artificial Intelligence (AI) refers to the simulation of human intelligence in machines that are programmed to think and learn like humans. AI works through several key approaches:

1. **Machine Learning**: Systems that learn and improve from experience without being explicitly programmed for every task.

2. **Neural Networks**: Computing systems inspired by biological neural networks, which process information through interconnected nodes.

3. **Data Processing**: AI analyzes large amounts of data to identify patterns, make predictions, and generate insights.

4. **Algorithms**: Mathematical procedures that let machines recognize patterns and make decisions.

Modern AI systems use deep learning to understand and generate human-like text by training on vast datasets.` + mockNote

	case strings.Contains(lower, "machine learning") || hasWord("ml"):
		return `Machine Learning is a subset of artificial intelligence that enables computers to learn and improve automatically from experience without being explicitly programmed. It works by identifying patterns in data and making predictions or decisions based on those patterns.` + mockNote

	case strings.Contains(lower, "programming") || hasWord("code"):
		return `Programming involves writing instructions for computers to execute specific tasks. It requires understanding programming languages, algorithms, and problem-solving techniques to create software applications.` + mockNote
	}

	generic := []string{
		fmt.Sprintf("Thank you for your question about %q. This is a simulated AI response for development purposes. In a production environment, this would be answered by a real AI model.", truncate(question, 50)),
		fmt.Sprintf("I understand you're asking about %s. This is a test response generated by the mock AI service for development and testing purposes.", firstWords(question, 5)),
		fmt.Sprintf("Your question has been received and processed. This mock response demonstrates how the AI service would handle your inquiry about: %s", truncate(question, 40)),
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(question))
	return generic[h.Sum32()%uint32(len(generic))]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}
