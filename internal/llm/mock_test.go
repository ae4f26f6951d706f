package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockClient_TopicAnswers(t *testing.T) {
	tests := []struct {
		name     string
		question string
		contains string
	}{
		{"ai keyword", "What is AI?", "Artificial Intelligence (AI)"},
		{"ai phrase", "Explain artificial intelligence to me", "Artificial Intelligence (AI)"},
		{"machine learning", "How does machine learning work?", "Machine Learning is a subset"},
		{"ml keyword", "Is ML hard to learn?", "Machine Learning is a subset"},
		{"programming", "How do I start programming?", "Programming involves"},
		{"code keyword", "Why does my code fail?", "Programming involves"},
	}

	c := NewMockClient()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Complete(context.Background(), tt.question)
			require.NoError(t, err)
			assert.Contains(t, got.Text, tt.contains)
			assert.Equal(t, mockModel, got.Model)
			require.NotNil(t, got.TokensUsed)
			assert.Equal(t, len(got.Text)/4, *got.TokensUsed)
		})
	}
}

func TestMockClient_WordBoundaries(t *testing.T) {
	// "said" contains "ai" but is not the word.
	answer := mockAnswer("What she said about the weather yesterday")
	assert.NotContains(t, answer, "Artificial Intelligence (AI)")
}

func TestMockClient_GenericIsDeterministic(t *testing.T) {
	q := "What is the capital of France?"
	first := mockAnswer(q)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, mockAnswer(q))
	}
	assert.NotEmpty(t, first)
}

func TestMockClient_Overrides(t *testing.T) {
	t.Run("forced response", func(t *testing.T) {
		c := NewMockClient()
		c.Response = &domain.Completion{Text: "forced", Model: "m"}
		got, err := c.Complete(context.Background(), "anything at all")
		require.NoError(t, err)
		assert.Equal(t, "forced", got.Text)
	})

	t.Run("forced error", func(t *testing.T) {
		c := NewMockClient()
		c.Err = errors.New("boom")
		_, err := c.Complete(context.Background(), "anything at all")
		assert.EqualError(t, err, "boom")
	})

	t.Run("delay honors context", func(t *testing.T) {
		c := NewMockClient()
		c.Delay = time.Second
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := c.Complete(ctx, "anything at all")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("records calls", func(t *testing.T) {
		c := NewMockClient()
		_, _ = c.Complete(context.Background(), "one")
		_, _ = c.Complete(context.Background(), "two")
		assert.Equal(t, []string{"one", "two"}, c.Calls())
	})
}
