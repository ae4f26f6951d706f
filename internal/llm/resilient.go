package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/metrics"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

// ResilientAnswerer bounds every provider call with a timeout and turns any
// failure into FallbackAnswer. Answer never returns an error.
type ResilientAnswerer struct {
	client   domain.LLMClient
	provider string
	timeout  time.Duration
	logger   *zap.Logger
	metrics  metrics.Recorder
}

func NewResilientAnswerer(client domain.LLMClient, provider string, timeout time.Duration, logger *zap.Logger, rec metrics.Recorder) *ResilientAnswerer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &ResilientAnswerer{
		client:   client,
		provider: provider,
		timeout:  timeout,
		logger:   logger,
		metrics:  rec,
	}
}

type completionResult struct {
	completion *domain.Completion
	err        error
}

func (a *ResilientAnswerer) Answer(ctx context.Context, question string) domain.Completion {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	ch := make(chan completionResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- completionResult{err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		c, err := a.client.Complete(ctx, question)
		ch <- completionResult{completion: c, err: err}
	}()

	// The select also covers providers that ignore ctx.
	select {
	case res := <-ch:
		if res.err != nil {
			return a.fallback(failureReason(res.err), res.err)
		}
		if res.completion == nil || res.completion.Text == "" {
			return a.fallback("empty", errors.New("provider returned no answer"))
		}

		a.metrics.RecordAICompletion(a.provider, time.Since(start))
		fields := []zap.Field{
			zap.String("provider", a.provider),
			zap.String("model", res.completion.Model),
			zap.Int("question_length", len(question)),
			zap.Int("answer_length", len(res.completion.Text)),
			zap.Duration("duration", time.Since(start)),
		}
		if res.completion.TokensUsed != nil {
			fields = append(fields, zap.Int("tokens_used", *res.completion.TokensUsed))
		}
		a.logger.Info("ai question processed", fields...)
		return *res.completion

	case <-ctx.Done():
		return a.fallback(failureReason(ctx.Err()), ctx.Err())
	}
}

func (a *ResilientAnswerer) fallback(reason string, err error) domain.Completion {
	a.metrics.RecordAIFallback(reason)
	a.logger.Error("ai provider failed, using fallback answer",
		zap.String("provider", a.provider),
		zap.String("reason", reason),
		zap.Error(err))
	return domain.Completion{Text: FallbackAnswer, Model: a.provider}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
