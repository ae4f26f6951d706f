package service

import (
	"context"
	"errors"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/metrics"
	"github.com/Harshitk-cp/askdesk/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrQuestionProcessingFailed = errors.New("failed to process question")

const (
	embedTimeout        = 10 * time.Second
	defaultSimilarLimit = 5
	maxSimilarLimit     = 20
)

type QuestionService struct {
	store    domain.QuestionStore
	answerer domain.Answerer
	embedder domain.EmbeddingClient
	logger   *zap.Logger
	metrics  metrics.Recorder
}

// NewQuestionService wires the answer pipeline. embedder may be nil, in which
// case questions are stored without embeddings.
func NewQuestionService(s domain.QuestionStore, answerer domain.Answerer, embedder domain.EmbeddingClient, logger *zap.Logger, rec metrics.Recorder) *QuestionService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &QuestionService{
		store:    s,
		answerer: answerer,
		embedder: embedder,
		logger:   logger,
		metrics:  rec,
	}
}

// AskQuestion answers and stores a question. The AI step cannot fail; only a
// persistence failure is reported, as ErrQuestionProcessingFailed.
func (s *QuestionService) AskQuestion(ctx context.Context, question string, userID, companyID uuid.UUID) (*domain.Question, error) {
	completion := s.answerer.Answer(ctx, question)

	q := &domain.Question{
		Question:   question,
		Answer:     completion.Text,
		Model:      completion.Model,
		TokensUsed: completion.TokensUsed,
		UserID:     userID,
		CompanyID:  companyID,
		Embedding:  s.embed(ctx, question),
	}

	if err := s.store.Create(ctx, q); err != nil {
		s.logger.Error("failed to persist question",
			zap.String("user_id", userID.String()),
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return nil, ErrQuestionProcessingFailed
	}
	s.metrics.RecordQuestionAsked()

	// Re-read to pick up the author profile.
	stored, err := s.store.GetByID(ctx, q.ID, companyID)
	if err != nil {
		s.logger.Warn("failed to reload question", zap.String("question_id", q.ID.String()), zap.Error(err))
		return q, nil
	}
	return stored, nil
}

func (s *QuestionService) embed(ctx context.Context, text string) []float32 {
	if s.embedder == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, embedTimeout)
	defer cancel()

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("question embedding failed", zap.Error(err))
		return nil
	}
	return vec
}

func (s *QuestionService) GetUserQuestions(ctx context.Context, userID, companyID uuid.UUID, params domain.PageParams) (domain.Page[domain.Question], error) {
	items, err := s.store.ListByUser(ctx, userID, companyID, params)
	if err != nil {
		return domain.Page[domain.Question]{}, err
	}
	total, err := s.store.CountByUser(ctx, userID, companyID)
	if err != nil {
		return domain.Page[domain.Question]{}, err
	}
	return domain.NewPage(items, params, total), nil
}

func (s *QuestionService) GetCompanyQuestions(ctx context.Context, companyID uuid.UUID, params domain.PageParams) (domain.Page[domain.Question], error) {
	items, err := s.store.ListByCompany(ctx, companyID, params)
	if err != nil {
		return domain.Page[domain.Question]{}, err
	}
	total, err := s.store.CountByCompany(ctx, companyID)
	if err != nil {
		return domain.Page[domain.Question]{}, err
	}
	return domain.NewPage(items, params, total), nil
}

// GetQuestionByID returns nil, nil when the question does not exist or
// belongs to another company.
func (s *QuestionService) GetQuestionByID(ctx context.Context, id, companyID uuid.UUID) (*domain.Question, error) {
	q, err := s.store.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

// GetSimilarQuestions returns nil, nil when the question is not visible to
// companyID, and an empty slice when it has no embedding.
func (s *QuestionService) GetSimilarQuestions(ctx context.Context, id, companyID uuid.UUID, limit int) ([]domain.QuestionWithScore, error) {
	q, err := s.GetQuestionByID(ctx, id, companyID)
	if err != nil || q == nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultSimilarLimit
	}
	if limit > maxSimilarLimit {
		limit = maxSimilarLimit
	}

	similar, err := s.store.FindSimilar(ctx, id, companyID, limit)
	if err != nil {
		return nil, err
	}
	if similar == nil {
		similar = []domain.QuestionWithScore{}
	}
	return similar, nil
}
