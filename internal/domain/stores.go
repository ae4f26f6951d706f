package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CompanyStore interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*Company, error)
	GetByName(ctx context.Context, name string) (*Company, error)
}

type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type RefreshTokenStore interface {
	Create(ctx context.Context, t *RefreshToken) error
	// Consume deletes the token and returns the deleted row. Exactly one
	// caller can consume a given token.
	Consume(ctx context.Context, token string) (*RefreshToken, error)
	// Delete removes the token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type QuestionStore interface {
	Create(ctx context.Context, q *Question) error
	GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*Question, error)
	ListByUser(ctx context.Context, userID uuid.UUID, companyID uuid.UUID, params PageParams) ([]Question, error)
	CountByUser(ctx context.Context, userID uuid.UUID, companyID uuid.UUID) (int, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, params PageParams) ([]Question, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error)
	// FindSimilar ranks other questions of the tenant by embedding distance
	// to the given question.
	FindSimilar(ctx context.Context, id uuid.UUID, companyID uuid.UUID, limit int) ([]QuestionWithScore, error)
	DailyCounts(ctx context.Context, companyID uuid.UUID, since time.Time) ([]QuestionStat, error)
	TopUsers(ctx context.Context, companyID uuid.UUID, limit int) ([]UserStat, error)
}

// TxRunner runs fn inside a single database transaction. Stores called with
// the ctx passed to fn participate in that transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LLMClient is a raw AI provider. It may fail.
type LLMClient interface {
	Complete(ctx context.Context, question string) (*Completion, error)
}

// Answerer is the hardened AI capability used by the answer pipeline. It
// never fails: provider errors and timeouts resolve to a fallback answer.
type Answerer interface {
	Answer(ctx context.Context, question string) Completion
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
