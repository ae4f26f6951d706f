package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuestionAuthor is the public profile of the user who asked a question.
type QuestionAuthor struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type Question struct {
	ID         uuid.UUID       `json:"id"`
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Model      string          `json:"model,omitempty"`
	TokensUsed *int            `json:"tokensUsed,omitempty"`
	UserID     uuid.UUID       `json:"userId"`
	CompanyID  uuid.UUID       `json:"companyId"`
	User       *QuestionAuthor `json:"user,omitempty"`
	Embedding  []float32       `json:"-"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type QuestionWithScore struct {
	Question
	Score float32 `json:"score"`
}

// QuestionStat is the number of questions asked on one calendar day.
type QuestionStat struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// UserStat is one row of the per-tenant leaderboard.
type UserStat struct {
	UserID        uuid.UUID `json:"userId"`
	UserName      string    `json:"userName"`
	QuestionCount int       `json:"questionCount"`
}

type DashboardSummary struct {
	TotalQuestionsThisWeek int            `json:"totalQuestionsThisWeek"`
	QuestionStats          []QuestionStat `json:"questionStats"`
	TopUsers               []UserStat     `json:"topUsers"`
	GeneratedAt            time.Time      `json:"generatedAt"`
}
