package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

type QuestionStore struct {
	db *pgxpool.Pool
}

func NewQuestionStore(db *pgxpool.Pool) *QuestionStore {
	return &QuestionStore{db: db}
}

// Every read joins the author so callers get {id, name, email} without a
// second lookup.
const questionSelect = `SELECT q.id, q.question, q.answer, q.model, q.tokens_used, q.user_id, q.company_id, q.created_at,
		        u.name, u.email
		 FROM questions q
		 JOIN users u ON u.id = q.user_id`

func (s *QuestionStore) Create(ctx context.Context, q *domain.Question) error {
	var embedding *pgvector.Vector
	if len(q.Embedding) > 0 {
		v := pgvector.NewVector(q.Embedding)
		embedding = &v
	}

	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO questions (question, answer, model, tokens_used, user_id, company_id, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		q.Question, q.Answer, q.Model, q.TokensUsed, q.UserID, q.CompanyID, embedding,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (s *QuestionStore) GetByID(ctx context.Context, id uuid.UUID, companyID uuid.UUID) (*domain.Question, error) {
	row := conn(ctx, s.db).QueryRow(ctx,
		questionSelect+` WHERE q.id = $1 AND q.company_id = $2`,
		id, companyID,
	)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuestionStore) ListByUser(ctx context.Context, userID uuid.UUID, companyID uuid.UUID, params domain.PageParams) ([]domain.Question, error) {
	return s.list(ctx,
		questionSelect+` WHERE q.user_id = $1 AND q.company_id = $2
		 ORDER BY q.created_at DESC
		 OFFSET $3 LIMIT $4`,
		userID, companyID, params.Offset(), params.Limit,
	)
}

func (s *QuestionStore) CountByUser(ctx context.Context, userID uuid.UUID, companyID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE user_id = $1 AND company_id = $2`,
		userID, companyID,
	).Scan(&n)
	return n, err
}

func (s *QuestionStore) ListByCompany(ctx context.Context, companyID uuid.UUID, params domain.PageParams) ([]domain.Question, error) {
	return s.list(ctx,
		questionSelect+` WHERE q.company_id = $1
		 ORDER BY q.created_at DESC
		 OFFSET $2 LIMIT $3`,
		companyID, params.Offset(), params.Limit,
	)
}

func (s *QuestionStore) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	var n int
	err := conn(ctx, s.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE company_id = $1`,
		companyID,
	).Scan(&n)
	return n, err
}

func (s *QuestionStore) FindSimilar(ctx context.Context, id uuid.UUID, companyID uuid.UUID, limit int) ([]domain.QuestionWithScore, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := conn(ctx, s.db).Query(ctx,
		`WITH target AS (
		     SELECT embedding FROM questions
		     WHERE id = $1 AND company_id = $2 AND embedding IS NOT NULL
		 )
		 SELECT q.id, q.question, q.answer, q.model, q.tokens_used, q.user_id, q.company_id, q.created_at,
		        u.name, u.email,
		        1 - (q.embedding <=> target.embedding) AS score
		 FROM questions q
		 JOIN users u ON u.id = q.user_id
		 CROSS JOIN target
		 WHERE q.company_id = $2 AND q.id <> $1 AND q.embedding IS NOT NULL
		 ORDER BY q.embedding <=> target.embedding
		 LIMIT $3`,
		id, companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("similar questions query: %w", err)
	}
	defer rows.Close()

	var results []domain.QuestionWithScore
	for rows.Next() {
		var r domain.QuestionWithScore
		author := &domain.QuestionAuthor{}
		if err := rows.Scan(
			&r.ID, &r.Question.Question, &r.Answer, &r.Model, &r.TokensUsed, &r.UserID, &r.CompanyID, &r.CreatedAt,
			&author.Name, &author.Email, &r.Score,
		); err != nil {
			return nil, fmt.Errorf("scan similar question: %w", err)
		}
		author.ID = r.UserID
		r.User = author
		results = append(results, r)
	}
	return results, rows.Err()
}

// DailyCounts groups by DATE(created_at), which truncates in the database
// session time zone.
func (s *QuestionStore) DailyCounts(ctx context.Context, companyID uuid.UUID, since time.Time) ([]domain.QuestionStat, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT DATE(created_at) AS date, COUNT(*)::int AS count
		 FROM questions
		 WHERE company_id = $1 AND created_at >= $2
		 GROUP BY DATE(created_at)
		 ORDER BY date DESC`,
		companyID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("daily counts query: %w", err)
	}
	defer rows.Close()

	stats := []domain.QuestionStat{}
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("scan daily count: %w", err)
		}
		stats = append(stats, domain.QuestionStat{Date: day.Format(time.DateOnly), Count: count})
	}
	return stats, rows.Err()
}

func (s *QuestionStore) TopUsers(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.UserStat, error) {
	rows, err := conn(ctx, s.db).Query(ctx,
		`SELECT u.id, u.name, COUNT(q.id)::int AS question_count
		 FROM users u
		 LEFT JOIN questions q ON q.user_id = u.id AND q.company_id = u.company_id
		 WHERE u.company_id = $1
		 GROUP BY u.id, u.name
		 ORDER BY question_count DESC, u.name ASC
		 LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top users query: %w", err)
	}
	defer rows.Close()

	stats := []domain.UserStat{}
	for rows.Next() {
		var st domain.UserStat
		if err := rows.Scan(&st.UserID, &st.UserName, &st.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan top user: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *QuestionStore) list(ctx context.Context, query string, args ...any) ([]domain.Question, error) {
	rows, err := conn(ctx, s.db).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	q := &domain.Question{}
	author := &domain.QuestionAuthor{}
	err := row.Scan(
		&q.ID, &q.Question, &q.Answer, &q.Model, &q.TokensUsed, &q.UserID, &q.CompanyID, &q.CreatedAt,
		&author.Name, &author.Email,
	)
	if err != nil {
		return nil, err
	}
	author.ID = q.UserID
	q.User = author
	return q, nil
}
