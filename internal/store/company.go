package store

import (
	"context"
	"errors"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CompanyStore struct {
	db *pgxpool.Pool
}

func NewCompanyStore(db *pgxpool.Pool) *CompanyStore {
	return &CompanyStore{db: db}
}

func (s *CompanyStore) Create(ctx context.Context, c *domain.Company) error {
	err := conn(ctx, s.db).QueryRow(ctx,
		`INSERT INTO companies (name) VALUES ($1)
		 RETURNING id, created_at, updated_at`,
		c.Name,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *CompanyStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	return s.get(ctx, `SELECT id, name, created_at, updated_at FROM companies WHERE id = $1`, id)
}

func (s *CompanyStore) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	return s.get(ctx, `SELECT id, name, created_at, updated_at FROM companies WHERE name = $1`, name)
}

func (s *CompanyStore) get(ctx context.Context, query string, arg any) (*domain.Company, error) {
	c := &domain.Company{}
	err := conn(ctx, s.db).QueryRow(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
