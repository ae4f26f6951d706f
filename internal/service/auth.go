package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/metrics"
	"github.com/Harshitk-cp/askdesk/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// dummyHash is compared against when no usable account exists so that login
// latency does not reveal whether the email is registered.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("askdesk-no-such-user"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return h
})

var (
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrCompanyConflict    = errors.New("company creation conflict, retry")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type RegisterInput struct {
	Email       string
	Password    string
	Name        string
	CompanyName string
}

// IdentityService owns registration, login and logout. Companies are keyed
// by name: the first registrant of a name creates the company and becomes
// its ADMIN, everyone after joins as USER.
type IdentityService struct {
	users     domain.UserStore
	companies domain.CompanyStore
	tx        domain.TxRunner
	tokens    *TokenService
	logger    *zap.Logger
	metrics   metrics.Recorder
	compare   func(hash, password []byte) error
}

func NewIdentityService(users domain.UserStore, companies domain.CompanyStore, tx domain.TxRunner, tokens *TokenService, logger *zap.Logger, rec metrics.Recorder) *IdentityService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &IdentityService{
		users:     users,
		companies: companies,
		tx:        tx,
		tokens:    tokens,
		logger:    logger,
		metrics:   rec,
		compare:   bcrypt.CompareHashAndPassword,
	}
}

func (s *IdentityService) Register(ctx context.Context, in RegisterInput) (*domain.AuthResult, error) {
	res, err := s.register(ctx, in)
	s.recordOutcome("register", err)
	return res, err
}

func (s *IdentityService) register(ctx context.Context, in RegisterInput) (*domain.AuthResult, error) {
	email := strings.TrimSpace(in.Email)
	companyName := strings.TrimSpace(in.CompanyName)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		user    *domain.User
		company *domain.Company
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		role := domain.RoleUser
		company, err = s.companies.GetByName(ctx, companyName)
		if errors.Is(err, store.ErrNotFound) {
			company = &domain.Company{Name: companyName}
			if err := s.companies.Create(ctx, company); err != nil {
				if errors.Is(err, store.ErrConflict) {
					return ErrCompanyConflict
				}
				return fmt.Errorf("create company: %w", err)
			}
			role = domain.RoleAdmin
		} else if err != nil {
			return fmt.Errorf("lookup company: %w", err)
		}

		user = &domain.User{
			Email:     email,
			Password:  string(hash),
			Name:      strings.TrimSpace(in.Name),
			Role:      role,
			CompanyID: company.ID,
			IsActive:  true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", company.ID.String()),
		zap.String("role", string(user.Role)))

	return &domain.AuthResult{User: user, Company: company, Tokens: tokens}, nil
}

// Login returns ErrInvalidCredentials for an unknown email, an inactive
// account or a wrong password alike.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	res, err := s.login(ctx, email, password)
	s.recordOutcome("login", err)
	return res, err
}

func (s *IdentityService) login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil || !user.IsActive {
		_ = s.compare(dummyHash(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := s.compare([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	company, err := s.companies.GetByID(ctx, user.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("load company: %w", err)
	}

	tokens, err := s.tokens.IssueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{User: user, Company: company, Tokens: tokens}, nil
}

func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	pair, err := s.tokens.Refresh(ctx, refreshToken)
	s.recordOutcome("refresh", err)
	return pair, err
}

// Logout revokes the refresh token. It always succeeds from the caller's
// point of view.
func (s *IdentityService) Logout(ctx context.Context, refreshToken string) {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		s.logger.Warn("logout failed to revoke refresh token", zap.Error(err))
	}
	s.metrics.RecordAuthEvent("logout", "success")
}

func (s *IdentityService) recordOutcome(event string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.RecordAuthEvent(event, outcome)
}
