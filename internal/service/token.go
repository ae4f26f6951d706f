package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/Harshitk-cp/askdesk/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// TokenConfig holds the signing material. Access and refresh tokens use
// separate secrets so one cannot be replayed as the other.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

type TokenService struct {
	cfg    TokenConfig
	tokens domain.RefreshTokenStore
	users  domain.UserStore
	now    func() time.Time
}

func NewTokenService(cfg TokenConfig, tokens domain.RefreshTokenStore, users domain.UserStore) *TokenService {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		cfg:    cfg,
		tokens: tokens,
		users:  users,
		now:    time.Now,
	}
}

// IssueTokenPair signs a new access/refresh pair for user and stores the
// refresh half.
func (s *TokenService) IssueTokenPair(ctx context.Context, user *domain.User) (domain.TokenPair, error) {
	now := s.now()

	access, err := s.sign(user, now, s.cfg.AccessTTL, "", s.cfg.AccessSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	// The jti keeps two refresh tokens minted in the same second distinct.
	jti := fmt.Sprintf("%s-%d-%s", user.ID, now.UnixNano(), uuid.NewString()[:8])
	refresh, err := s.sign(user, now, s.cfg.RefreshTTL, jti, s.cfg.RefreshSecret)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	err = s.tokens.Create(ctx, &domain.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.cfg.RefreshTTL),
		CreatedAt: now,
	})
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(user *domain.User, now time.Time, ttl time.Duration, jti string, secret []byte) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    user.ID.String(),
		Email:     user.Email,
		Role:      string(user.Role),
		CompanyID: user.CompanyID.String(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) parse(token string, secret []byte) (*domain.Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.New("token rejected")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("bad userId claim: %w", err)
	}
	companyID, err := uuid.Parse(claims.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("bad companyId claim: %w", err)
	}
	if !domain.ValidRole(claims.Role) {
		return nil, fmt.Errorf("bad role claim %q", claims.Role)
	}

	return &domain.Claims{
		UserID:    userID,
		Email:     claims.Email,
		Role:      domain.Role(claims.Role),
		CompanyID: companyID,
	}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(token string) (*domain.Claims, error) {
	claims, err := s.parse(token, s.cfg.AccessSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed whether or not the exchange succeeds afterwards.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.parse(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	stored, err := s.tokens.Consume(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefreshToken
		}
		return domain.TokenPair{}, fmt.Errorf("consume refresh token: %w", err)
	}
	if stored.Expired(s.now()) || stored.UserID != claims.UserID {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	// Role or company may have changed since the token was minted.
	user, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefreshToken
		}
		return domain.TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !user.IsActive {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	return s.IssueTokenPair(ctx, user)
}

// Revoke deletes a stored refresh token. Unknown tokens are ignored.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// SweepExpired deletes refresh tokens whose expiry has passed.
func (s *TokenService) SweepExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx, s.now())
}
