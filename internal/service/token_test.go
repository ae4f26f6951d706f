package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/askdesk/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedUser(t *testing.T, env *testEnv, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:     uuid.NewString() + "@example.com",
		Name:      "Test User",
		Role:      role,
		CompanyID: uuid.New(),
		IsActive:  true,
	}
	require.NoError(t, env.users.Create(context.Background(), u))
	return u
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	env := newTestEnv()
	user := seedUser(t, env, domain.RoleAdmin)

	pair, err := env.tokens.IssueTokenPair(context.Background(), user)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := env.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, user.CompanyID, claims.CompanyID)

	stored, ok := env.refresh.get(pair.RefreshToken)
	require.True(t, ok)
	assert.Equal(t, user.ID, stored.UserID)
	assert.WithinDuration(t, time.Now().Add(testTokenConfig.RefreshTTL), stored.ExpiresAt, 5*time.Second)
}

func TestTokenService_PairsNeverCollide(t *testing.T) {
	env := newTestEnv()
	user := seedUser(t, env, domain.RoleUser)

	a, err := env.tokens.IssueTokenPair(context.Background(), user)
	require.NoError(t, err)
	b, err := env.tokens.IssueTokenPair(context.Background(), user)
	require.NoError(t, err)

	assert.NotEqual(t, a.RefreshToken, b.RefreshToken)
	assert.Equal(t, 2, env.refresh.count())
}

func TestTokenService_VerifyAccessRejects(t *testing.T) {
	env := newTestEnv()
	user := seedUser(t, env, domain.RoleUser)
	pair, err := env.tokens.IssueTokenPair(context.Background(), user)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           user.ID.String(),
		Role:             string(domain.RoleUser),
		CompanyID:        user.CompanyID.String(),
	}).SignedString(testTokenConfig.AccessSecret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"refresh token as access", pair.RefreshToken},
		{"tampered", pair.AccessToken + "x"},
		{"wrong algorithm", hs512},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tokens.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_VerifyAccessExpired(t *testing.T) {
	env := newTestEnv()
	user := seedUser(t, env, domain.RoleUser)
	pair, err := env.tokens.IssueTokenPair(context.Background(), user)
	require.NoError(t, err)

	env.tokens.now = func() time.Time { return time.Now().Add(testTokenConfig.AccessTTL + time.Minute) }

	_, err = env.tokens.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RefreshIsSingleUse(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := seedUser(t, env, domain.RoleUser)
	pair, err := env.tokens.IssueTokenPair(ctx, user)
	require.NoError(t, err)

	next, err := env.tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = env.tokens.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = env.tokens.Refresh(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenService_RefreshConcurrent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := seedUser(t, env, domain.RoleUser)
	pair, err := env.tokens.IssueTokenPair(ctx, user)
	require.NoError(t, err)

	const workers = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.tokens.Refresh(ctx, pair.RefreshToken); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestTokenService_RefreshRejects(t *testing.T) {
	ctx := context.Background()

	t.Run("signed with access secret", func(t *testing.T) {
		env := newTestEnv()
		pair, err := env.tokens.IssueTokenPair(ctx, seedUser(t, env, domain.RoleUser))
		require.NoError(t, err)

		_, err = env.tokens.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("not stored", func(t *testing.T) {
		env := newTestEnv()
		pair, err := env.tokens.IssueTokenPair(ctx, seedUser(t, env, domain.RoleUser))
		require.NoError(t, err)
		require.NoError(t, env.tokens.Revoke(ctx, pair.RefreshToken))

		_, err = env.tokens.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("stored row expired", func(t *testing.T) {
		env := newTestEnv()
		pair, err := env.tokens.IssueTokenPair(ctx, seedUser(t, env, domain.RoleUser))
		require.NoError(t, err)
		stored, ok := env.refresh.get(pair.RefreshToken)
		require.True(t, ok)
		stored.ExpiresAt = time.Now().Add(-time.Minute)

		_, err = env.tokens.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("user deactivated", func(t *testing.T) {
		env := newTestEnv()
		user := seedUser(t, env, domain.RoleUser)
		pair, err := env.tokens.IssueTokenPair(ctx, user)
		require.NoError(t, err)
		env.users.users[user.ID].IsActive = false

		_, err = env.tokens.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("stored row owned by another user", func(t *testing.T) {
		env := newTestEnv()
		pair, err := env.tokens.IssueTokenPair(ctx, seedUser(t, env, domain.RoleUser))
		require.NoError(t, err)
		stored, ok := env.refresh.get(pair.RefreshToken)
		require.True(t, ok)
		stored.UserID = seedUser(t, env, domain.RoleAdmin).ID

		_, err = env.tokens.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	})
}

func TestTokenService_RefreshUsesCurrentUser(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := seedUser(t, env, domain.RoleUser)
	pair, err := env.tokens.IssueTokenPair(ctx, user)
	require.NoError(t, err)

	env.users.users[user.ID].Role = domain.RoleAdmin

	next, err := env.tokens.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	claims, err := env.tokens.VerifyAccess(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestTokenService_RevokeUnknownToken(t *testing.T) {
	env := newTestEnv()
	assert.NoError(t, env.tokens.Revoke(context.Background(), "never-issued"))
}

func TestTokenService_SweepExpired(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, env.refresh.Create(ctx, &domain.RefreshToken{Token: "old", UserID: uuid.New(), ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, env.refresh.Create(ctx, &domain.RefreshToken{Token: "fresh", UserID: uuid.New(), ExpiresAt: now.Add(time.Hour)}))

	deleted, err := env.tokens.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, ok := env.refresh.get("fresh")
	assert.True(t, ok)
}

func TestTokenSweeper_StartStop(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	require.NoError(t, env.refresh.Create(ctx, &domain.RefreshToken{Token: "old", UserID: uuid.New(), ExpiresAt: time.Now().Add(-time.Hour)}))

	sweeper := NewTokenSweeper(env.tokens, zap.NewNop())
	sweeper.SetInterval(10 * time.Millisecond)
	sweeper.Start()
	defer sweeper.Stop()

	assert.Eventually(t, func() bool { return env.refresh.count() == 0 }, time.Second, 10*time.Millisecond)
}
