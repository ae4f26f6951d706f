package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"15m", 15 * time.Minute},
		{"7d", 7 * 24 * time.Hour},
		{"1h30m", 90 * time.Minute},
		{"30", 30 * time.Second},
		{" 2d ", 48 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDuration_Invalid(t *testing.T) {
	for _, in := range []string{"", "xd", "soon"} {
		_, err := ParseDuration(in)
		assert.Error(t, err, in)
	}
}

func TestJWTSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "refresh")
	_, _, err := JWTSecrets()
	assert.ErrorIs(t, err, ErrMissingJWTSecrets)

	t.Setenv("JWT_SECRET", "access")
	access, refresh, err := JWTSecrets()
	require.NoError(t, err)
	assert.Equal(t, []byte("access"), access)
	assert.Equal(t, []byte("refresh"), refresh)
}

func TestTokenTTLDefaults(t *testing.T) {
	t.Setenv("JWT_EXPIRES_IN", "")
	t.Setenv("JWT_REFRESH_EXPIRES_IN", "")
	assert.Equal(t, 15*time.Minute, AccessTokenTTL())
	assert.Equal(t, 7*24*time.Hour, RefreshTokenTTL())

	t.Setenv("JWT_EXPIRES_IN", "5m")
	t.Setenv("JWT_REFRESH_EXPIRES_IN", "1d")
	assert.Equal(t, 5*time.Minute, AccessTokenTTL())
	assert.Equal(t, 24*time.Hour, RefreshTokenTTL())
}

func TestProviderKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "ant")

	t.Setenv("LLM_PROVIDER", "")
	assert.Equal(t, "openai", LLMProvider())
	assert.Equal(t, "sk-openai", LLMAPIKey())

	t.Setenv("LLM_PROVIDER", "anthropic")
	assert.Equal(t, "ant", LLMAPIKey())

	t.Setenv("LLM_PROVIDER", "mock")
	assert.Empty(t, LLMAPIKey())

	t.Setenv("EMBEDDING_PROVIDER", "")
	assert.Equal(t, "mock", EmbeddingProvider())
	assert.Empty(t, EmbeddingAPIKey())
}

func TestAITimeoutDefault(t *testing.T) {
	t.Setenv("AI_TIMEOUT", "")
	assert.Equal(t, 30*time.Second, AITimeout())

	t.Setenv("AI_TIMEOUT", "-5s")
	assert.Equal(t, 30*time.Second, AITimeout())
}
