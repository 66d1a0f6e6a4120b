package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/phrazzld/carousel-api/internal/config"
	"github.com/phrazzld/carousel-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func isolate(t *testing.T, secret string) {
	t.Helper()
	t.Setenv(config.ConfigFileEnv, "")
	t.Setenv("CAROUSEL_AUTH_JWT_SECRET", secret)
	t.Setenv("CAROUSEL_AUTH_TOKEN_LIFETIME_MINUTES", "60")
	t.Chdir(t.TempDir())
}

func TestRunMintsValidToken(t *testing.T) {
	isolate(t, testSecret)

	var out bytes.Buffer
	require.NoError(t, run([]string{"-subject", "design-team"}, &out))

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "design-team", claims.Subject)
}

func TestRunErrors(t *testing.T) {
	t.Run("missing subject", func(t *testing.T) {
		isolate(t, testSecret)
		err := run(nil, &bytes.Buffer{})
		assert.ErrorContains(t, err, "-subject is required")
	})

	t.Run("no secret configured", func(t *testing.T) {
		isolate(t, "")
		err := run([]string{"-subject", "x"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "jwt_secret is not configured")
	})
}
