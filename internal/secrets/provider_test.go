package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapStore map[string]string

func (m mapStore) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", ErrSecretNotFound
}

func TestResolveSource(t *testing.T) {
	tests := []struct {
		source      SecretSource
		environment string
		want        SecretSource
	}{
		{SourceAuto, "development", SourceEnvironment},
		{SourceAuto, "", SourceEnvironment},
		{SourceAuto, "test", SourceEnvironment},
		{SourceAuto, "staging", SourceVault},
		{SourceAuto, "production", SourceVault},
		{SourceEnvironment, "production", SourceEnvironment},
		{SourceVault, "development", SourceVault},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveSource(tt.source, tt.environment), "%s/%s", tt.source, tt.environment)
	}
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceAuto, Environment: "production"}, zap.NewNop())
	assert.Error(t, err)
}

func TestProvider_Environment(t *testing.T) {
	p, err := NewProvider(&ProviderConfig{Source: SourceAuto, Environment: "development"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, SourceEnvironment, p.Source())

	t.Setenv("FINANCE_TEST_SECRET", "s3cret")
	v, err := p.GetSecret(context.Background(), "FINANCE_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", v)

	_, err = p.GetSecret(context.Background(), "FINANCE_TEST_MISSING")
	assert.True(t, errors.Is(err, ErrSecretNotFound))
}

func TestProvider_VaultWithEnvOverride(t *testing.T) {
	p := &Provider{
		source: SourceVault,
		vault:  mapStore{"jwt-secret": "from-vault"},
		logger: zap.NewNop(),
	}

	v, err := p.GetSecretOrEnv(context.Background(), "jwt-secret", "FINANCE_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", v)

	t.Setenv("FINANCE_TEST_JWT", "from-env")
	v, err = p.GetSecretOrEnv(context.Background(), "jwt-secret", "FINANCE_TEST_JWT")
	require.NoError(t, err)
	assert.Equal(t, "from-env", v)

	_, err = p.GetSecret(context.Background(), "admin-api-key")
	assert.ErrorIs(t, err, ErrSecretNotFound)
}

func TestVaultClient_Cache(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &VaultClient{
		logger:       zap.NewNop(),
		cacheEnabled: true,
		cacheTTL:     time.Minute,
		now:          func() time.Time { return now },
		cache:        make(map[string]cachedSecret),
	}

	v.store("jwt-secret", "abc")
	got, ok := v.cached("jwt-secret")
	assert.True(t, ok)
	assert.Equal(t, "abc", got)

	now = now.Add(2 * time.Minute)
	_, ok = v.cached("jwt-secret")
	assert.False(t, ok)
	assert.Empty(t, v.cache)
}

func TestVaultClient_CacheDisabled(t *testing.T) {
	v := &VaultClient{logger: zap.NewNop(), now: time.Now, cache: make(map[string]cachedSecret)}
	v.store("jwt-secret", "abc")
	_, ok := v.cached("jwt-secret")
	assert.False(t, ok)
}

func TestNewVaultClient_RequiresName(t *testing.T) {
	_, err := NewVaultClient(&VaultConfig{}, zap.NewNop())
	assert.Error(t, err)
}
