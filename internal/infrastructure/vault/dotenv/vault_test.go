package dotenv_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unifiedui/arango-client/internal/core/vault"
	"github.com/unifiedui/arango-client/internal/infrastructure/vault/dotenv"
)

var _ vault.Vault = (*dotenv.Vault)(nil)

func TestVault_StoreAndGetSecret(t *testing.T) {
	v, err := dotenv.NewVault("")
	require.NoError(t, err)
	ctx := context.Background()

	uri, err := v.StoreSecret(ctx, "ARANGO_TEST_SECRET", "secret-value")
	require.NoError(t, err)
	assert.Equal(t, "dotenv://ARANGO_TEST_SECRET", uri)

	value, err := v.GetSecret(ctx, uri)
	require.NoError(t, err)
	assert.Equal(t, "secret-value", value)
}

func TestVault_EnvironmentWins(t *testing.T) {
	t.Setenv("ARANGO_ROOT_PASSWORD", "from-env")

	dir := t.TempDir()
	file := filepath.Join(dir, "secrets.env")
	require.NoError(t, os.WriteFile(file, []byte("ARANGO_ROOT_PASSWORD=from-file\nOTHER=only-file\n"), 0o600))

	v, err := dotenv.NewVault(file)
	require.NoError(t, err)
	ctx := context.Background()

	value, err := v.GetSecret(ctx, "dotenv://ARANGO_ROOT_PASSWORD")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)

	value, err = v.GetSecret(ctx, "dotenv://OTHER")
	require.NoError(t, err)
	assert.Equal(t, "only-file", value)
}

func TestVault_MissingEnvFile(t *testing.T) {
	_, err := dotenv.NewVault(filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, err)
}

func TestVault_SecretNotFound(t *testing.T) {
	v, err := dotenv.NewVault("")
	require.NoError(t, err)

	value, err := v.GetSecret(context.Background(), "dotenv://ARANGO_DOES_NOT_EXIST")

	assert.Error(t, err)
	assert.Empty(t, value)
	assert.Contains(t, err.Error(), "secret not found")
}

func TestResolve(t *testing.T) {
	v, err := dotenv.NewVault("")
	require.NoError(t, err)
	ctx := context.Background()
	_, err = v.StoreSecret(ctx, "ARANGO_RESOLVE_TEST", "s3cret")
	require.NoError(t, err)

	value, err := vault.Resolve(ctx, v, "dotenv://ARANGO_RESOLVE_TEST")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	value, err = vault.Resolve(ctx, v, "plain-password")
	require.NoError(t, err)
	assert.Equal(t, "plain-password", value)

	value, err = vault.Resolve(ctx, nil, "dotenv://ARANGO_RESOLVE_TEST")
	require.NoError(t, err)
	assert.Equal(t, "dotenv://ARANGO_RESOLVE_TEST", value)

	_, err = vault.Resolve(ctx, v, "dotenv://ARANGO_NOT_THERE")
	assert.Error(t, err)

	assert.NoError(t, v.Ping(ctx))
	assert.NoError(t, v.Close())
}
