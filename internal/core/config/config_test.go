package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  http:
    port: 9000
store:
  url: postgres://u:p@localhost:5432/jobs
  access_key: from-file
policy:
  rereview_on_edit: true
`), 0o600))
	t.Setenv("APP_STORE_ACCESS_KEY", "from-env")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, c.App.HTTP.Port)
	assert.Equal(t, "postgres://u:p@localhost:5432/jobs", c.Store.URL)
	assert.Equal(t, "from-env", c.Store.AccessKey)
	assert.True(t, c.Policy.ReReviewOnEdit)
	assert.Equal(t, "sb-session", c.Session.CookieName)
	assert.NoError(t, c.Validate())
}

func TestLoad_MissingFileUsesEnv(t *testing.T) {
	t.Setenv("APP_STORE_URL", "postgres://localhost/jobs")
	t.Setenv("APP_STORE_ACCESS_KEY", "k")

	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.NoError(t, c.Validate())
	assert.Equal(t, 8080, c.App.HTTP.Port)
}

func TestValidate_RequiresStoreSettings(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingStoreURL)
	assert.ErrorIs(t, err, ErrMissingStoreAccessKey)

	err = (&Config{Store: Store{URL: "postgres://x"}}).Validate()
	assert.ErrorIs(t, err, ErrMissingStoreAccessKey)
	assert.NotErrorIs(t, err, ErrMissingStoreURL)
}
