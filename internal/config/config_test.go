package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.Store = StoreSQLite
	cfg.Quotes.Timeout = 3 * time.Second
	cfg.Git.AutoCommit = true

	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default("/data")

	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, StoreDir, cfg.Store)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "finnhub", cfg.Quotes.Provider)
	assert.Equal(t, "FINNHUB_API_KEY", cfg.Quotes.APIKeyEnv)
	assert.Equal(t, 10*time.Second, cfg.Quotes.Timeout)
	assert.False(t, cfg.Git.AutoCommit)
	assert.Equal(t, "tally", cfg.Git.AuthorName)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, log.InfoLevel, cfg.Level())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, StoreDir, cfg.Store)
	assert.Equal(t, log.DebugLevel, cfg.Level())
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	require.NoError(t, os.WriteFile(path, []byte("store: postgres\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "store")

	require.NoError(t, os.WriteFile(path, []byte("log_level: chatty\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "log_level")

	require.NoError(t, os.WriteFile(path, []byte("quotes: [\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	require.NoError(t, Save(path, Default(dir)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "store: dir")
	assert.Contains(t, contents, "api_key_env: FINNHUB_API_KEY")
	assert.Contains(t, contents, "timeout: 10s")
}

func TestAPIKey(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.Quotes.APIKeyEnv = "TALLY_TEST_QUOTE_KEY"
	t.Setenv("TALLY_TEST_QUOTE_KEY", "")

	_, err := cfg.APIKey()
	assert.ErrorIs(t, err, ErrNoAPIKey)

	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFile), []byte("TALLY_TEST_QUOTE_KEY=from-file\n"), 0o600))
	key, err := cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "from-file", key)

	t.Setenv("TALLY_TEST_QUOTE_KEY", "from-env")
	key, err = cfg.APIKey()
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}
