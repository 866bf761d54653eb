package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := InitConfig(path)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `
[server]
max_limit = 20
max_context = 2

[index]
words_path = "/data/words.bin"
reindex_after = 100

[cli]
default_no_filter = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Server.MaxLimit)
	assert.Equal(t, 2, cfg.Server.MaxContext)
	assert.Equal(t, 10, cfg.Server.DefaultLimit)
	assert.Equal(t, "/data/words.bin", cfg.Index.WordsPath)
	assert.Equal(t, "docs.txt", cfg.Index.DocsPath)
	assert.Equal(t, 100, cfg.Index.ReindexAfter)
	assert.True(t, cfg.CLI.DefaultNoFilter)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	// max_limit has the wrong type, so the strict decode fails
	content := `
[server]
max_limit = "lots"
max_query = 32

[cli]
default_limit = 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Server.MaxLimit)
	assert.Equal(t, 32, cfg.Server.MaxQuery)
	assert.Equal(t, 3, cfg.CLI.DefaultLimit)
}

func TestLoadConfigGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("[[[ not toml"), 0644))

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))

	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.MaxLimit = 5
	cfg.Server.DefaultLimit = 50
	cfg.Server.MaxContext = -1
	cfg.CLI.DefaultMinLen = 0
	cfg.CLI.DefaultMaxLen = -3

	cfg.normalize()

	assert.Equal(t, 5, cfg.Server.DefaultLimit)
	assert.Equal(t, 0, cfg.Server.MaxContext)
	assert.Equal(t, 1, cfg.CLI.DefaultMinLen)
	assert.Equal(t, 24, cfg.CLI.DefaultMaxLen)
}

func TestLoadConfigWithPriority(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(custom, []byte("[server]\nmax_limit = 7\n"), 0644))

	cfg, used := LoadConfigWithPriority(custom, dir)
	assert.Equal(t, custom, used)
	assert.Equal(t, 7, cfg.Server.MaxLimit)

	cfg, used = LoadConfigWithPriority(filepath.Join(dir, "nope.toml"), dir)
	assert.Equal(t, filepath.Join(dir, FileName), used)
	assert.Equal(t, 64, cfg.Server.MaxLimit)

	cfg, used = LoadConfigWithPriority("", "")
	assert.Empty(t, used)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := InitConfig(path)
	limit, after := 30, 5

	require.NoError(t, cfg.Update(path, &limit, nil, &after))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30, reloaded.Server.MaxLimit)
	assert.Equal(t, 5, reloaded.Index.ReindexAfter)
	assert.Equal(t, 5, reloaded.Server.MaxContext)
}
