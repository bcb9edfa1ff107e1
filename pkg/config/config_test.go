package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
max_limit = 10
fuzzy = true

[dict]
path = "/usr/share/dict/words"

[history]
enabled = false

[cli]
default_limit = 8
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Server.MaxLimit)
	assert.True(t, cfg.Server.Fuzzy)
	assert.Equal(t, 60, cfg.Server.MaxPrefix, "unset keys keep defaults")
	assert.Equal(t, "/usr/share/dict/words", cfg.Dict.Path)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "user_history.txt", cfg.History.Path)
	assert.Equal(t, 8, cfg.CLI.DefaultLimit)
}

func TestLoadConfig_PartialRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	// max_limit has the wrong type, so strict decoding fails
	data := `
[server]
max_limit = "lots"
min_prefix = 2

[dict]
max_words = 500
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Server.MaxLimit)
	assert.Equal(t, 2, cfg.Server.MinPrefix)
	assert.Equal(t, 500, cfg.Dict.MaxWords)
}

func TestLoadConfig_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[[ not toml"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigWithPriority_CustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cli]\ndefault_limit = 3\n"), 0644))

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 3, cfg.CLI.DefaultLimit)
}

func TestConfig_Update(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	limit, filter := 12, true
	require.NoError(t, cfg.Update(path, &limit, nil, nil, &filter))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, reloaded.Server.MaxLimit)
	assert.True(t, reloaded.Server.EnableFilter)
	assert.Equal(t, 1, reloaded.Server.MinPrefix)
}

func TestConfig_UpdateRejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	zero, two, one := 0, 2, 1

	tests := []struct {
		name                           string
		maxLimit, minPrefix, maxPrefix *int
	}{
		{name: "zero limit", maxLimit: &zero},
		{name: "zero min prefix", minPrefix: &zero},
		{name: "max below min", minPrefix: &two, maxPrefix: &one},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cfg.Update("", tt.maxLimit, tt.minPrefix, tt.maxPrefix, nil)
			assert.ErrorIs(t, err, ErrInvalidValue)
			assert.Equal(t, DefaultConfig().Server, cfg.Server, "invalid updates change nothing")
		})
	}
}

func TestConfig_UpdateInMemory(t *testing.T) {
	cfg := DefaultConfig()
	limit := 3
	require.NoError(t, cfg.Update("", &limit, nil, nil, nil))
	assert.Equal(t, 3, cfg.Server.MaxLimit)
}
