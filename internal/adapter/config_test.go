package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Source.BaseURL, cfg.Source.BaseURL)
	assert.Equal(t, 12, cfg.Table.PageSize)
	assert.Equal(t, []int{12, 24, 48}, cfg.Table.PageSizes)
	assert.False(t, cfg.Cache.Spill)
	assert.Empty(t, cfg.SpillPath())
}

func TestLoadConfig_FileValues(t *testing.T) {
	path := writeConfig(t, `
source:
  base_url: http://localhost:9000/api
  timeout: 5s
  max_retries: 1
table:
  page_size: 24
  page_sizes: [10, 24]
cache:
  spill: true
  spill_dir: /tmp/artpick-test
logging:
  level: debug
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/api", cfg.Source.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 1, cfg.Source.MaxRetries)
	assert.Equal(t, 24, cfg.Table.PageSize)
	assert.Equal(t, []int{10, 24}, cfg.Table.PageSizes)
	assert.Equal(t, "/tmp/artpick-test", cfg.SpillPath())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "source:\n  base_url: http://file.example\n")
	t.Setenv("ARTPICK_SOURCE_BASE_URL", "http://env.example")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.Source.BaseURL)
}

func TestLoadConfig_RejectsInvalidPageSize(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "table:\n  page_size: 0\n"))
	assert.ErrorContains(t, err, "table.page_size")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
