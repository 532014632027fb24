package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 100, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 30*time.Second, cfg.OpenAI.Timeout())
	assert.Equal(t, 10*time.Second, cfg.Fetcher.Timeout())
}

func TestLoad_FullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 3001
database:
  dsn: postgres://localhost/kb
  debug: true
openai:
  key: sk-test
  model: gpt-4o-mini
  timeout_seconds: 5
rag:
  chunk_size: 200
  chunk_overlap: 50
  top_k: 3
fetcher:
  timeout_seconds: 2
`))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/kb", cfg.Database.DSN)
	assert.True(t, cfg.Database.Debug)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey())
	assert.Equal(t, 5*time.Second, cfg.OpenAI.Timeout())
	assert.Equal(t, 200, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, 2*time.Second, cfg.Fetcher.Timeout())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestOpenAIConfig_KeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	cfg := OpenAIConfig{}
	assert.Equal(t, "sk-env", cfg.APIKey())

	cfg.Key = "sk-file"
	assert.Equal(t, "sk-file", cfg.APIKey())
}
