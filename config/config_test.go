package config

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
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o644))
	return dir
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := writeConfig(t, `
app:
  port: ":8080"
rag:
  openaiapikey: sk-file
  chatmodel: gpt-4o-mini
  requesttimeout: 15s
  elasticsearchindex: faq
  topk: 3
`)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("RAG_TOP_K", "")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "sk-file", cfg.RAG.OpenAIAPIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.RAG.ChatModel)
	assert.Equal(t, 15*time.Second, cfg.RAG.RequestTimeout)
	assert.Equal(t, "faq", cfg.RAG.ElasticsearchIndex)
	assert.Equal(t, 3, cfg.RAG.TopK)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ELASTICSEARCH_URL", "")
	t.Setenv("ELASTICSEARCH_INDEX", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("RAG_TOP_K", "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.RAG.ChatModel)
	assert.Equal(t, "course-questions", cfg.RAG.ElasticsearchIndex)
	assert.Equal(t, "http://localhost:9200", cfg.RAG.ElasticsearchURL)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, "feedback.queue", cfg.RabbitMQ.Queue)
	assert.Equal(t, time.Minute, cfg.RAG.RequestTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, `
rag:
  openaiapikey: sk-file
  elasticsearchurl: http://es-file:9200
`)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("ELASTICSEARCH_URL", "http://es-env:9200")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sk-env", cfg.RAG.OpenAIAPIKey)
	assert.Equal(t, "http://es-env:9200", cfg.RAG.ElasticsearchURL)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_InvalidTopKFallsBack(t *testing.T) {
	t.Setenv("RAG_TOP_K", "0")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.RAG.TopK)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := writeConfig(t, "rag: [unclosed")
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.RAG.ElasticsearchURL = "http://localhost:9200"
	cfg.RAG.ElasticsearchIndex = "course-questions"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg.RAG.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.Validate())

	cfg.RAG.ElasticsearchURL = ""
	assert.ErrorContains(t, cfg.Validate(), "ELASTICSEARCH_URL")
}

func TestConnect_SkipsUnconfigured(t *testing.T) {
	logger, err := NewLogger(false)
	require.NoError(t, err)

	res, err := Connect(&Config{}, logger)
	require.NoError(t, err)
	assert.Nil(t, res.DB)
	assert.Nil(t, res.Redis)
	assert.Nil(t, res.RabbitChannel)
	assert.NoError(t, res.Close())
}
