package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DefaultConfigDir = "./config"
	defaultTopK      = 5
)

type Config struct {
	App struct {
		Name  string
		Port  string
		Debug bool
	}
	Database struct {
		Dsn          string
		MaxIdleConns int
		MaxOpenConns int
	}
	Redis struct {
		Addr     string
		DB       int
		Password string
	}
	RabbitMQ struct {
		Url   string
		Queue string
	}
	RAG struct {
		OpenAIAPIKey          string
		OpenAIBaseURL         string
		ChatModel             string
		RequestTimeout        time.Duration
		ElasticsearchURL      string
		ElasticsearchIndex    string
		ElasticsearchUsername string
		ElasticsearchPassword string
		TopK                  int
	}
}

// Load 读取 dir 下的 config.yml，再用环境变量覆盖 RAG 相关配置
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = DefaultConfigDir
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	v.SetDefault("app.name", "coursefaq")
	v.SetDefault("app.port", ":3000")
	v.SetDefault("rabbitmq.queue", "feedback.queue")
	v.SetDefault("rag.openaibaseurl", "https://api.openai.com/v1/")
	v.SetDefault("rag.chatmodel", "gpt-4o")
	v.SetDefault("rag.requesttimeout", "60s")
	v.SetDefault("rag.elasticsearchurl", "http://localhost:9200")
	v.SetDefault("rag.elasticsearchindex", "course-questions")
	v.SetDefault("rag.topk", defaultTopK)

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时只依赖默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrapf(err, "read config in %s", dir)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	cfg.RAG.OpenAIAPIKey = getEnvOrDefault("OPENAI_API_KEY", cfg.RAG.OpenAIAPIKey)
	cfg.RAG.OpenAIBaseURL = getEnvOrDefault("OPENAI_BASE_URL", cfg.RAG.OpenAIBaseURL)
	cfg.RAG.ChatModel = getEnvOrDefault("OPENAI_MODEL", cfg.RAG.ChatModel)
	cfg.RAG.ElasticsearchURL = getEnvOrDefault("ELASTICSEARCH_URL", cfg.RAG.ElasticsearchURL)
	cfg.RAG.ElasticsearchIndex = getEnvOrDefault("ELASTICSEARCH_INDEX", cfg.RAG.ElasticsearchIndex)
	cfg.Redis.Addr = getEnvOrDefault("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Database.Dsn = getEnvOrDefault("MYSQL_DSN", cfg.Database.Dsn)
	cfg.RabbitMQ.Url = getEnvOrDefault("RABBITMQ_URL", cfg.RabbitMQ.Url)
	if topK, err := strconv.Atoi(os.Getenv("RAG_TOP_K")); err == nil {
		cfg.RAG.TopK = topK
	}
	if cfg.RAG.TopK < 1 {
		cfg.RAG.TopK = defaultTopK
	}

	return cfg, nil
}

// Validate checks the settings the answer pipeline cannot run without.
func (c *Config) Validate() error {
	if c.RAG.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required (rag.openaiapikey)")
	}
	if c.RAG.ElasticsearchURL == "" {
		return errors.New("ELASTICSEARCH_URL is required (rag.elasticsearchurl)")
	}
	if c.RAG.ElasticsearchIndex == "" {
		return errors.New("rag.elasticsearchindex must not be empty")
	}
	return nil
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
