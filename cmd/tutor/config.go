package main

import (
	"time"

	"github.com/dmitrymomot/tutorkit/pkg/config"
	"github.com/dmitrymomot/tutorkit/pkg/pg"
	"github.com/dmitrymomot/tutorkit/pkg/redis"
)

// Chat log drivers selectable with CHATLOG_DRIVER.
const (
	driverFile     = "file"
	driverRedis    = "redis"
	driverPostgres = "postgres"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`

	EmbeddingModel      string        `env:"EMBEDDING_MODEL" envDefault:"text-embedding-ada-002"`
	EmbeddingCacheSize  int           `env:"EMBEDDING_CACHE_SIZE" envDefault:"512"`
	EmbeddingMaxTokens  int           `env:"EMBEDDING_MAX_TOKENS" envDefault:"8191"`
	EmbeddingMaxRetries uint64        `env:"EMBEDDING_MAX_RETRIES" envDefault:"0"`
	EmbeddingRetryDelay time.Duration `env:"EMBEDDING_RETRY_DELAY" envDefault:"1s"`

	CompletionModel string `env:"COMPLETION_MODEL" envDefault:"gpt-3.5-turbo-0613"`

	ChatlogDriver   string `env:"CHATLOG_DRIVER" envDefault:"file"`
	ChatlogDir      string `env:"CHATLOG_DIR" envDefault:"chat_logs"`
	ChatlogRedisKey string `env:"CHATLOG_REDIS_KEY" envDefault:"tutorkit:chat_log"`

	Redis    redis.Config
	Postgres pg.Config
}

// loadConfig reads envFile when given and parses the environment.
func loadConfig(envFile string) (appConfig, error) {
	if envFile != "" {
		if err := config.LoadFile(envFile); err != nil {
			return appConfig{}, err
		}
	}

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return appConfig{}, err
	}
	return cfg, nil
}
