// Package config loads the single configuration record shared by the CLI and
// every provider and backend factory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds runtime configuration.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`

	EmbeddingProvider string        `env:"EMBEDSCORE_EMBEDDING_PROVIDER" envDefault:"openai" validate:"oneof=openai azure gemini"`
	ChatProvider      string        `env:"EMBEDSCORE_CHAT_PROVIDER" envDefault:"openai" validate:"oneof=openai azure gemini anthropic"`
	Metric            string        `env:"EMBEDSCORE_METRIC" envDefault:"cosine"`
	Timeout           time.Duration `env:"EMBEDSCORE_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	Concurrency       int           `env:"EMBEDSCORE_CONCURRENCY" envDefault:"4" validate:"min=1"`

	OpenAI    OpenAI    `envPrefix:"OPENAI_"`
	Azure     Azure     `envPrefix:"AZURE_OPENAI_"`
	Gemini    Gemini    `envPrefix:"GEMINI_"`
	Anthropic Anthropic `envPrefix:"ANTHROPIC_"`
	Store     Store     `envPrefix:"EMBEDSCORE_STORE_"`
	Server    Server    `envPrefix:"EMBEDSCORE_SERVER_"`
}

type OpenAI struct {
	APIKey         string `env:"API_KEY"`
	BaseURL        string `env:"BASE_URL"`
	OrgID          string `env:"ORG_ID"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	ChatModel      string `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
}

// Azure mirrors the AZURE_OPENAI_* variables; models are deployment names.
type Azure struct {
	Endpoint            string `env:"ENDPOINT" validate:"omitempty,url"`
	APIKey              string `env:"API_KEY"`
	APIVersion          string `env:"API_VERSION" envDefault:"2024-02-15-preview"`
	EmbeddingDeployment string `env:"EMBEDDING_DEPLOYMENT" envDefault:"text-embedding-ada-002"`
	ChatDeployment      string `env:"CHAT_DEPLOYMENT" envDefault:"gpt-4o-mini"`
}

type Gemini struct {
	APIKey         string `env:"API_KEY"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-004"`
	ChatModel      string `env:"CHAT_MODEL" envDefault:"gemini-2.0-flash"`
}

type Anthropic struct {
	APIKey    string `env:"API_KEY"`
	ChatModel string `env:"CHAT_MODEL" envDefault:"claude-3-5-haiku-latest"`
	MaxTokens int64  `env:"MAX_TOKENS" envDefault:"1024" validate:"min=1"`
}

type Store struct {
	Backend  string `env:"BACKEND" envDefault:"lru" validate:"oneof=lru redis"`
	Capacity int    `env:"CAPACITY" envDefault:"1000" validate:"min=1"`
	RedisURL string `env:"REDIS_URL" envDefault:"localhost:6379"`
	// Username, Password and DB override the values in RedisURL.
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" validate:"min=0"`
	Prefix   string `env:"PREFIX" envDefault:"embedscore:"`
}

type Server struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s" validate:"gt=0"`
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over the file.
func Load(dotenvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses the given environment only. Intended for tests.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. Credentials are checked separately by
// RequireEmbedding and RequireChat, so commands that never call a provider
// run without keys.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// RequireEmbedding reports whether the embedding provider has credentials.
func (c Config) RequireEmbedding() error {
	return c.checkCredentials(c.EmbeddingProvider)
}

// RequireChat reports whether the chat provider has credentials.
func (c Config) RequireChat() error {
	return c.checkCredentials(c.ChatProvider)
}

func (c Config) checkCredentials(provider string) error {
	switch provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return errors.New("OPENAI_API_KEY is required for provider openai")
		}
	case "azure":
		if c.Azure.Endpoint == "" || c.Azure.APIKey == "" {
			return errors.New("AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY are required for provider azure")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required for provider gemini")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required for provider anthropic")
		}
	}
	return nil
}
