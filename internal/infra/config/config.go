package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port string

	DB       DBConfig
	OpenAI   OpenAIConfig
	Airtable AirtableConfig
	Prompts  PromptConfig

	// VectorIndexEnabled gates the pgvector retrieval path. When false the
	// server runs keyword-only against the JSON corpus file.
	VectorIndexEnabled bool
	EventsPath         string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	MaxConns int32
	MinConns int32
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
}

type AirtableConfig struct {
	APIKey  string
	BaseID  string
	Table   string
	BaseURL string
}

type PromptConfig struct {
	Dir          string
	DefaultStyle string
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "events-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "guide_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "guide_password"),
			Name:     getEnv("DB_NAME", "guide_db"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout:        time.Duration(getEnvInt("GENERATOR_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Airtable: AirtableConfig{
			APIKey:  getSecret("AIRTABLE_API_KEY", "AIRTABLE_API_KEY_FILE", ""),
			BaseID:  getEnv("AIRTABLE_BASE_ID", ""),
			Table:   getEnv("AIRTABLE_TABLE", "Events"),
			BaseURL: getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com"),
		},
		Prompts: PromptConfig{
			Dir:          getEnv("PROMPTS_DIR", "prompts"),
			DefaultStyle: getEnv("DEFAULT_STYLE", "default"),
		},
		VectorIndexEnabled: getEnvBool("VECTOR_INDEX_ENABLED", false),
		EventsPath:         getEnv("EVENTS_PATH", "data/events.json"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getSecret reads a secret from the environment, falling back to a file path
// named by fileEnvKey for container secret mounts.
func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
