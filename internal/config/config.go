package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Ai      AIConfig
	Search  SearchConfig
	Session SessionConfig
	School  SchoolConfig
	Tracing TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	PublicDir          string
	DataPath           string
	ChatLogPath        string
	UsageTrackerPath   string
	RulesPath          string
	JwtSecret          string
}

type AIConfig struct {
	LLMProvider         string // "openai", "groq", "ollama", "huggingface"
	LLMModel            string
	LLMApiKey           string
	LLMBaseURL          string
	EmbeddingProvider   string // "openai", "ollama", "jina"
	EmbeddingModel      string
	EmbeddingApiKey     string
	EmbeddingBaseURL    string
	OllamaBaseURL       string
	RequestTimeout      time.Duration
	TopK                int
	EmbedConcurrency    int
	SmoothPersonalFacts bool
}

// SearchConfig configures the web search fallback providers.
type SearchConfig struct {
	PrimaryProvider       string
	PrimaryApiKey         string
	PrimaryDailyLimit     int
	PrimaryMonthlyLimit   int
	SecondaryProvider     string
	SecondaryApiKey       string
	SecondaryDailyLimit   int
	SecondaryMonthlyLimit int
}

type SessionConfig struct {
	Backend      string // "memory" or "redis"
	RedisURL     string
	IdleTimeout  time.Duration
	HistoryLimit int
}

type SchoolConfig struct {
	Name  string
	Phone string
	Email string
}

// TracingConfig controls the OTLP exporter. Disabled unless OTEL_ENABLED=true.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			PublicDir:          getEnv("PUBLIC_DIR", "./public"),
			DataPath:           getEnv("DATA_PATH", "./data"),
			ChatLogPath:        getEnv("CHAT_LOG_PATH", "chat_logs.txt"),
			UsageTrackerPath:   getEnv("USAGE_TRACKER_PATH", "usage_tracker.json"),
			RulesPath:          getEnv("RULES_PATH", ""),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			LLMProvider:         strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
			LLMApiKey:           getEnv("LLM_API_KEY", ""),
			LLMBaseURL:          getEnv("LLM_BASE_URL", ""),
			EmbeddingProvider:   strings.ToLower(getEnv("EMBEDDING_PROVIDER", "openai")),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", ""),
			EmbeddingApiKey:     getEnv("EMBEDDING_API_KEY", ""),
			EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", ""),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			RequestTimeout:      getEnvAsDuration("REQUEST_TIMEOUT", 20*time.Second),
			TopK:                getEnvAsInt("TOP_K", 3),
			EmbedConcurrency:    getEnvAsInt("EMBED_CONCURRENCY", 8),
			SmoothPersonalFacts: getEnvAsBool("SMOOTH_PERSONAL_FACTS", true),
		},
		Search: SearchConfig{
			PrimaryProvider:       strings.ToLower(getEnv("WEB_SEARCH_PROVIDER", "brave")),
			PrimaryApiKey:         getEnv("WEB_SEARCH_API_KEY", ""),
			PrimaryDailyLimit:     getEnvAsInt("WEB_SEARCH_DAILY_LIMIT", 60),
			PrimaryMonthlyLimit:   getEnvAsInt("WEB_SEARCH_MONTHLY_LIMIT", 2000),
			SecondaryProvider:     strings.ToLower(getEnv("WEB_SEARCH_PROVIDER_SECONDARY", "bing")),
			SecondaryApiKey:       getEnv("WEB_SEARCH_API_KEY_SECONDARY", ""),
			SecondaryDailyLimit:   getEnvAsInt("WEB_SEARCH_DAILY_LIMIT_SECONDARY", 30),
			SecondaryMonthlyLimit: getEnvAsInt("WEB_SEARCH_MONTHLY_LIMIT_SECONDARY", 1000),
		},
		Session: SessionConfig{
			Backend:      strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
			IdleTimeout:  getEnvAsDuration("SESSION_IDLE_TIMEOUT", time.Hour),
			HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 10),
		},
		School: SchoolConfig{
			Name:  getEnv("SCHOOL_NAME", "Shiva Boys' Hindu College"),
			Phone: getEnv("SCHOOL_PHONE", "(868) 000-0000"),
			Email: getEnv("SCHOOL_EMAIL", "info@shivaboys.edu.tt"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "school-chatbot-backend"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
