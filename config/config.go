package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port      string
	DBPath    string
	StaticDir string
	LogLevel  string
	LogPretty bool
	LogCaller bool
	// FontDir holds extra .ttf/.otf files for exported page images, e.g.
	// Noto Sans Georgian.
	FontDir string
	// TrustProxy takes the client address from X-Forwarded-For. Enable only
	// behind a reverse proxy that overwrites the header.
	TrustProxy bool

	// LLMProvider is auto, gemini, openai or mock. auto picks gemini when a
	// Google key is present, then an OpenAI-compatible endpoint, then the mock.
	LLMProvider    string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiEndpoint string
	LLMEndpoint    string
	LLMAPIKey      string
	LLMModel       string

	GenerateTimeout   time.Duration
	GenerateRateLimit int // requests per minute per client, 0 disables
	ShutdownTimeout   time.Duration
}

// Load reads .env from the working directory (if any) and the environment.
func Load() AppConfig {
	return LoadFile(".env")
}

// LoadFile reads path as a dotenv file. Process environment wins over the file.
func LoadFile(path string) AppConfig {
	fileEnv, err := godotenv.Read(path)
	if err != nil {
		log.Printf("[cfg] no env file at %s: %v", path, err)
		fileEnv = map[string]string{}
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		if v := fileEnv[k]; v != "" {
			return v
		}
		return def
	}
	getDuration := func(k string, def time.Duration) time.Duration {
		raw := get(k, "")
		if raw == "" {
			return def
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Printf("[cfg] invalid %s=%q, using %s", k, raw, def)
			return def
		}
		return d
	}
	getInt := func(k string, def int) int {
		raw := get(k, "")
		if raw == "" {
			return def
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			log.Printf("[cfg] invalid %s=%q, using %d", k, raw, def)
			return def
		}
		return n
	}

	cfg := AppConfig{
		Port:      get("PORT", "8080"),
		DBPath:    get("DB_PATH", "turizm.db"),
		StaticDir: get("STATIC_DIR", "static"),
		LogLevel:  get("LOG_LEVEL", "info"),
		LogPretty: get("LOG_PRETTY", "false") == "true",
		LogCaller: get("LOG_CALLER", "false") == "true",
		FontDir:   get("EXPORT_FONT_DIR", "fonts"),

		TrustProxy: get("TRUST_PROXY", "false") == "true",

		LLMProvider:    strings.ToLower(get("LLM_PROVIDER", "auto")),
		GeminiAPIKey:   get("GOOGLE_AI_API_KEY", get("GEMINI_API_KEY", "")),
		GeminiModel:    get("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiEndpoint: get("GEMINI_ENDPOINT", "https://generativelanguage.googleapis.com"),
		LLMEndpoint:    get("LLM_ENDPOINT", ""),
		LLMAPIKey:      get("LLM_API_KEY", ""),
		LLMModel:       get("LLM_MODEL", "gpt-4o-mini"),

		GenerateTimeout:   getDuration("GENERATE_TIMEOUT", 60*time.Second),
		GenerateRateLimit: getInt("GENERATE_RATE_LIMIT", 10),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
	return cfg
}

// Provider resolves LLMProvider=auto against the configured credentials.
func (c AppConfig) Provider() string {
	switch c.LLMProvider {
	case "gemini", "openai", "mock":
		return c.LLMProvider
	}
	if c.GeminiAPIKey != "" {
		return "gemini"
	}
	if c.LLMEndpoint != "" && c.LLMAPIKey != "" {
		return "openai"
	}
	return "mock"
}

// String renders the config with secrets redacted.
func (c AppConfig) String() string {
	redact := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	r := c
	r.GeminiAPIKey = redact(c.GeminiAPIKey)
	r.LLMAPIKey = redact(c.LLMAPIKey)
	type plain AppConfig
	return fmt.Sprintf("%+v", plain(r))
}
