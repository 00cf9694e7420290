// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, database paths, assistant behavior,
// provider credentials, rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-portfolio-assistant")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// OpenAIConfig holds credentials and model names for the OpenAI provider
// (chat completion, Whisper transcription, speech synthesis).
type OpenAIConfig struct {
	APIKey    string // OPENAI_API_KEY
	ChatModel string // OPENAI_CHAT_MODEL
	STTModel  string // OPENAI_STT_MODEL
	TTSModel  string // OPENAI_TTS_MODEL
	TTSVoice  string // OPENAI_TTS_VOICE
}

// TranslateConfig holds settings for the translation provider
// (language detection + text translation).
type TranslateConfig struct {
	APIKey  string // TRANSLATE_API_KEY
	BaseURL string // TRANSLATE_BASE_URL (override for tests/proxies)
}

// AssistantConfig groups the conversational pipeline settings: identity,
// contact details surfaced in canned replies, input limits, session memory,
// company-info caching, and optional capabilities.
type AssistantConfig struct {
	Name              string        // ASSISTANT_NAME
	ContactPhone      string        // CONTACT_PHONE
	ContactEmail      string        // CONTACT_EMAIL
	SiteBaseURL       string        // SITE_BASE_URL (deep links)
	Timezone          string        // TIMEZONE (IANA name for time replies)
	MaxMessageChars   int           // MAX_MESSAGE_CHARS
	ForbiddenKeywords []string      // FORBIDDEN_KEYWORDS (CSV)
	SessionTTL        time.Duration // SESSION_TTL (name memory expiry)
	SessionMax        int           // SESSION_MAX (name memory capacity)
	CompanyCacheTTL   time.Duration // COMPANY_CACHE_TTL
	TTSMaxBytes       int           // TTS_MAX_BYTES (per-chunk payload cap)
	UsersEnabled      bool          // USERS_ENABLED (user lookup capability)
	CompanyInfo       bool          // COMPANY_INFO_ENABLED
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	DBPath string // SQLite path

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Providers
	OpenAI    OpenAIConfig
	Translate TranslateConfig

	// Pipeline
	Assistant AssistantConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "app.db"),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Providers
		OpenAI: OpenAIConfig{
			APIKey:    getenv("OPENAI_API_KEY", ""),
			ChatModel: getenv("OPENAI_CHAT_MODEL", "gpt-4"),
			STTModel:  getenv("OPENAI_STT_MODEL", "whisper-1"),
			TTSModel:  getenv("OPENAI_TTS_MODEL", "tts-1"),
			TTSVoice:  getenv("OPENAI_TTS_VOICE", "alloy"),
		},
		Translate: TranslateConfig{
			APIKey:  getenv("TRANSLATE_API_KEY", ""),
			BaseURL: getenv("TRANSLATE_BASE_URL", "https://translation.googleapis.com"),
		},

		// Pipeline
		Assistant: AssistantConfig{
			Name:              getenv("ASSISTANT_NAME", "Portfolio Agent"),
			ContactPhone:      getenv("CONTACT_PHONE", "+01028496209"),
			ContactEmail:      getenv("CONTACT_EMAIL", "elsaeidellithy@gmail.com"),
			SiteBaseURL:       strings.TrimRight(getenv("SITE_BASE_URL", "https://alsaaeid-ellithy.vercel.app"), "/"),
			Timezone:          getenv("TIMEZONE", "Africa/Cairo"),
			MaxMessageChars:   getint("MAX_MESSAGE_CHARS", 1000),
			ForbiddenKeywords: splitCSV(getenv("FORBIDDEN_KEYWORDS", "")),
			SessionTTL:        getdur("SESSION_TTL", time.Hour),
			SessionMax:        getint("SESSION_MAX", 10_000),
			CompanyCacheTTL:   getdur("COMPANY_CACHE_TTL", 10*time.Minute),
			TTSMaxBytes:       getint("TTS_MAX_BYTES", 5000),
			UsersEnabled:      getbool("USERS_ENABLED", true),
			CompanyInfo:       getbool("COMPANY_INFO_ENABLED", true),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-portfolio-assistant"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.Assistant.MaxMessageChars <= 0 {
		return cfg, errors.New("MAX_MESSAGE_CHARS must be > 0")
	}
	if cfg.Assistant.SessionTTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if cfg.Assistant.SessionMax < 1 {
		return cfg, errors.New("SESSION_MAX must be >= 1")
	}
	if cfg.Assistant.CompanyCacheTTL <= 0 {
		return cfg, errors.New("COMPANY_CACHE_TTL must be > 0")
	}
	if cfg.Assistant.TTSMaxBytes < 256 {
		return cfg, errors.New("TTS_MAX_BYTES must be >= 256")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
