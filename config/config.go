package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server settings
	ServerPort   string        `json:"server_port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Debug        bool          `json:"debug"`

	// Application paths
	LogDir  string `json:"log_dir"`
	TempDir string `json:"temp_dir"`

	// Middleware settings
	Middleware MiddlewareConfig `json:"middleware"`

	// CORS Configuration
	CORS CORSConfig `json:"cors"`

	// Rate Limiting
	RateLimit RateLimitConfig `json:"rate_limit"`

	// Configuration store (Airtable)
	Airtable AirtableConfig `json:"airtable"`

	// Transcript acquisition
	Transcript TranscriptConfig `json:"transcript"`

	// LLM provider credentials
	Providers ProviderConfig `json:"providers"`

	// Application version
	Version string `json:"version"`

	// Request and shutdown timeouts
	RequestTimeout  time.Duration `json:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type MiddlewareConfig struct {
	EnableRecover   bool `json:"enable_recover"`
	EnableRequestID bool `json:"enable_request_id"`
	EnableLogger    bool `json:"enable_logger"`
	EnableCORS      bool `json:"enable_cors"`
	EnableRateLimit bool `json:"enable_rate_limit"`
	EnableCompress  bool `json:"enable_compress"`
	EnableETag      bool `json:"enable_etag"`
	EnableDebugMode bool `json:"enable_debug_mode"`
}

type AirtableConfig struct {
	APIKey    string        `json:"-"`
	BaseID    string        `json:"base_id"`
	TableName string        `json:"table_name"`
	Timeout   time.Duration `json:"timeout"`
}

type TranscriptConfig struct {
	// ProcessTimeout bounds one full acquisition (download + transcription).
	ProcessTimeout time.Duration `json:"process_timeout"`

	// ChunkThresholdBytes is the audio size above which the asset is split
	// before transcription, matching the speech API upload limit.
	ChunkThresholdBytes int64 `json:"chunk_threshold_bytes"`

	// ChunkDuration is the length of each audio slice.
	ChunkDuration time.Duration `json:"chunk_duration"`

	// Whisper transcription settings
	WhisperModel string `json:"whisper_model"`

	// Tool paths
	YTDLPPath  string `json:"ytdlp_path"`
	FFmpegPath string `json:"ffmpeg_path"`

	// Outbound transcription pacing
	TranscribeRPS   float64 `json:"transcribe_rps"`
	TranscribeBurst int     `json:"transcribe_burst"`
}

type ProviderConfig struct {
	OpenAIKey     string `json:"-"`
	AnthropicKey  string `json:"-"`
	GroqKey       string `json:"-"`
	PerplexityKey string `json:"-"`
}

type CORSConfig struct {
	Enabled          bool     `json:"enabled"`
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `json:"enabled"`
	RequestsPerMinute int  `json:"requests_per_minute"`
	BurstSize         int  `json:"burst_size"`
}

// Default configurations
func defaultDevConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableCORS:      true,
		EnableRateLimit: false, // Disabled for testing
		EnableCompress:  false, // Not needed for development
		EnableETag:      false, // Not needed for development
		EnableDebugMode: true,
	}
}

func defaultProdConfig() MiddlewareConfig {
	return MiddlewareConfig{
		EnableRecover:   true,
		EnableRequestID: true,
		EnableLogger:    true,
		EnableCORS:      true,
		EnableRateLimit: true,
		EnableCompress:  true,
		EnableETag:      true,
		EnableDebugMode: false,
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Server settings
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
		Debug:        getEnvAsBool("DEBUG", false),

		// Application paths
		LogDir:  getEnv("LOG_DIR", "/var/log/youtube-insights"),
		TempDir: getEnv("TEMP_DIR", "/tmp/youtube-insights"),

		// Application version
		Version: getEnv("VERSION", "1.0.0"),

		// Request and shutdown timeouts
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Minute),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		// CORS Configuration
		CORS: CORSConfig{
			Enabled:        getEnvAsBool("CORS_ENABLED", true),
			AllowedOrigins: getEnvAsStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsStringSlice(
				"CORS_ALLOWED_METHODS",
				[]string{"GET", "POST", "OPTIONS"},
			),
			AllowedHeaders:   getEnvAsStringSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type"}),
			ExposedHeaders:   getEnvAsStringSlice("CORS_EXPOSED_HEADERS", []string{}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 86400),
		},

		// Rate Limiting
		RateLimit: RateLimitConfig{
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			BurstSize:         getEnvAsInt("RATE_LIMIT_BURST", 10),
		},

		// Configuration store
		Airtable: AirtableConfig{
			APIKey:    getEnv("AIRTABLE_API_KEY", ""),
			BaseID:    getEnv("AIRTABLE_BASE_ID", ""),
			TableName: getEnv("AIRTABLE_TABLE_NAME", ""),
			Timeout:   getEnvAsDuration("AIRTABLE_TIMEOUT", 15*time.Second),
		},

		// Transcript acquisition
		Transcript: TranscriptConfig{
			ProcessTimeout:      getEnvAsDuration("TRANSCRIPT_PROCESS_TIMEOUT", 20*time.Minute),
			ChunkThresholdBytes: getEnvAsInt64("CHUNK_THRESHOLD_BYTES", 25*1024*1024),
			ChunkDuration:       getEnvAsDuration("CHUNK_DURATION", 10*time.Minute),
			WhisperModel:        getEnv("WHISPER_MODEL", "whisper-1"),
			YTDLPPath:           getEnv("YTDLP_PATH", "yt-dlp"),
			FFmpegPath:          getEnv("FFMPEG_PATH", "ffmpeg"),
			TranscribeRPS:       getEnvAsFloat("TRANSCRIBE_RPS", 1),
			TranscribeBurst:     getEnvAsInt("TRANSCRIBE_BURST", 2),
		},

		// Provider credentials
		Providers: ProviderConfig{
			OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
			AnthropicKey:  getEnv("ANTHROPIC_API_KEY", ""),
			GroqKey:       getEnv("GROQ_API_KEY", ""),
			PerplexityKey: getEnv("PERPLEXITY_API_KEY", ""),
		},

		// Middleware
		Middleware: defaultDevConfig(),
	}

	if os.Getenv("ENV") == "production" {
		cfg.Middleware = defaultProdConfig()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validatePaths(c); err != nil {
		return err
	}

	if err := validateTimeouts(c); err != nil {
		return err
	}

	if err := validateServices(c); err != nil {
		return err
	}

	return nil
}

func validatePaths(c *Config) error {
	paths := []struct {
		path string
		name string
	}{
		{c.LogDir, "log directory"},
		{c.TempDir, "temp directory"},
	}

	for _, p := range paths {
		if err := os.MkdirAll(p.path, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", p.name, err)
		}
	}

	return nil
}

func validateTimeouts(c *Config) error {
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.Transcript.ProcessTimeout <= 0 {
		return fmt.Errorf("transcript process timeout must be positive")
	}
	return nil
}

func validateServices(c *Config) error {
	if c.Airtable.APIKey == "" || c.Airtable.BaseID == "" || c.Airtable.TableName == "" {
		return fmt.Errorf("airtable api key, base id, and table name are required")
	}
	if c.Transcript.ChunkThresholdBytes <= 0 {
		return fmt.Errorf("chunk threshold must be positive")
	}
	if c.Transcript.ChunkDuration <= 0 {
		return fmt.Errorf("chunk duration must be positive")
	}
	return nil
}

// Helper functions for reading environment variables
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		if value = strings.TrimSpace(value); value != "" {
			return strings.Split(value, ",")
		}
	}
	return defaultValue
}
