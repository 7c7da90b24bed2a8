package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/nkosi-ncube/CareIQ/pkg/messaging/redis"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	JWT         JWTConfig         `mapstructure:"jwt"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	AI          AIConfig          `mapstructure:"ai"`
	Matcher     MatcherConfig     `mapstructure:"matcher"`
	Translation TranslationConfig `mapstructure:"translation"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Transcode   TranscodeConfig   `mapstructure:"transcode"`

	Secrets Secrets `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	redis.Config `mapstructure:",squash"`
}

type JWTConfig struct {
	ExpiryHours  int    `mapstructure:"expiry_hours"`
	CookieName   string `mapstructure:"cookie_name"`
	SecureCookie bool   `mapstructure:"secure_cookie"`
}

// CacheConfig bounds how stale a polled view can be.
type CacheConfig struct {
	ViewTTL         time.Duration `mapstructure:"view_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type AIConfig struct {
	ChatModel          string  `mapstructure:"chat_model"`
	TranscriptionModel string  `mapstructure:"transcription_model"`
	Temperature        float32 `mapstructure:"temperature"`
	BaseURL            string  `mapstructure:"base_url"`
}

type MatcherConfig struct {
	FilterBySpecialty bool `mapstructure:"filter_by_specialty"`
}

type TranslationConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	SourceLanguage   string        `mapstructure:"source_language"`
	Timeout          time.Duration `mapstructure:"timeout"`
	HalfOpenRequests uint32        `mapstructure:"half_open_requests"`
}

type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type TranscodeConfig struct {
	FFmpegPath string `mapstructure:"ffmpeg_path"`
}

// Secrets are read from the environment only. A missing value fails startup.
type Secrets struct {
	OpenAIKey   string `envconfig:"OPENAI_API_KEY" required:"true"`
	LelapaToken string `envconfig:"LELAPA_API" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.request_timeout", 60*time.Second)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("jwt.expiry_hours", 24)
	v.SetDefault("jwt.cookie_name", "token")
	v.SetDefault("cache.view_ttl", 3*time.Second)
	v.SetDefault("cache.cleanup_interval", time.Minute)
	v.SetDefault("rate_limit.requests_per_second", 50)
	v.SetDefault("rate_limit.burst", 100)
	v.SetDefault("logging.level", "info")
	v.SetDefault("ai.chat_model", "gpt-4o-mini")
	v.SetDefault("ai.transcription_model", "whisper-1")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("translation.base_url", "https://vulavula-services.lelapa.ai/api/v1")
	v.SetDefault("translation.source_language", "eng_Latn")
	v.SetDefault("translation.timeout", 20*time.Second)
	v.SetDefault("translation.half_open_requests", 32)
	v.SetDefault("matcher.filter_by_specialty", false)
	v.SetDefault("smtp.port", 587)
	v.SetDefault("transcode.ffmpeg_path", "ffmpeg")
}

// LoadConfig reads config.yml, applies env overrides and loads secrets.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app/config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Secrets); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	return &config, nil
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
