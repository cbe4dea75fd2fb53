package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	Secret     string        `mapstructure:"secret"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
}

type Database struct {
	Path string `mapstructure:"path"`
}

// Providers holds the credential pools and retry budgets for the external
// capabilities. Key lists may come from the config file or from the
// GEMINI_API_KEYS / WHISPER_API_KEYS env vars as comma-separated values.
type Providers struct {
	GeminiKeys  []string `mapstructure:"gemini_keys"`
	WhisperKeys []string `mapstructure:"whisper_keys"`

	RetryFactor      int           `mapstructure:"retry_factor"`
	TransientRetries int           `mapstructure:"transient_retries"`
	BackoffBase      time.Duration `mapstructure:"backoff_base"`

	TranslateTimeout  time.Duration `mapstructure:"translate_timeout"`
	TranscribeTimeout time.Duration `mapstructure:"transcribe_timeout"`
	SynthesizeTimeout time.Duration `mapstructure:"synthesize_timeout"`

	// ResetInterval clears exhausted-key flags periodically to follow the
	// provider quota window. Zero disables the ticker.
	ResetInterval time.Duration `mapstructure:"reset_interval"`
}

type Languages struct {
	Fallback         string `mapstructure:"fallback"`
	SynthesisEnabled bool   `mapstructure:"synthesis_enabled"`
}

type Config struct {
	Server       Server    `mapstructure:"server"`
	Database     Database  `mapstructure:"database"`
	Providers    Providers `mapstructure:"providers"`
	Languages    Languages `mapstructure:"languages"`
	HistoryLimit int       `mapstructure:"history_limit"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("server.mode", "release")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_path", "./web")
	v.SetDefault("server.read_limit", 1<<20)
	v.SetDefault("server.ping_period", "54s")
	v.SetDefault("database.path", "babelroom.db")
	v.SetDefault("providers.retry_factor", 2)
	v.SetDefault("providers.transient_retries", 3)
	v.SetDefault("providers.backoff_base", "200ms")
	v.SetDefault("providers.translate_timeout", "15s")
	v.SetDefault("providers.transcribe_timeout", "60s")
	v.SetDefault("providers.synthesize_timeout", "45s")
	v.SetDefault("providers.reset_interval", "0")
	v.SetDefault("languages.fallback", "en")
	v.SetDefault("languages.synthesis_enabled", true)
	v.SetDefault("history_limit", 50)

	v.BindEnv("server.secret", "BABELROOM_SECRET")
	v.BindEnv("providers.gemini_keys", "GEMINI_API_KEYS")
	v.BindEnv("providers.whisper_keys", "WHISPER_API_KEYS")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
