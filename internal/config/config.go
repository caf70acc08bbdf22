package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	DefaultLanguage string `mapstructure:"default_language"`
	TempDir         string `mapstructure:"temp_dir"`

	// Worker pool
	QueueSize    int           `mapstructure:"queue_size"`
	Workers      int           `mapstructure:"workers"`
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`

	// Legacy room-broadcast delivery of translated audio.
	BroadcastCompat bool `mapstructure:"broadcast_compat"`

	// Providers
	OpenAIToken string            `mapstructure:"openai_token"`
	DeepLToken  string            `mapstructure:"deepl_token"`
	Voices      map[string]string `mapstructure:"voices"`
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

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 10485760) // large enough for base64 audio events
	v.SetDefault("ping_period", "54s")
	v.SetDefault("default_language", "en")
	v.SetDefault("queue_size", 256)
	v.SetDefault("workers", 1)
	v.SetDefault("stage_timeout", "30s")
	v.SetDefault("drain_timeout", "10s")
	v.SetDefault("broadcast_compat", false)

	// Credentials come from the environment, never from the config file.
	v.BindEnv("openai_token", "OPENAI_TOKEN")
	v.BindEnv("deepl_token", "DEEPL_TOKEN")
	v.BindEnv("secret", "SECRET_KEY")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Workers: %d\n", cfg.Mode, cfg.Port, cfg.Workers)
	return &cfg, nil
}
