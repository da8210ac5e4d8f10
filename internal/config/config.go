package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvConfigFile = "STUDYFLOW_CONFIG"

const (
	keyPort           = "port"
	keyCORSOrigins    = "cors_origins"
	keyModelName      = "model.name"
	keyModelTimeout   = "model.timeout"
	keyModelLogLevel  = "model.log_level"
	keyPromptPlan     = "prompts.plan"
	keyPromptChat     = "prompts.chat"
	keyTickInterval   = "timer.tick_interval"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
	keyLogFile        = "log.file"
	keyLogMaxSizeMB   = "log.max_size_mb"
	keyLogMaxBackups  = "log.max_backups"
	defaultCORSOrigin = "http://localhost:5173,http://127.0.0.1:5173"
)

type Config struct {
	Port        string       `mapstructure:"port"`
	CORSOrigins []string     `mapstructure:"-"`
	Model       ModelConfig  `mapstructure:"model"`
	Prompts     PromptConfig `mapstructure:"prompts"`
	Timer       TimerConfig  `mapstructure:"timer"`
	Log         LogConfig    `mapstructure:"log"`
}

type ModelConfig struct {
	// Name is the Copilot model id; blank lets Copilot choose.
	Name     string        `mapstructure:"name"`
	Timeout  time.Duration `mapstructure:"timeout"`
	LogLevel string        `mapstructure:"log_level"`
}

// PromptConfig overrides the user prompt templates. Blank keeps the
// built-in text.
type PromptConfig struct {
	Plan string `mapstructure:"plan"`
	Chat string `mapstructure:"chat"`
}

type TimerConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Load reads defaults, an optional YAML file and the environment, in that
// order of precedence from lowest to highest. An empty path falls back to
// $STUDYFLOW_CONFIG.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STUDYFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the bare names predate the prefix
	_ = v.BindEnv(keyPort, "STUDYFLOW_PORT", "PORT")
	_ = v.BindEnv(keyCORSOrigins, "STUDYFLOW_CORS_ORIGINS", "CORS_ORIGINS")

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config failed: %w", err)
	}
	cfg.CORSOrigins = splitList(v.GetStringSlice(keyCORSOrigins))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyPort, "8080")
	v.SetDefault(keyCORSOrigins, defaultCORSOrigin)
	v.SetDefault(keyModelName, "")
	v.SetDefault(keyModelTimeout, "2m")
	v.SetDefault(keyModelLogLevel, "error")
	v.SetDefault(keyPromptPlan, "")
	v.SetDefault(keyPromptChat, "")
	v.SetDefault(keyTickInterval, "1s")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyLogFile, "")
	v.SetDefault(keyLogMaxSizeMB, 10)
	v.SetDefault(keyLogMaxBackups, 3)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}
	if c.Timer.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("timer.tick_interval must be positive, got %s", c.Timer.TickInterval))
	}
	if c.Model.Timeout < 0 {
		errs = append(errs, fmt.Errorf("model.timeout must not be negative, got %s", c.Model.Timeout))
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// splitList accepts both YAML lists and comma separated env values.
func splitList(values []string) []string {
	items := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
