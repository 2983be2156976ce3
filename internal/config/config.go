// Package config loads application settings from defaults, an optional
// .env file and SAHAYAK_ environment variables.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"sahayak/internal/state"
)

const EnvPrefix = "SAHAYAK"

type Canvas struct {
	Width  int `mapstructure:"width" validate:"gte=100,lte=4096"`
	Height int `mapstructure:"height" validate:"gte=100,lte=4096"`
}

type Board struct {
	HistoryCap   int    `mapstructure:"historycap" validate:"gte=1"`
	MaxBrush     int    `mapstructure:"maxbrush" validate:"gte=1,lte=200"`
	DefaultColor string `mapstructure:"defaultcolor" validate:"required,hex6"`
	DefaultSize  int    `mapstructure:"defaultsize" validate:"gte=1,ltefield=MaxBrush"`
	ExportDir    string `mapstructure:"exportdir"`
}

type Intent struct {
	Endpoint string        `mapstructure:"endpoint" validate:"required,url"`
	APIKey   string        `mapstructure:"apikey"`
	Model    string        `mapstructure:"model" validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type Mirror struct {
	Enabled   bool `mapstructure:"enabled"`
	Port      int  `mapstructure:"port" validate:"gte=1,lte=65535"`
	Advertise bool `mapstructure:"advertise"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type Config struct {
	Canvas Canvas `mapstructure:"canvas"`
	Board  Board  `mapstructure:"board"`
	Intent Intent `mapstructure:"intent"`
	Mirror Mirror `mapstructure:"mirror"`
	Log    Log    `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("canvas.width", 800)
	v.SetDefault("canvas.height", 500)
	v.SetDefault("board.historycap", 20)
	v.SetDefault("board.maxbrush", 40)
	v.SetDefault("board.defaultcolor", "#000000")
	v.SetDefault("board.defaultsize", 3)
	v.SetDefault("board.exportdir", ".")
	v.SetDefault("intent.endpoint", "https://generativelanguage.googleapis.com/v1beta/models")
	v.SetDefault("intent.apikey", "")
	v.SetDefault("intent.model", "gemini-pro")
	v.SetDefault("intent.timeout", 10*time.Second)
	v.SetDefault("mirror.enabled", true)
	v.SetDefault("mirror.port", 8888)
	v.SetDefault("mirror.advertise", true)
	v.SetDefault("log.level", "info")
}

// Load reads dotEnvPath when it exists, then the environment, over the
// defaults. An empty dotEnvPath skips the file.
func Load(dotEnvPath string) (Config, error) {
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return Config{}, errors.Wrapf(err, "load %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "stat %s", dotEnvPath)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("intent.apikey", EnvPrefix+"_INTENT_APIKEY", "GEMINI_API_KEY"); err != nil {
		return Config{}, errors.Wrap(err, "bind api key")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := state.Validator().Struct(cfg); err != nil {
		return Config{}, errors.Errorf("invalid config: %s", state.Explain(err))
	}
	return cfg, nil
}

// SlogLevel maps the configured level name onto slog.
func (c Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
