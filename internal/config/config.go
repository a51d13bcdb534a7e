// Package config loads server settings from an optional pong.yaml, an
// optional .env file, and PONG_-prefixed environment variables, in
// ascending precedence.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"pong-duel/server/logging"
)

type Config struct {
	ListenAddr string `mapstructure:"listen_addr"`
	// PublicDir overrides the static page directory; empty means resolve
	// it relative to the working directory or executable.
	PublicDir string `mapstructure:"public_dir"`

	Game    Game           `mapstructure:"game"`
	Logging logging.Config `mapstructure:"-"`

	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays int    `mapstructure:"log_max_age_days"`
	LogCompress   bool   `mapstructure:"log_compress"`
}

type Game struct {
	WinningScore     int           `mapstructure:"winning_score"`
	SessionTimeout   time.Duration `mapstructure:"session_timeout"`
	PauseMaxDuration time.Duration `mapstructure:"pause_max_duration"`
	LockTimeout      time.Duration `mapstructure:"lock_timeout"`
	TickInterval     time.Duration `mapstructure:"tick_interval"`
	// MaxBallSpeed caps the paddle-hit escalation; 0 preserves the
	// historical uncapped behavior.
	MaxBallSpeed float64 `mapstructure:"max_ball_speed"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":3000")
	v.SetDefault("public_dir", "")
	v.SetDefault("game.winning_score", 5)
	v.SetDefault("game.session_timeout", 120*time.Second)
	v.SetDefault("game.pause_max_duration", 300*time.Second)
	v.SetDefault("game.lock_timeout", time.Second)
	v.SetDefault("game.tick_interval", 16*time.Millisecond)
	v.SetDefault("game.max_ball_speed", 0.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 14)
}

// Load reads configuration from path (a directory; "." when empty).
// Missing files are fine; only a malformed file is an error.
func Load(path string) (Config, error) {
	// Best effort: a .env is a convenience, not a requirement.
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)

	v.SetConfigName("pong")
	v.SetConfigType("yaml")
	if path == "" {
		path = "."
	}
	v.AddConfigPath(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("PONG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	cfg.normalize()
	cfg.Logging = logging.Config{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}
	return cfg, nil
}

// normalize clamps values that would break the simulation back to their
// defaults rather than failing startup.
func (c *Config) normalize() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":3000"
	}
	if c.Game.WinningScore <= 0 {
		c.Game.WinningScore = 5
	}
	if c.Game.SessionTimeout <= 0 {
		c.Game.SessionTimeout = 120 * time.Second
	}
	if c.Game.PauseMaxDuration <= 0 {
		c.Game.PauseMaxDuration = 300 * time.Second
	}
	if c.Game.LockTimeout <= 0 {
		c.Game.LockTimeout = time.Second
	}
	if c.Game.TickInterval <= 0 {
		c.Game.TickInterval = 16 * time.Millisecond
	}
	if c.Game.MaxBallSpeed < 0 {
		c.Game.MaxBallSpeed = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
