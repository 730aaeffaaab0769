package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dkeye/neonroom/internal/app/orch"
	"github.com/dkeye/neonroom/internal/app/turns"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	Secret       string        `mapstructure:"secret"`
	FixturesPath string        `mapstructure:"fixtures_path"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	Session      Session       `mapstructure:"session"`
	Limits       Limits        `mapstructure:"limits"`
}

// Session holds the pacing of a room session.
type Session struct {
	StartDelay      time.Duration `mapstructure:"start_delay"`
	TurnDuration    time.Duration `mapstructure:"turn_duration"`
	TurnGap         time.Duration `mapstructure:"turn_gap"`
	HandAckDuration time.Duration `mapstructure:"hand_ack_duration"`
	ToastTTL        time.Duration `mapstructure:"toast_ttl"`
	CleanupGrace    time.Duration `mapstructure:"cleanup_grace"`
}

type Limits struct {
	JoinLimit    int           `mapstructure:"join_limit"`
	JoinInterval time.Duration `mapstructure:"join_interval"`
	MaxDropped   int           `mapstructure:"max_dropped"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "neonroom-dev-secret")
	v.SetDefault("fixtures_path", "")
	v.SetDefault("cors_origins", []string{})

	v.SetDefault("session.start_delay", "800ms")
	v.SetDefault("session.turn_duration", "6s")
	v.SetDefault("session.turn_gap", "1500ms")
	v.SetDefault("session.hand_ack_duration", "3s")
	v.SetDefault("session.toast_ttl", "4s")
	v.SetDefault("session.cleanup_grace", "300ms")

	v.SetDefault("limits.join_limit", 5)
	v.SetDefault("limits.join_interval", "10s")
	v.SetDefault("limits.max_dropped", 32)
}

// Load reads config/config.<CONFIG_ENV>.yaml, falling back to defaults
// when the file is missing.
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

func LoadFile(fileName string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Int("port", cfg.Port).
		Str("static", cfg.StaticPath).
		Msg("config ready")
	return &cfg, nil
}

// Orch maps the session section onto the orchestrator config.
func (c *Config) Orch() orch.Config {
	return orch.Config{
		Turns: turns.Config{
			StartDelay:      c.Session.StartDelay,
			TurnDuration:    c.Session.TurnDuration,
			TurnGap:         c.Session.TurnGap,
			HandAckDuration: c.Session.HandAckDuration,
		},
		ToastTTL:     c.Session.ToastTTL,
		CleanupGrace: c.Session.CleanupGrace,
	}
}
