// Package config loads the bot's settings from the environment, then from
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/pflag"
)

// Config holds the process settings.
type Config struct {
	Token         string        `env:"DISCORD_BOT_TOKEN"`
	GuildID       string        `env:"DISCORD_GUILD_ID"`
	DBPath        string        `env:"STAFFBOT_DB_PATH" envDefault:"staffbot.db"`
	InactiveSweep time.Duration `env:"STAFFBOT_INACTIVE_SWEEP" envDefault:"10s"`
	StrikeSweep   time.Duration `env:"STAFFBOT_STRIKE_SWEEP" envDefault:"30s"`
	ImportPath    string        `env:"STAFFBOT_IMPORT"`
	Debug         bool          `env:"STAFFBOT_DEBUG"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads the environment, applies any flags given in args and
// validates the result. It returns pflag.ErrHelp when help was requested.
func Load(name string, args []string) (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}

	flagSet := NewFlagSet(name, &cfg)
	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewFlagSet returns flags bound to cfg. Each flag defaults to the value
// already in cfg, so only flags that are given override it.
func NewFlagSet(name string, cfg *Config) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.StringVar(&cfg.Token, "token", cfg.Token, "Bot access token.")
	flagSet.StringVar(&cfg.GuildID, "guild", cfg.GuildID,
		"Guild to register slash commands in. If not set, commands are registered globally.")
	flagSet.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file path.")
	flagSet.StringVar(&cfg.ImportPath, "import", cfg.ImportPath,
		"Legacy YAML database to import at startup.")
	flagSet.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Log at debug level in a human-readable format.")
	return flagSet
}

// Validate reports settings the bot cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Token == "" {
		errs = append(errs, errors.New("a bot token must be provided with --token or DISCORD_BOT_TOKEN"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("database path must not be empty"))
	}
	if c.InactiveSweep <= 0 {
		errs = append(errs, fmt.Errorf("inactive sweep interval %v must be positive", c.InactiveSweep))
	}
	if c.StrikeSweep <= 0 {
		errs = append(errs, fmt.Errorf("strike sweep interval %v must be positive", c.StrikeSweep))
	}
	return errors.Join(errs...)
}
